package generate

import "errors"

// ErrGeneratorRequired is returned when a generation capability is not provided.
var ErrGeneratorRequired = errors.New("generator required")
