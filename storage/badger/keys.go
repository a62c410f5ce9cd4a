package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/answerit/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix  = "chkrec"
	chunkPositionSeq   = "chkrecseq"
	queryLogPrefix     = "qlgrec"
	queryLogTimePrefix = "qlgrecd"
	queryLogIDSeq      = "qlgrecseq"
)

// makeChunkKey generates a key for a chunk by position.
// The position is written in BigEndian so that lexicographic iteration
// visits chunks in position order, which index builders rely on.
func makeChunkKey(position uint64) []byte {
	prefix := chunkRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], position)
	return buf
}

// makeQueryLogKey generates a key for a query log entry by ID.
func makeQueryLogKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", queryLogPrefix, id))
}

// makeQueryLogTimeKey generates a composite key for the time index.
// Format: prefix:timestamp:id
func makeQueryLogTimeKey(timestamp time.Time, id core.ID) []byte {
	prefix := queryLogTimePrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialQueryLogTimeKey generates a partial key for time range scans.
// Format: prefix:timestamp
func makePartialQueryLogTimeKey(timestamp time.Time) []byte {
	prefix := queryLogTimePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeCheckpointKey generates a key for job checkpoints.
func makeCheckpointKey(jobType string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", jobType))
}
