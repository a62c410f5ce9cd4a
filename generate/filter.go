package generate

import "strings"

// suspiciousKeywords mark lines in retrieved passages that read like
// adversarial instructions rather than documentation. Matching lines are
// stripped before the passage reaches the prompt.
var suspiciousKeywords = []string{
	"ignore previous instructions", "act as", "system prompt", "disregard",
	"developer mode", "reveal policies", "root system", "bypass",
}

// filterInjectionLines removes suspicious lines from passage text.
// Whole lines are dropped, not redacted: a partial instruction is still an
// instruction.
func filterInjectionLines(text string) string {
	lines := strings.Split(text, "\n")
	filtered := make([]string, 0, len(lines))

	for _, line := range lines {
		lowered := strings.ToLower(line)
		suspicious := false
		for _, keyword := range suspiciousKeywords {
			if strings.Contains(lowered, keyword) {
				suspicious = true
				break
			}
		}
		if !suspicious {
			filtered = append(filtered, line)
		}
	}

	return strings.Join(filtered, "\n")
}
