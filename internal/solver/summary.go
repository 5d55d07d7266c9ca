package solver

import (
	"regexp"
	"strings"
)

// maxSummaryRunes bounds the user-facing explanation.
const maxSummaryRunes = 250

// stepMarkerRe matches step-by-step derivation markers at the start of
// a line: "1.", "2)", "Step 3:" and the like.
var stepMarkerRe = regexp.MustCompile(`(?mi)^\s*(?:step\s+\d+\s*[.:)-]?|\d+\s*[.)])\s*`)

// Summarize condenses the executor's explanation into a short
// user-facing string. It is local and deterministic: no model call, no
// pass-through of intermediate notes, step markers stripped so raw
// derivations do not leak to the caller.
func Summarize(exec ExecutionResult) string {
	expl := strings.TrimSpace(exec.Explanation)
	if expl == "" {
		return ""
	}

	expl = stepMarkerRe.ReplaceAllString(expl, "")
	// Collapse the former list lines into one paragraph.
	expl = strings.Join(strings.Fields(expl), " ")

	runes := []rune(expl)
	if len(runes) > maxSummaryRunes {
		expl = string(runes[:maxSummaryRunes])
	}
	return expl
}
