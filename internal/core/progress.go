package core

import "strings"

// defaultProgress is reported for status messages that match no known
// processing phase.
const defaultProgress = 10

// progressStep maps status-message keywords to a display percentage.
// Steps are checked in order; the first match wins.
type progressStep struct {
	keywords []string
	percent  int
}

var progressSteps = []progressStep{
	{[]string{"initializ"}, 5},
	{[]string{"upload"}, 15},
	{[]string{"reading", "parsing"}, 30},
	{[]string{"analyzing", "pricing", "contract structure"}, 55},
	{[]string{"benchmark", "comparing"}, 72},
	{[]string{"recommendation", "generating"}, 87},
	{[]string{"complete"}, 100},
}

// EstimateProgress derives a 0-100 display percentage from a free-text
// status message. It is a cosmetic heuristic: the only authoritative
// completion signal is the session status itself, and nothing in the
// workflow branches on the returned value.
func EstimateProgress(message string) int {
	lower := strings.ToLower(message)
	for _, step := range progressSteps {
		for _, kw := range step.keywords {
			if strings.Contains(lower, kw) {
				return step.percent
			}
		}
	}
	return defaultProgress
}
