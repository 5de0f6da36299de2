package core

import (
	"fmt"
	"strings"
)

// Grade is the analyzer's overall contract grade. It is a closed set: any
// value outside A-F is a data-contract violation from the analysis engine
// and is rejected by ParseGrade rather than silently defaulted.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// gradeLabels is total over the five grades.
var gradeLabels = map[Grade]string{
	GradeA: "Excellent",
	GradeB: "Good",
	GradeC: "Average",
	GradeD: "Below Average",
	GradeF: "Poor",
}

// ParseGrade parses a grade string from the analyzer, accepting surrounding
// whitespace and lowercase. Unknown values are an explicit error.
func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := gradeLabels[g]; !ok {
		return "", fmt.Errorf("unknown contract grade %q (expected A, B, C, D, or F)", s)
	}
	return g, nil
}

// Label returns the human-readable label for the grade. The caller is
// expected to hold a grade produced by ParseGrade.
func (g Grade) Label() string {
	return gradeLabels[g]
}

// AssessmentClass buckets a free-text market assessment for display.
type AssessmentClass string

const (
	AssessmentFavorable   AssessmentClass = "favorable"
	AssessmentAtMarket    AssessmentClass = "at_market"
	AssessmentBelowMarket AssessmentClass = "below_market"
	AssessmentUnfavorable AssessmentClass = "unfavorable"
)

// ClassifyAssessment maps an assessment string from the analyzer to a
// display bucket via case-insensitive substring matching. The classification
// is lossy by design: it is a coarse visual aid over free text, defaults to
// at-market, and must never drive a control-flow decision.
func ClassifyAssessment(assessment string) AssessmentClass {
	lower := strings.ToLower(assessment)
	switch {
	case strings.Contains(lower, "unfavorable"):
		return AssessmentUnfavorable
	case strings.Contains(lower, "below market"):
		return AssessmentBelowMarket
	case strings.Contains(lower, "favorable"):
		return AssessmentFavorable
	case strings.Contains(lower, "at market"):
		return AssessmentAtMarket
	default:
		return AssessmentAtMarket
	}
}
