package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// NotApplicable is reported in place of a percentage whose denominator is zero.
const NotApplicable = "N/A"

// GradeDigits is the number of significant digits used for grade strings.
const GradeDigits = 3

// EvalStatus summarises how far a student got with self-evaluation.
type EvalStatus int

const (
	EvalStatusEmpty EvalStatus = iota
	EvalStatusStarted
	EvalStatusComplete
)

func (s EvalStatus) String() string {
	switch s {
	case EvalStatusEmpty:
		return "empty"
	case EvalStatusStarted:
		return "started"
	case EvalStatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status by name.
func (s EvalStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *EvalStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, candidate := range []EvalStatus{EvalStatusEmpty, EvalStatusStarted, EvalStatusComplete} {
		if candidate.String() == name {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown eval status %q", name)
}

// EvalSummary holds the counters that eval status, grading completeness and
// the weighted grade are derived from.
type EvalSummary struct {
	ItemCount     int
	PointValue    float64
	SelfEvalCount int
	GradedCount   int
	WeightedScore float64
}

// EvalStatus is complete when every rubric item has a self evaluation.
func (s EvalSummary) EvalStatus() EvalStatus {
	switch {
	case s.SelfEvalCount == s.ItemCount:
		return EvalStatusComplete
	case s.SelfEvalCount == 0:
		return EvalStatusEmpty
	default:
		return EvalStatusStarted
	}
}

// IsEvaluated reports whether self-evaluation is complete.
func (s EvalSummary) IsEvaluated() bool {
	return s.EvalStatus() == EvalStatusComplete
}

// IsGraded reports whether every rubric item has a ready grader evaluation.
func (s EvalSummary) IsGraded() bool {
	return s.GradedCount == s.ItemCount
}

// Grade returns the weighted fraction of points earned. ok is false when the
// rubric is worth nothing.
func (s EvalSummary) Grade() (grade float64, ok bool) {
	if s.PointValue <= 0 {
		return 0, false
	}
	return s.WeightedScore / s.PointValue, true
}

// GradeString formats the grade as a percentage, or N/A.
func (s EvalSummary) GradeString() string {
	grade, ok := s.Grade()
	if !ok {
		return NotApplicable
	}
	return PctString(grade, GradeDigits)
}

// PctString formats a fraction as a percentage with the given number of
// significant digits: 0.5 -> "50.0%", 1 -> "100%", 0.0123 -> "1.23%".
func PctString(fraction float64, digits int) string {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return NotApplicable
	}

	pct := fraction * 100
	decimals := pctDecimals(pct, digits)
	// rounding may carry into a new integer digit: 99.96 -> 100.0
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(pct, 'f', decimals, 64), 64)
	decimals = pctDecimals(rounded, digits)

	return strconv.FormatFloat(pct, 'f', decimals, 64) + "%"
}

func pctDecimals(pct float64, digits int) int {
	intDigits := 1
	for magnitude := math.Abs(pct); magnitude >= 10; magnitude /= 10 {
		intDigits++
	}
	if decimals := digits - intDigits; decimals > 0 {
		return decimals
	}
	return 0
}

// RatioString formats points/possible as a percentage, or N/A when nothing was possible.
func RatioString(points, possible float64) string {
	if possible == 0 {
		return NotApplicable
	}
	return PctString(points/possible, GradeDigits)
}
