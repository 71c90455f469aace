package evaluation

// Defaults for the boolean auto-grade rule.
const (
	DefaultAutoGradeScore       = 0.1
	DefaultAutoGradeExplanation = "You chose no."
)

// Policy configures automatic grading.
type Policy struct {
	// AutoGradeScore is the ready grader score given when a boolean item is answered "no".
	AutoGradeScore float64
	// AutoGradeExplanation accompanies the automatic grade.
	AutoGradeExplanation string
}

// DefaultPolicy returns the stock auto-grade policy.
func DefaultPolicy() Policy {
	return Policy{
		AutoGradeScore:       DefaultAutoGradeScore,
		AutoGradeExplanation: DefaultAutoGradeExplanation,
	}
}
