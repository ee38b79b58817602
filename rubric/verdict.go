package rubric

import "fmt"

// Verdict is the outcome of evaluating one check or step: either Correct, or Wrong with a
// message for the learner.
type Verdict struct {
	correct bool
	message string
}

func Correct() Verdict {
	return Verdict{correct: true}
}

func Wrong(message string) Verdict {
	return Verdict{message: message}
}

func Wrongf(format string, args ...interface{}) Verdict {
	return Wrong(fmt.Sprintf(format, args...))
}

func (v Verdict) IsCorrect() bool {
	return v.correct
}

// Message is empty for a Correct verdict.
func (v Verdict) Message() string {
	return v.message
}

func (v Verdict) String() string {
	if v.correct {
		return "correct"
	}
	return "wrong: " + v.message
}
