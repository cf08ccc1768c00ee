package wizard

import "errors"

// TotalSteps is the fixed number of wizard questions.
const TotalSteps = 5

// Session errors.
var (
	// ErrFinished is returned when a transition is attempted on a session
	// that has already produced its recommendations.
	ErrFinished = errors.New("wizard session already finished")

	// ErrNotLastStep is returned when Finish is called before the last step.
	ErrNotLastStep = errors.New("finish is only allowed on the last step")

	// ErrLastStep is returned when Advance is called on the last step.
	ErrLastStep = errors.New("already on the last step")
)

// Session tracks one user's pass through the wizard: the current step and the
// answers confirmed so far. Sessions move linearly forward and backward and
// terminate by calling Finish on the last step. A Session is not safe for
// concurrent use; it models a single user interaction.
type Session struct {
	step     int
	answers  Answers
	finished bool
}

// NewSession starts a wizard session at step 1 with no collected answers.
func NewSession() *Session {
	return &Session{step: 1, answers: Answers{}}
}

// Step returns the current step index (1..TotalSteps).
func (s *Session) Step() int { return s.step }

// Finished reports whether Finish has completed.
func (s *Session) Finished() bool { return s.finished }

// Answers returns a copy of the answers confirmed so far.
func (s *Session) Answers() Answers {
	out := make(Answers, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Advance records the selection for the current step (an empty option means
// nothing was selected, which is allowed) and moves to the next step.
// It fails on the last step and after the session has finished.
func (s *Session) Advance(option string) error {
	if s.finished {
		return ErrFinished
	}
	if s.step >= TotalSteps {
		return ErrLastStep
	}
	if option != "" {
		s.answers[s.step] = option
	}
	s.step++
	return nil
}

// Retreat moves back one step without altering collected answers. It is a
// no-op at step 1.
func (s *Session) Retreat() error {
	if s.finished {
		return ErrFinished
	}
	if s.step > 1 {
		s.step--
	}
	return nil
}

// Finish records the final selection and evaluates the recommendation table
// exactly once. It is only reachable from the last step.
func (s *Session) Finish(option string) ([]Recommendation, error) {
	if s.finished {
		return nil, ErrFinished
	}
	if s.step != TotalSteps {
		return nil, ErrNotLastStep
	}
	if option != "" {
		s.answers[s.step] = option
	}
	s.finished = true
	return Recommend(s.answers), nil
}

// Reset returns the session to step 1 with no answers, allowing reuse after
// Finish.
func (s *Session) Reset() {
	s.step = 1
	s.answers = Answers{}
	s.finished = false
}
