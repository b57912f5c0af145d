package quiz

// State is the lifecycle position of a session
type State int

const (
	StateReady State = iota
	StateAwaitingAnswer
	StateWon
	StateLost
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	}
	return "unknown"
}

// Terminal reports whether no further questions can be asked.
func (s State) Terminal() bool {
	return s == StateWon || s == StateLost
}

// Outcome classifies a submitted answer
type Outcome int

const (
	OutcomeCorrect Outcome = iota + 1
	OutcomeIncorrect
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	}
	return "unknown"
}

// Terminal reports whether the outcome ended the session.
func (o Outcome) Terminal() bool {
	return o == OutcomeWon || o == OutcomeLost
}
