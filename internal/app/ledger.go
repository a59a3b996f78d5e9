package app

// Ledger records the single option the user currently has selected per question.
// A question absent from the ledger is "not answered"; overwriting a selection is
// the only mutation. The ledger never validates options against the question —
// that is the scorer's concern.
//
// Ledger is not safe for concurrent use; the owning session serializes access.
type Ledger struct {
	selections map[string]string
}

func NewLedger() *Ledger {
	return &Ledger{selections: make(map[string]string)}
}

// Set inserts or overwrites the selection for a question.
func (l *Ledger) Set(questionID, option string) {
	l.selections[questionID] = option
}

// Get returns the current selection and whether the question was answered.
func (l *Ledger) Get(questionID string) (string, bool) {
	option, ok := l.selections[questionID]
	return option, ok
}

// AnsweredCount returns the number of distinct questions with a recorded selection.
func (l *Ledger) AnsweredCount() int {
	return len(l.selections)
}

// Answers returns a copy of the selections, suitable for handing to a scorer.
func (l *Ledger) Answers() map[string]string {
	out := make(map[string]string, len(l.selections))
	for id, option := range l.selections {
		out[id] = option
	}
	return out
}

// Reset drops every selection.
func (l *Ledger) Reset() {
	l.selections = make(map[string]string)
}
