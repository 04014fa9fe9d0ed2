package domain

import "time"

// Evaluation is one rule checked against "now", in scan order.
type Evaluation struct {
	Rule   Rule
	Active bool
}

// Decision is the outcome of one request. It is built once and never mutated.
type Decision struct {
	// SelectedURL is empty when Matched is KindNone.
	SelectedURL string
	Matched     Kind
	Winner      *Rule

	// Now is the instant the rules were evaluated at.
	Now time.Time

	// Evaluations lists every timed rule checked, in order, up to the winner.
	Evaluations []Evaluation

	// Rules is the parsed input, kept for diagnostics.
	Rules *RuleSet
}

// HasURL reports whether a destination was selected.
func (d Decision) HasURL() bool {
	return d.Matched != KindNone && d.SelectedURL != ""
}
