package domain

import "time"

// RedirectResolver parses freshly fetched rows and picks the active destination.
// It performs no I/O and holds no per-request state.
type RedirectResolver struct {
	parser *RuleParser
}

// NewRedirectResolver returns a resolver reading wall-clock cells in loc.
func NewRedirectResolver(loc *time.Location) *RedirectResolver {
	return &RedirectResolver{parser: NewRuleParser(loc)}
}

// Resolve runs the parser then the tiered selection.
func (r *RedirectResolver) Resolve(rows [][]string, now time.Time) Decision {
	return r.parser.Parse(rows).SelectWinner(now)
}
