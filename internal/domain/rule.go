package domain

import "time"

// Kind is the routing tier of a rule.
type Kind int

const (
	KindNone Kind = iota
	KindSpecific
	KindDynamic
	KindDefault
)

// Literals accepted in the kind column of a row.
const (
	LabelDefault  = "default"
	LabelSpecific = "specific"
	LabelDynamic  = "dynamics"
)

func (k Kind) String() string {
	switch k {
	case KindSpecific:
		return "specific"
	case KindDynamic:
		return "dynamic"
	case KindDefault:
		return "default"
	default:
		return "none"
	}
}

// Reason is the human readable outcome shown in traces.
func (k Kind) Reason() string {
	switch k {
	case KindSpecific:
		return "Matched SPECIFIC"
	case KindDynamic:
		return "Matched DYNAMIC"
	case KindDefault:
		return "Used DEFAULT"
	default:
		return "No match"
	}
}

// Rule is a routing directive read from one row of the source table.
type Rule struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// Kind decides which collection the rule lives in.
	Kind Kind

	// Row is the 1-based data row position (header excluded).
	Row int

	// ─────────────────────────────
	// Routing
	// ─────────────────────────────

	// URL is the redirect destination, trimmed.
	URL string

	// Window is ignored for KindDefault.
	Window TimeWindow

	// Description is the optional free-text seventh column.
	Description string
}

// Active reports whether the rule is eligible at t.
// Default rules have no window and are handled by the fallback step instead.
func (r Rule) Active(t time.Time) bool {
	return r.Window.Contains(t)
}
