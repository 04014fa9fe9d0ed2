package domain

import (
	"fmt"
	"strings"
)

// Trace is the plain-text diagnostic report of a single request.
// It is created per request and returned to the caller; nothing is shared.
type Trace struct {
	lines []string
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Add appends one line.
func (t *Trace) Add(line string) {
	t.lines = append(t.lines, line)
}

// Addf appends one formatted line.
func (t *Trace) Addf(format string, args ...any) {
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

// Blank appends an empty separator line.
func (t *Trace) Blank() {
	t.lines = append(t.lines, "")
}

// Lines returns a copy of the recorded lines.
func (t *Trace) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t *Trace) String() string {
	return strings.Join(t.lines, "\n")
}

// WriteTrace renders the parsed rules, every evaluation and the outcome.
func (d Decision) WriteTrace(t *Trace, c *Clock) {
	t.Addf("🕓 Now: %s", c.Format(d.Now))
	t.Addf("🕓 Timestamp: %d", d.Now.UnixMilli())

	if rs := d.Rules; rs != nil {
		t.Addf("📊 Rules: %d specific, %d dynamic, default=%t", len(rs.Specific), len(rs.Dynamic), rs.Default != nil)
		t.Blank()
		for _, s := range rs.Skipped {
			t.Addf("⚠️  row %d skipped: %s", s.Row, s.Reason)
		}
		for _, s := range rs.Ignored {
			t.Addf("   row %d ignored: %s", s.Row, s.Reason)
		}
		if rs.Default != nil {
			t.Addf("🔹 DEFAULT: %s (row %d)", rs.Default.URL, rs.Default.Row)
		}
		for _, r := range rs.Specific {
			writeRule(t, c, "🔶", r)
		}
		for _, r := range rs.Dynamic {
			writeRule(t, c, "🔸", r)
		}
	}

	t.Blank()
	t.Addf("🔍 Evaluating (timestamp: %d):", d.Now.UnixMilli())
	for _, e := range d.Evaluations {
		state := "❌ inactive"
		if e.Active {
			state = "✅ ACTIVE"
		}
		w := e.Rule.Window
		if !w.Valid() {
			t.Addf("   %s %s: %s (invalid window)", label(e.Rule.Kind), e.Rule.URL, state)
			continue
		}
		t.Addf("   %s %s: %s (%d <= %d <= %d)", label(e.Rule.Kind), e.Rule.URL, state,
			w.Start.UnixMilli(), d.Now.UnixMilli(), w.End.UnixMilli())
	}

	t.Blank()
	if d.HasURL() {
		t.Addf("✅ Result: %s", d.SelectedURL)
	} else {
		t.Add("❌ Result: No URL found")
	}
	t.Addf("✅ Reason: %s", d.Matched.Reason())
}

func writeRule(t *Trace, c *Clock, icon string, r Rule) {
	desc := ""
	if r.Description != "" {
		desc = " - " + r.Description
	}
	if !r.Window.Valid() {
		t.Addf("%s %s: %s (unparseable window, row %d)%s", icon, label(r.Kind), r.URL, r.Row, desc)
		return
	}
	t.Addf("%s %s: %s (%s → %s)%s", icon, label(r.Kind), r.URL,
		c.Format(r.Window.Start), c.Format(r.Window.End), desc)
	t.Addf("   Timestamps: %d → %d", r.Window.Start.UnixMilli(), r.Window.End.UnixMilli())
}

func label(k Kind) string {
	return strings.ToUpper(k.String())
}
