package domain

import "time"

// RuleSet holds the rules of one request, partitioned by kind.
// Specific and Dynamic keep row order; Default is the last default row seen.
type RuleSet struct {
	Specific []Rule
	Dynamic  []Rule
	Default  *Rule

	Skipped []SkippedRow // malformed rows
	Ignored []SkippedRow // rows with an unknown kind
}

// Len returns the number of usable rules.
func (rs *RuleSet) Len() int {
	n := len(rs.Specific) + len(rs.Dynamic)
	if rs.Default != nil {
		n++
	}
	return n
}

// SelectWinner evaluates the tiers in fixed order: Specific, Dynamic, Default.
// Within a tier the first active rule ends the scan. An active rule with an
// empty URL selects nothing and hands over to the next tier; an empty
// Default yields no match. No match is reported as KindNone.
func (rs *RuleSet) SelectWinner(now time.Time) Decision {
	d := Decision{Now: now, Matched: KindNone, Rules: rs}

	tiers := [...][]Rule{rs.Specific, rs.Dynamic}
	for _, tier := range tiers {
		for _, r := range tier {
			active := r.Active(now)
			d.Evaluations = append(d.Evaluations, Evaluation{Rule: r, Active: active})
			if !active {
				continue
			}
			if r.URL != "" {
				d.choose(r)
				return d
			}
			break
		}
	}

	if rs.Default != nil && rs.Default.URL != "" {
		d.choose(*rs.Default)
	}

	return d
}

func (d *Decision) choose(r Rule) {
	d.Winner = &r
	d.SelectedURL = r.URL
	d.Matched = r.Kind
}
