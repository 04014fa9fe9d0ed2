package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column layout of a source row.
const (
	colKind = iota
	colStartDate
	colStartTime
	colEndDate
	colEndTime
	colURL
	colDescription
)

// MinRowFields is the number of populated fields a row needs to be considered.
const MinRowFields = colURL + 1

// SkippedRow is a row left out of every rule collection.
type SkippedRow struct {
	Row    int
	Reason string
}

// RuleParser turns raw table rows into a RuleSet.
// Dates (YYYY-MM-DD) and times (HH:MM) are wall-clock values in the reference zone.
type RuleParser struct {
	loc *time.Location
}

// NewRuleParser returns a parser reading wall-clock cells in loc.
func NewRuleParser(loc *time.Location) *RuleParser {
	if loc == nil {
		loc = time.UTC
	}
	return &RuleParser{loc: loc}
}

// Parse never fails: malformed rows are recorded in RuleSet.Skipped and
// unknown kinds in RuleSet.Ignored.
func (p *RuleParser) Parse(rows [][]string) *RuleSet {
	rs := &RuleSet{}

	for i, row := range rows {
		pos := i + 1

		if len(row) < MinRowFields {
			rs.Skipped = append(rs.Skipped, SkippedRow{
				Row:    pos,
				Reason: fmt.Sprintf("expected at least %d fields, got %d", MinRowFields, len(row)),
			})
			continue
		}

		label := strings.TrimSpace(row[colKind])
		url := strings.TrimSpace(row[colURL])

		var description string
		if len(row) > colDescription {
			description = strings.TrimSpace(row[colDescription])
		}

		var kind Kind
		switch label {
		case LabelDefault:
			kind = KindDefault
		case LabelSpecific:
			kind = KindSpecific
		case LabelDynamic:
			kind = KindDynamic
		default:
			rs.Ignored = append(rs.Ignored, SkippedRow{
				Row:    pos,
				Reason: fmt.Sprintf("unknown kind %q", label),
			})
			continue
		}

		rule := Rule{Kind: kind, Row: pos, URL: url, Description: description}

		switch kind {
		case KindDefault:
			// Later default rows overwrite earlier ones.
			rs.Default = &rule
		case KindSpecific:
			rule.Window = p.window(row)
			rs.Specific = append(rs.Specific, rule)
		case KindDynamic:
			rule.Window = p.window(row)
			rs.Dynamic = append(rs.Dynamic, rule)
		}
	}

	return rs
}

// window builds the rule window. Unparseable cells give an invalid window,
// which never contains any instant.
func (p *RuleParser) window(row []string) TimeWindow {
	start, ok := p.instant(row[colStartDate], row[colStartTime])
	if !ok {
		return TimeWindow{}
	}
	end, ok := p.instant(row[colEndDate], row[colEndTime])
	if !ok {
		return TimeWindow{}
	}
	return NewTimeWindow(start, end)
}

// instant reads a date and a time cell as wall-clock values in the reference zone.
// Fields are plain integers so "2024-1-5" and "9:05" are accepted; out of range
// values normalise the way time.Date does.
func (p *RuleParser) instant(date, clock string) (time.Time, bool) {
	ymd := strings.Split(strings.TrimSpace(date), "-")
	hm := strings.Split(strings.TrimSpace(clock), ":")
	if len(ymd) != 3 || len(hm) < 2 {
		return time.Time{}, false
	}

	nums := make([]int, 0, 5)
	for _, s := range []string{ymd[0], ymd[1], ymd[2], hm[0], hm[1]} {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, false
		}
		nums = append(nums, n)
	}

	return time.Date(nums[0], time.Month(nums[1]), nums[2], nums[3], nums[4], 0, 0, p.loc), true
}
