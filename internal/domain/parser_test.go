package domain

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestParseKinds(t *testing.T) {
	loc := mustLocation(t, "America/Denver")
	rows := [][]string{
		{"default", "", "", "", "", "https://first-default.example"},
		{" specific ", "2024-01-01", "00:00", "2024-12-31", "23:59", " https://s.example ", "launch"},
		{"dynamics", "2024-02-01", "08:00", "2024-02-01", "18:00", "https://dyn.example"},
		{"default", "", "", "", "", "https://last-default.example"},
		{"Specific", "2024-01-01", "00:00", "2024-12-31", "23:59", "https://case.example"},
		{"weekly", "2024-01-01", "00:00", "2024-12-31", "23:59", "https://future.example"},
	}

	rs := NewRuleParser(loc).Parse(rows)

	require.Len(t, rs.Specific, 1)
	assert.Equal(t, "https://s.example", rs.Specific[0].URL)
	assert.Equal(t, "launch", rs.Specific[0].Description)
	assert.Equal(t, 2, rs.Specific[0].Row)

	require.Len(t, rs.Dynamic, 1)
	assert.Equal(t, KindDynamic, rs.Dynamic[0].Kind)

	require.NotNil(t, rs.Default)
	assert.Equal(t, "https://last-default.example", rs.Default.URL)
	assert.Equal(t, 4, rs.Default.Row)

	require.Len(t, rs.Ignored, 2)
	assert.Equal(t, 5, rs.Ignored[0].Row)
	assert.Equal(t, 6, rs.Ignored[1].Row)
	assert.Empty(t, rs.Skipped)
	assert.Equal(t, 3, rs.Len())
}

func TestParseWallClockInReferenceZone(t *testing.T) {
	denver := mustLocation(t, "America/Denver")
	tokyo := mustLocation(t, "Asia/Tokyo")
	row := [][]string{{"specific", "2024-06-15", "12:00", "2024-06-15", "13:00", "https://s.example"}}

	inDenver := NewRuleParser(denver).Parse(row).Specific[0].Window
	inTokyo := NewRuleParser(tokyo).Parse(row).Specific[0].Window

	assert.True(t, inDenver.Start.Equal(time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)))
	assert.True(t, inTokyo.Start.Equal(time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC)))
	assert.False(t, inDenver.Start.Equal(inTokyo.Start))
}

func TestParseSkipsShortRows(t *testing.T) {
	rows := [][]string{
		{"specific", "2024-01-01", "00:00", "2024-12-31", "23:59"},
		{},
		{"default"},
		{"specific", "2024-01-01", "00:00", "2024-12-31", "23:59", "https://ok.example"},
	}

	rs := NewRuleParser(time.UTC).Parse(rows)

	require.Len(t, rs.Skipped, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{rs.Skipped[0].Row, rs.Skipped[1].Row, rs.Skipped[2].Row})
	require.Len(t, rs.Specific, 1)
	assert.Equal(t, "https://ok.example", rs.Specific[0].URL)
	assert.Equal(t, 4, rs.Specific[0].Row)
	assert.Nil(t, rs.Default)
}

func TestParseKeepsEmptyURL(t *testing.T) {
	rows := [][]string{
		{"default", "", "", "", "", "https://d.example"},
		{"default", "", "", "", "", "  ", "blank"},
		{"specific", "2024-01-01", "00:00", "2024-12-31", "23:59", ""},
	}

	rs := NewRuleParser(time.UTC).Parse(rows)

	assert.Empty(t, rs.Skipped)
	require.NotNil(t, rs.Default)
	assert.Equal(t, 2, rs.Default.Row)
	assert.Empty(t, rs.Default.URL)
	assert.Equal(t, "blank", rs.Default.Description)
	require.Len(t, rs.Specific, 1)
	assert.Empty(t, rs.Specific[0].URL)
}

func TestParseLenientDates(t *testing.T) {
	rows := [][]string{
		{"specific", "2024-1-5", "9:05", " 2024-01-05 ", " 17:30 ", "https://s.example"},
		{"specific", "2024-01-05", "09:00:59", "2024-01-05", "10:00", "https://seconds.example"},
	}

	rs := NewRuleParser(time.UTC).Parse(rows)

	require.Len(t, rs.Specific, 2)
	w := rs.Specific[0].Window
	require.True(t, w.Valid())
	assert.Equal(t, time.Date(2024, 1, 5, 9, 5, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 1, 5, 17, 30, 0, 0, time.UTC), w.End)
	assert.Equal(t, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC), rs.Specific[1].Window.Start)
}

func TestParseUnparseableWindowNeverMatches(t *testing.T) {
	rows := [][]string{
		{"dynamics", "tomorrow", "00:00", "2024-12-31", "23:59", "https://bad.example"},
		{"dynamics", "2024-01-01", "noon", "2024-12-31", "23:59", "https://bad-time.example"},
		{"dynamics", "2024-01-01", "", "2024-12-31", "23:59", "https://empty-time.example"},
	}

	rs := NewRuleParser(time.UTC).Parse(rows)

	require.Len(t, rs.Dynamic, 3)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range rs.Dynamic {
		assert.False(t, r.Window.Valid(), r.URL)
		assert.False(t, r.Active(now), r.URL)
	}
}

func TestParseKeepsInvertedWindow(t *testing.T) {
	rows := [][]string{{"specific", "2024-12-31", "00:00", "2024-01-01", "00:00", "https://inv.example"}}

	rs := NewRuleParser(time.UTC).Parse(rows)

	require.Len(t, rs.Specific, 1)
	w := rs.Specific[0].Window
	assert.True(t, w.Valid())
	assert.True(t, w.Start.After(w.End))
	assert.False(t, w.Contains(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}
