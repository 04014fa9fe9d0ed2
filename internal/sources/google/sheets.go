package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/MrSnakeDoc/timejump/internal/domain"
	"github.com/MrSnakeDoc/timejump/internal/utils"
)

const (
	// DefaultSheetsBaseURL is the public Sheets API host.
	DefaultSheetsBaseURL = "https://sheets.googleapis.com"

	maxResponseBytes = 10 << 20
)

// TableDataSource returns the rows of the first candidate range that has data.
type TableDataSource interface {
	FetchRows(ctx context.Context, accessToken string, ranges []string) (*FetchResult, error)
}

// FetchResult is the outcome of a FetchRows call. Attempts is always populated,
// also when an error is returned.
type FetchResult struct {
	Range    string     // candidate that matched
	Rows     [][]string // data rows, header removed
	Attempts []domain.RangeAttempt
}

// APIError is a non-2xx answer from the values endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets api status %d: %s", e.Status, e.Message)
}

var errInvalidJSON = errors.New("invalid JSON response")

// SheetsOptions configures the values API client.
type SheetsOptions struct {
	BaseURL       string // defaults to DefaultSheetsBaseURL
	SpreadsheetID string
	HTTPClient    *http.Client
}

// Sheets reads ranges through the Sheets v4 values endpoint.
type Sheets struct {
	baseURL       string
	spreadsheetID string
	client        *http.Client
}

// NewSheets builds a client from opts.
func NewSheets(opts SheetsOptions) *Sheets {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultSheetsBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Sheets{
		baseURL:       base,
		spreadsheetID: opts.SpreadsheetID,
		client:        client,
	}
}

// RangeURL returns the values endpoint for one A1 range.
func (s *Sheets) RangeURL(rng string) string {
	return fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		s.baseURL, url.PathEscape(s.spreadsheetID), url.PathEscape(rng))
}

// FetchRows tries ranges in order and stops at the first one returning at least one row.
// A failing range does not stop the scan; a cancelled context does.
// When every range is exhausted the error is *domain.DataUnavailableError.
func (s *Sheets) FetchRows(ctx context.Context, accessToken string, ranges []string) (*FetchResult, error) {
	res := &FetchResult{Attempts: make([]domain.RangeAttempt, 0, len(ranges))}

	for _, rng := range ranges {
		attempt, values := s.fetchRange(ctx, accessToken, rng)
		res.Attempts = append(res.Attempts, attempt)

		if err := ctx.Err(); err != nil {
			return res, err
		}

		if attempt.Found() {
			res.Range = rng
			res.Rows = values[1:] // first row is the header
			return res, nil
		}
	}

	return res, &domain.DataUnavailableError{Attempts: res.Attempts}
}

func (s *Sheets) fetchRange(ctx context.Context, accessToken, rng string) (domain.RangeAttempt, [][]string) {
	a := domain.RangeAttempt{Range: rng, URL: s.RangeURL(rng)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, http.NoBody)
	if err != nil {
		a.Err = fmt.Errorf("failed to create request: %w", err)
		return a, nil
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		a.Err = err
		return a, nil
	}
	defer utils.DrainAndClose(resp.Body, maxResponseBytes)

	a.Status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		a.Err = fmt.Errorf("failed to read response: %w", err)
		return a, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.Err = &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
		return a, nil
	}

	if !gjson.ValidBytes(body) {
		a.Err = errInvalidJSON
		return a, nil
	}

	values := parseValues(body)
	a.Rows = len(values)
	return a, values
}

// parseValues reads {"values": [["a","b"], ...]} as strings.
// Non-string cells keep their JSON text form.
func parseValues(body []byte) [][]string {
	var rows [][]string
	gjson.GetBytes(body, "values").ForEach(func(_, row gjson.Result) bool {
		cells := make([]string, 0, 7)
		row.ForEach(func(_, cell gjson.Result) bool {
			cells = append(cells, cell.String())
			return true
		})
		rows = append(rows, cells)
		return true
	})
	return rows
}

// errorMessage extracts error.message from a Google API error body.
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
		return msg
	}
	return "unknown error"
}
