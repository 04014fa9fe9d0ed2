package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/timejump/internal/domain"
	"github.com/MrSnakeDoc/timejump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/timejump/internal/logger"
	"github.com/MrSnakeDoc/timejump/internal/metrics"
	"github.com/MrSnakeDoc/timejump/internal/sources/google"
)

// NoURLMessage is the body returned when no rule is active and no default exists.
const NoURLMessage = "❌ Error: No URL available"

// Redirect answers with a 302 to the active rule's URL, or with the evaluation
// trace as plain text when ?debug=1 is set. Rules are fetched on every request.
func Redirect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		debug := r.URL.Query().Get("debug") == "1"
		trace := domain.NewTrace()

		decision, matchedRange, err := evaluate(ctx, d, trace)
		if err != nil {
			writeFailure(w, d, trace, err)
			return
		}

		d.Metrics.Decision(decision.Matched.String())
		d.Logger.Info("redirect decision",
			logger.String("kind", decision.Matched.String()),
			logger.String("url", decision.SelectedURL),
			logger.String("range", matchedRange),
			logger.Int("specific", len(decision.Rules.Specific)),
			logger.Int("dynamic", len(decision.Rules.Dynamic)),
			logger.Bool("default", decision.Rules.Default != nil),
			logger.Bool("debug", debug))

		if err := d.Stats.RecordDecision(ctx, decision, matchedRange); err != nil {
			d.Logger.Warn("failed to record redirect stats", logger.Error(err))
		}

		switch {
		case debug:
			writeText(w, http.StatusOK, trace.String())
		case decision.HasURL():
			http.Redirect(w, r, decision.SelectedURL, http.StatusFound)
		default:
			writeText(w, http.StatusInternalServerError, NoURLMessage)
		}
	}
}

// evaluate runs configuration check, token exchange, range scan and rule selection,
// in that order, appending to trace as it goes. The first failure aborts the request.
func evaluate(ctx context.Context, d deps.Deps, trace *domain.Trace) (domain.Decision, string, error) {
	trace.Addf("SPREADSHEET_ID: %s", d.SpreadsheetID)
	trace.Addf("GOOGLE_CLIENT_EMAIL: %s", configured(d.ClientEmail != ""))
	trace.Addf("GOOGLE_PRIVATE_KEY: %s", configured(d.PrivateKeySet))
	candidates := d.Ranges.Ranges()
	trace.Addf("Ranges to try: %s", strings.Join(candidates, ", "))
	trace.Blank()

	if d.ConfigErr != nil {
		d.Metrics.UpstreamFailure(metrics.StageConfig)
		return domain.Decision{}, "", d.ConfigErr
	}

	start := time.Now()

	trace.Add("🔑 Requesting access token...")
	token, err := d.Credentials.AccessToken(ctx)
	if err != nil {
		d.Metrics.UpstreamFailure(metrics.StageCredentials)
		return domain.Decision{}, "", err
	}
	trace.Add("✅ Access token obtained")
	trace.Blank()

	trace.Add("🔍 Trying candidate ranges:")
	res, err := d.Sheets.FetchRows(ctx, token, candidates)
	if res != nil {
		writeAttempts(trace, d.Metrics, res.Attempts)
	}
	if err != nil {
		d.Metrics.UpstreamFailure(metrics.StageSheets)
		return domain.Decision{}, "", err
	}

	trace.Blank()
	trace.Addf("✅ Using range: %s", res.Range)
	trace.Addf("📊 Rows fetched: %d", len(res.Rows))

	decision := d.Resolver.Resolve(res.Rows, d.Clock.Now())
	d.Metrics.MeasureSince(start)

	for _, s := range decision.Rules.Skipped {
		d.Logger.Debug("malformed row skipped",
			logger.Int("row", s.Row),
			logger.String("reason", s.Reason))
	}

	decision.WriteTrace(trace, d.Clock)
	return decision, res.Range, nil
}

func writeAttempts(trace *domain.Trace, m *metrics.Prometheus, attempts []domain.RangeAttempt) {
	for _, a := range attempts {
		trace.Addf("📡 Trying: %s → %s", a.Range, a.URL)
		if a.Status != 0 {
			trace.Addf("   Status: %d", a.Status)
		}

		var apiErr *google.APIError
		switch {
		case a.Found():
			m.RangeAttempt("found")
			trace.Addf("   ✅ Data found (%d rows)", a.Rows)
		case a.Err == nil:
			m.RangeAttempt("empty")
			trace.Add("   ❌ No data")
		case errors.As(a.Err, &apiErr):
			m.RangeAttempt("error")
			trace.Addf("   ❌ Error: %s", apiErr.Message)
		default:
			m.RangeAttempt("error")
			trace.Addf("   ❌ Exception: %v", a.Err)
		}
	}
}

// writeFailure converts a collaborator failure into a plain-text 500.
// Configuration and data failures carry the trace so far; other failures only the message.
func writeFailure(w http.ResponseWriter, d deps.Deps, trace *domain.Trace, err error) {
	var (
		cfgErr  *domain.ConfigurationError
		dataErr *domain.DataUnavailableError
	)

	switch {
	case errors.As(err, &cfgErr):
		d.Logger.Warn("redirect unavailable: configuration missing",
			logger.Strings("missing", cfgErr.Missing))
		writeText(w, http.StatusInternalServerError,
			trace.String()+"\n❌ Error: environment variables not configured ("+strings.Join(cfgErr.Missing, ", ")+")")

	case errors.As(err, &dataErr):
		d.Logger.Error("redirect unavailable: no candidate range returned data",
			logger.Int("attempts", len(dataErr.Attempts)))
		trace.Blank()
		trace.Add("❌ Could not read any candidate range. Check:")
		trace.Add("1. The service account has access to the spreadsheet")
		trace.Addf("2. Spreadsheet URL: https://docs.google.com/spreadsheets/d/%s/edit", d.SpreadsheetID)
		trace.Add("3. The sheet contains data")
		writeText(w, http.StatusInternalServerError, trace.String())

	default:
		d.Logger.Error("redirect failed", logger.Error(err))
		writeText(w, http.StatusInternalServerError, "❌ Error: "+err.Error())
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "NOT CONFIGURED"
}
