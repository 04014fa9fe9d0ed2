package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/timejump/internal/httpserver/deps"
	redisstore "github.com/MrSnakeDoc/timejump/internal/store/redis"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type evaluationInfo struct {
	TimeZone         string   `json:"timezone"`
	Now              string   `json:"now"`
	Ranges           []string `json:"ranges"`
	RangesSource     string   `json:"ranges_source,omitempty"`
	RangesLastReload string   `json:"ranges_last_reload,omitempty"`
}

type infraResponse struct {
	RoutingMode string                     `json:"routing_mode"`
	Components  map[string]componentStatus `json:"components"`
	Evaluation  evaluationInfo             `json:"evaluation"`
	Stats       *redisstore.Stats          `json:"stats,omitempty"`
}

// Infra describes the service configuration and the state of its dependencies.
// It never contacts Google; the credentials component only reflects configuration.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		credentials := componentStatus{OK: true, Mode: "service-account"}
		if d.ConfigErr != nil {
			credentials = componentStatus{
				OK:     false,
				Impact: "redirects-failing",
				Error:  d.ConfigErr.Error(),
			}
		}

		statsStatus, stats := checkStats(ctx, d)

		components := map[string]componentStatus{
			"credentials": credentials,
			"stats":       statsStatus,
		}

		response := infraResponse{
			RoutingMode: determineRoutingMode(components),
			Components:  components,
			Evaluation: evaluationInfo{
				TimeZone:         d.Clock.Location().String(),
				Now:              d.Clock.Format(d.Clock.Now()),
				Ranges:           d.Ranges.Ranges(),
				RangesSource:     d.Ranges.Source(),
				RangesLastReload: lastReload(d),
			},
			Stats: stats,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func lastReload(d deps.Deps) string {
	t := d.Ranges.GetLastReload()
	if t.IsZero() {
		return "never"
	}
	return d.Clock.Format(t)
}

func determineRoutingMode(components map[string]componentStatus) string {
	// Without credentials every redirect fails
	if c, ok := components["credentials"]; ok && !c.OK {
		return "critical"
	}

	// Stats store down only loses counters
	if s, ok := components["stats"]; ok && !s.OK && s.Mode != "disabled" {
		return "degraded"
	}

	return "operational"
}

func checkStats(ctx context.Context, d deps.Deps) (componentStatus, *redisstore.Stats) {
	if !d.Stats.Enabled() {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "stats-not-recorded",
		}, nil
	}

	if err := d.Stats.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "stats-not-recorded",
			Error:  err.Error(),
		}, nil
	}

	stats, err := d.Stats.GetStats(ctx)
	if err != nil {
		return componentStatus{
			OK:    true,
			Mode:  "optimal",
			Error: err.Error(),
		}, nil
	}

	return componentStatus{OK: true, Mode: "optimal"}, stats
}
