package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/timejump/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready   bool     `json:"ready"`
	Reasons []string `json:"reasons,omitempty"`
}

// Readyz reports whether a redirect request could succeed without contacting Google:
// credentials are configured and, when enabled, the stats store answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: true}

		if d.ConfigErr != nil {
			resp.Ready = false
			resp.Reasons = append(resp.Reasons, d.ConfigErr.Error())
		}

		if d.Stats.Enabled() {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := d.Stats.Ping(ctx)
			cancel()
			if err != nil {
				resp.Ready = false
				resp.Reasons = append(resp.Reasons, "stats store: "+err.Error())
			}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
