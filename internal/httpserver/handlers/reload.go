package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/timejump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/timejump/internal/logger"
)

// Reload triggers a manual reload of the candidate ranges file
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeText(w, http.StatusServiceUnavailable, "❌ Ranges reloader not running\n")
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual ranges reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeText(w, http.StatusAccepted, "✅ Reload triggered successfully\n")
		default:
			d.Logger.Warn("ranges reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeText(w, http.StatusTooManyRequests, "⏳ Reload already in progress, please wait\n")
		}
	}
}
