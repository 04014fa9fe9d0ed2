package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/timejump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/timejump/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/timejump/internal/httpserver/mw"
	"github.com/MrSnakeDoc/timejump/internal/logger"
)

func init() { Register(registerRedirect) }

func registerRedirect(r chi.Router, d deps.Deps) {
	rl := mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
		OnReject: func(ip string, reason mw.RejectReason) {
			d.Metrics.RateLimited(string(reason))
			if d.Logger != nil {
				d.Logger.Debug("redirect rate limited", logger.String("ip", ip), logger.String("reason", string(reason)))
			}
		},
	}

	mws := []Middleware{mw.EnforceHost(d.AllowedHosts, d.Logger)}
	if rl.Enabled() {
		mws = append(mws, mw.RateLimit(rl))
	}

	r.With(mws...).Get("/", handlers.Redirect(d))
}
