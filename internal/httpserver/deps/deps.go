package deps

import (
	"time"

	"github.com/MrSnakeDoc/timejump/internal/domain"
	"github.com/MrSnakeDoc/timejump/internal/index"
	"github.com/MrSnakeDoc/timejump/internal/logger"
	"github.com/MrSnakeDoc/timejump/internal/metrics"
	"github.com/MrSnakeDoc/timejump/internal/sources/google"
	redisstore "github.com/MrSnakeDoc/timejump/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	// Rule evaluation
	Clock    *domain.Clock            // reference timezone and time source
	Resolver *domain.RedirectResolver // parses rows and selects the winner

	// Upstream collaborators, called on every redirect request
	Credentials   google.CredentialProvider
	Sheets        google.TableDataSource
	Ranges        *index.RangeIndex // candidate ranges, tried in order
	ReloadTrigger chan struct{}     // manual ranges reload, nil when reloading is not running
	SpreadsheetID string
	ClientEmail   string // shown in diagnostics as configured / not configured
	PrivateKeySet bool   // the key itself is never shown
	ConfigErr     error  // *domain.ConfigurationError when credentials are missing

	Metrics *metrics.Prometheus
	Stats   *redisstore.Store // optional, nil-safe

	AllowedHosts    []string // Host headers allowed on the redirect endpoint
	AllowedCIDRS    []string // IPs allowed to access infra endpoints
	TrustProxy      bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst  int      // 0 disables the redirect rate limiter
	RateLimitPerMin int
}
