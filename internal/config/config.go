package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/timejump/internal/domain"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, cancels upstream calls (ex: 15s)
	UpstreamTimeout time.Duration // HTTP client timeout for token and sheets calls (ex: 10s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Rule evaluation
	TimeZone             string        // reference IANA zone for wall-clock cells and display (ex: America/Denver)
	RangesFile           string        // optional YAML list of candidate ranges (empty = built-in defaults)
	RangesReloadInterval time.Duration // interval to re-read RangesFile (0 = only on startup and /reload)

	// Google credentials and spreadsheet
	SpreadsheetID string
	ClientEmail   string
	PrivateKey    string // PEM, literal "\n" sequences already expanded
	TokenURL      string
	SheetsBaseURL string
	Scope         string

	// Redis (optional stats store, empty RedisAddr = disabled)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Access restrictions
	AllowedHosts []string // optional, restrict the redirect endpoint to specific Host headers
	AllowedCIDRS []string // optional, restrict infra endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	// Rate limiting on the redirect endpoint (burst 0 = disabled)
	RateLimitBurst  int
	RateLimitPerMin int
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("TIMEJUMP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("TIMEJUMP_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("TIMEJUMP_REQUEST_TIMEOUT", 15*time.Second),
		UpstreamTimeout: mustDuration("TIMEJUMP_UPSTREAM_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("TIMEJUMP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("TIMEJUMP_PRETTY_LOG", true),

		// Rule evaluation
		TimeZone:             getenv("TIMEJUMP_TIMEZONE", "America/Denver"),
		RangesFile:           getenv("TIMEJUMP_RANGES_FILE", ""),
		RangesReloadInterval: mustDuration("TIMEJUMP_RANGES_RELOAD_INTERVAL", time.Hour),

		// Google (validated per request, see ValidateCredentials)
		SpreadsheetID: strings.TrimSpace(os.Getenv("SPREADSHEET_ID")),
		ClientEmail:   strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_EMAIL")),
		PrivateKey:    expandNewlines(os.Getenv("GOOGLE_PRIVATE_KEY")),
		TokenURL:      getenv("TIMEJUMP_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		SheetsBaseURL: getenv("TIMEJUMP_SHEETS_BASE_URL", "https://sheets.googleapis.com"),
		Scope:         getenv("TIMEJUMP_SCOPE", "https://www.googleapis.com/auth/spreadsheets.readonly"),

		// Redis settings
		RedisAddr:           getenv("TIMEJUMP_REDIS_ADDR", ""),
		RedisUser:           getenv("TIMEJUMP_REDIS_USERNAME", ""),
		RedisPassword:       getenv("TIMEJUMP_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("TIMEJUMP_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("TIMEJUMP_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("TIMEJUMP_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("TIMEJUMP_TRUST_PROXY", true),

		RateLimitBurst:  getenvInt("TIMEJUMP_RATE_LIMIT_BURST", 0),
		RateLimitPerMin: getenvInt("TIMEJUMP_RATE_LIMIT_PER_MIN", 60),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.PrivateKey = redact(cfg.PrivateKey)
		cfgCopy.RedisPassword = redact(cfg.RedisPassword)
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// ValidateCredentials reports missing Google settings as a *domain.ConfigurationError.
// Startup does not fail on it; the redirect endpoint reports it per request.
func (c *Config) ValidateCredentials() error {
	var missing []string
	if c.ClientEmail == "" {
		missing = append(missing, "GOOGLE_CLIENT_EMAIL")
	}
	if c.PrivateKey == "" {
		missing = append(missing, "GOOGLE_PRIVATE_KEY")
	}
	if c.SpreadsheetID == "" {
		missing = append(missing, "SPREADSHEET_ID")
	}
	if len(missing) > 0 {
		return &domain.ConfigurationError{Missing: missing}
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// expandNewlines turns literal "\n" sequences (common when a PEM key is pasted
// into a single-line env var) into real newlines.
func expandNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***REDACTED***"
}
