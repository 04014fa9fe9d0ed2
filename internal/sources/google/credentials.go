package google

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"

	"github.com/MrSnakeDoc/timejump/internal/domain"
)

const (
	// DefaultTokenURL is Google's OAuth2 token endpoint.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
	// DefaultScope grants read-only access to spreadsheets.
	DefaultScope = "https://www.googleapis.com/auth/spreadsheets.readonly"
	// AssertionLifetime is the validity requested for the signed assertion.
	AssertionLifetime = time.Hour
)

// CredentialProvider returns a bearer token for the table data source.
type CredentialProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// ServiceAccountOptions configures the JWT-bearer exchange.
type ServiceAccountOptions struct {
	ClientEmail string       // service account identity (iss)
	PrivateKey  []byte       // PEM encoded RSA key, PKCS#8 or PKCS#1
	TokenURL    string       // token endpoint (aud), defaults to DefaultTokenURL
	Scopes      []string     // defaults to DefaultScope
	HTTPClient  *http.Client // optional, used for the exchange
}

// ServiceAccount exchanges a signed assertion for an access token on every call.
// Tokens are not cached between requests.
type ServiceAccount struct {
	cfg    *jwt.Config
	client *http.Client
}

// NewServiceAccount builds a provider from opts.
func NewServiceAccount(opts ServiceAccountOptions) *ServiceAccount {
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}

	return &ServiceAccount{
		cfg: &jwt.Config{
			Email:      opts.ClientEmail,
			PrivateKey: opts.PrivateKey,
			Scopes:     scopes,
			TokenURL:   tokenURL,
			Expires:    AssertionLifetime,
		},
		client: opts.HTTPClient,
	}
}

// AccessToken signs an RS256 assertion and exchanges it at the token endpoint.
// Any failure is returned as *domain.UpstreamAuthError.
func (s *ServiceAccount) AccessToken(ctx context.Context) (string, error) {
	if s.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	}

	tok, err := s.cfg.TokenSource(ctx).Token()
	if err != nil {
		return "", &domain.UpstreamAuthError{Err: err}
	}
	return tok.AccessToken, nil
}
