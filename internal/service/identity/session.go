package identity

import (
	"context"
	"errors"
	"time"

	"TrafficLight/internal/domain/models"
	drepo "TrafficLight/internal/domain/repository"
	xhttp "TrafficLight/pkg/http"
	applogger "TrafficLight/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultTimeout = 5 * time.Second

// Session performs the client-credentials exchange against the identity server.
// It never refreshes on its own; callers ask for a new token after a 401.
type Session struct {
	conf    *clientcredentials.Config
	client  *xhttp.Client
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// Option configures Session.
type Option func(*Session)

// WithTimeout bounds each token request.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.client = xhttp.NewClient(xhttp.WithTimeout(d))
		}
	}
}

// WithHTTPClient overrides the client used for the exchange.
func WithHTTPClient(c *xhttp.Client) Option {
	return func(s *Session) { s.client = c }
}

// WithScopes requests the given scopes.
func WithScopes(scopes ...string) Option {
	return func(s *Session) { s.conf.Scopes = scopes }
}

// New creates a Session for the given token endpoint and client credentials.
func New(tokenURL, clientID, clientSecret string, metrics drepo.Metrics, logger *applogger.Logger, opts ...Option) *Session {
	s := &Session{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			// the identity server expects client_id/client_secret in the form body
			AuthStyle: oauth2.AuthStyleInParams,
		},
		client:  xhttp.NewClient(xhttp.WithTimeout(defaultTimeout)),
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire exchanges the client credentials for a fresh bearer token.
func (s *Session) Acquire(ctx context.Context) (models.Credential, error) {
	if s.conf.ClientID == "" || s.conf.ClientSecret == "" {
		s.metrics.RecordTokenAcquired("error")
		return models.Credential{}, &models.AuthError{Err: errors.New("client id or secret not configured")}
	}

	start := time.Now()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client.HTTPClient())
	tok, err := s.conf.Token(ctx)
	s.metrics.RecordLatency("token", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordTokenAcquired("error")
		status := 0
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			status = re.Response.StatusCode
		}
		return models.Credential{}, &models.AuthError{Status: status, Err: err}
	}

	s.metrics.RecordTokenAcquired("ok")
	s.logger.Debug("access token acquired", applogger.Duration("took", time.Since(start)))
	return models.Credential{AccessToken: tok.AccessToken}, nil
}

var _ drepo.SessionManager = (*Session)(nil)
