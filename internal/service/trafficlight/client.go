package trafficlight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"TrafficLight/internal/domain/models"
	drepo "TrafficLight/internal/domain/repository"
	xhttp "TrafficLight/pkg/http"
	applogger "TrafficLight/pkg/logger"
	"TrafficLight/pkg/util"
)

const (
	defaultTimeout = 5 * time.Second
	defaultWindow  = 10 * time.Minute
)

// Client queries the TrafficLight endpoint for the rows of the trailing window.
type Client struct {
	baseURL string
	window  time.Duration
	http    *xhttp.Client
	session drepo.SessionManager
	clock   drepo.Clock
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithTimeout bounds each data request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = xhttp.NewClient(xhttp.WithTimeout(d))
		}
	}
}

// WithWindow overrides the query window length.
func WithWindow(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithHTTPClient overrides the client used for data requests.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a data client. clock supplies "now" for the query window.
func New(baseURL string, session drepo.SessionManager, clock drepo.Clock, metrics drepo.Metrics, logger *applogger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		window:  defaultWindow,
		http:    xhttp.NewClient(xhttp.WithTimeout(defaultTimeout)),
		session: session,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL builds the request URL for the window ending at the current UTC minute.
func (c *Client) URL(now time.Time) string {
	from, to := util.QueryWindow(now, c.window)
	return fmt.Sprintf("%s/TrafficLight/%s/%s", c.baseURL, util.FormatAPITime(from), util.FormatAPITime(to))
}

// Fetch returns the rows of the current window and the credential to use next time.
// A 401 triggers exactly one credential refresh and one retry.
func (c *Client) Fetch(ctx context.Context, cred models.Credential) ([]models.Row, models.Credential, error) {
	if cred.IsZero() {
		fresh, err := c.session.Acquire(ctx)
		if err != nil {
			return nil, cred, err
		}
		cred = fresh
	}

	url := c.URL(c.clock.Now())
	rows, err := c.get(ctx, url, cred)
	if err == nil {
		return rows, cred, nil
	}
	if xhttp.StatusCode(err) != http.StatusUnauthorized {
		return nil, cred, c.fetchError(url, err)
	}

	c.logger.Info("access token rejected, refreshing", applogger.String("url", url))
	fresh, aerr := c.session.Acquire(ctx)
	if aerr != nil {
		return nil, cred, aerr
	}

	rows, err = c.get(ctx, url, fresh)
	if err != nil {
		return nil, fresh, c.fetchError(url, err)
	}
	return rows, fresh, nil
}

func (c *Client) get(ctx context.Context, url string, cred models.Credential) ([]models.Row, error) {
	start := time.Now()
	defer func() { c.metrics.RecordLatency("fetch", time.Since(start).Seconds()) }()

	var rows []models.Row
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     url,
		Headers: map[string]string{"Authorization": "Bearer " + cred.AccessToken},
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) fetchError(url string, err error) error {
	var fe *models.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &models.FetchError{URL: url, Status: xhttp.StatusCode(err), Err: err}
}

var _ drepo.SignalFetcher = (*Client)(nil)
