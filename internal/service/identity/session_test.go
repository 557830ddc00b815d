package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"TrafficLight/internal/domain/models"
	applogger "TrafficLight/pkg/logger"
	"TrafficLight/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireSendsClientCredentialsForm(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id-123", r.PostForm.Get("client_id"))
		assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	s := New(srv.URL, "id-123", "s3cret", metrics.Noop{}, applogger.Nop())
	cred, err := s.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cred.AccessToken)

	// no caching: every Acquire is a new exchange
	_, err = s.Acquire(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestAcquireNon2xxIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	s := New(srv.URL, "id", "wrong", metrics.Noop{}, applogger.Nop())
	_, err := s.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrAuth))

	var ae *models.AuthError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusBadRequest, ae.Status)
}

func TestAcquireTimeoutIsAuthError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	s := New(srv.URL, "id", "secret", metrics.Noop{}, applogger.Nop(), WithTimeout(50*time.Millisecond))
	_, err := s.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrAuth))
}

func TestAcquireWithoutSecretsFailsWithoutNetwork(t *testing.T) {
	s := New("http://127.0.0.1:1/never", "", "", metrics.Noop{}, applogger.Nop())
	_, err := s.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrAuth))
	assert.Contains(t, err.Error(), "not configured")
}
