package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"TrafficLight/pkg/config"
	applogger "TrafficLight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingLoop struct{ started chan struct{} }

func (l *blockingLoop) Run(ctx context.Context) error {
	close(l.started)
	<-ctx.Done()
	return nil
}

type failingLoop struct{}

func (failingLoop) Run(context.Context) error { return errors.New("boom") }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestRunStopsOnCancelAndClosesInReverse(t *testing.T) {
	loop := &blockingLoop{started: make(chan struct{})}
	app := New(testConfig(t), applogger.Nop(), loop)

	var order []string
	app.OnClose("cache", func() error { order = append(order, "cache"); return nil })
	app.OnClose("kafka", func() error { order = append(order, "kafka"); return errors.New("already closed") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	<-loop.started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, []string{"kafka", "cache"}, order)
}

func TestRunReportsLoopError(t *testing.T) {
	app := New(testConfig(t), applogger.Nop(), failingLoop{})
	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
