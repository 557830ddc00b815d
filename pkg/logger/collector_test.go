package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestLogCollectorDeduplicatesRepeatedErrors(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 10,
		Topic:          "trafficlight.logs",
		Publisher:      pub,
	})

	fields := map[string]interface{}{"reason": "empty response"}
	c.AddLog("error", "failure mode", fields, "loop.go:1")
	c.AddLog("error", "failure mode", fields, "loop.go:1")
	c.AddLog("error", "failure mode", map[string]interface{}{"reason": "stale data"}, "loop.go:1")
	assert.Equal(t, 2, c.Pending())

	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Equal(t, "trafficlight.logs", pub.topic)
	total := 0
	for _, e := range pub.batches[0] {
		total += e.Count
	}
	assert.Equal(t, 3, total)
}

func TestLoggerErrorFeedsCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Publisher: pub})

	l.Error("fetch failed", Error(errors.New("timeout")))
	l.Info("not collected")
	require.Equal(t, 1, l.collector.Pending())

	l.RemoveCollector()
	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Equal(t, "timeout", pub.batches[0][0].Fields["error"])
}
