package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"TrafficLight/internal/domain/models"
	"TrafficLight/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStatusStore(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheStatusStore(mc, 0)
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoStatus)

	end := time.Date(2025, 9, 8, 13, 25, 0, 0, time.UTC)
	in := models.StatusSnapshot{
		Phase:         models.PhaseHealthy,
		Label:         "YELLOW_NEG",
		Magnitude:     -2,
		Bucket:        "yellow",
		LastAppliedTo: &end,
		UpdatedAt:     end.Add(30 * time.Second),
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in.Phase, out.Phase)
	assert.Equal(t, -2, out.Magnitude)
	require.NotNil(t, out.LastAppliedTo)
	assert.True(t, end.Equal(*out.LastAppliedTo))
}

type fakeProducer struct {
	topic string
	key   []byte
	value interface{}
	err   error
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, key, value
	return f.err
}

func (f *fakeProducer) Close() error { return nil }

func TestKafkaEventPublisher(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaEventPublisher(fp, "trafficlight.transitions")

	ev := models.TransitionEvent{ID: "e-1", Type: models.EventFailure, Reason: "empty response", Kind: "empty"}
	require.NoError(t, pub.Publish(context.Background(), ev))

	assert.Equal(t, "trafficlight.transitions", fp.topic)
	assert.Equal(t, []byte("e-1"), fp.key)

	b, err := json.Marshal(fp.value)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"failure"`)
	assert.Contains(t, string(b), `"reason":"empty response"`)

	fp.err = errors.New("broker down")
	assert.Error(t, pub.Publish(context.Background(), ev))
}

type execCall struct {
	query string
	args  []interface{}
}

type fakeDB struct {
	calls []execCall
	err   error
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	return nil, f.err
}

func (f *fakeDB) PingContext(context.Context) error { return f.err }

func TestClickHouseObservationStorage(t *testing.T) {
	db := &fakeDB{}
	s := NewClickHouseObservationStorage(db, "obs")
	ctx := context.Background()

	require.NoError(t, s.Init(ctx))
	require.Len(t, db.calls, 1)
	assert.True(t, strings.HasPrefix(db.calls[0].query, "CREATE TABLE IF NOT EXISTS obs"))

	sig, err := models.LookupSignal("RED_NEG")
	require.NoError(t, err)
	start := time.Date(2025, 9, 8, 13, 20, 0, 0, time.UTC)
	o := models.Observation{WindowStart: start, WindowEnd: start.Add(5 * time.Minute), Signal: sig}

	require.NoError(t, s.Store(ctx, o, start.Add(6*time.Minute)))
	require.Len(t, db.calls, 2)
	call := db.calls[1]
	assert.True(t, strings.HasPrefix(call.query, "INSERT INTO obs"))
	require.Len(t, call.args, 6)
	assert.Equal(t, "RED_NEG", call.args[3])
	assert.Equal(t, int8(-3), call.args[4])
	assert.Equal(t, "red", call.args[5])

	db.err = errors.New("connection refused")
	assert.Error(t, s.Store(ctx, o, time.Now()))
	assert.Error(t, s.Health(ctx))
}
