package repository

import (
	"context"
	"time"

	"TrafficLight/internal/domain/models"
)

// SessionManager obtains bearer credentials for the data API.
type SessionManager interface {
	Acquire(ctx context.Context) (models.Credential, error)
}

// SignalFetcher returns the rows of the current query window, rotating the credential on a 401.
type SignalFetcher interface {
	Fetch(ctx context.Context, cred models.Credential) ([]models.Row, models.Credential, error)
}

// Indicator renders loop decisions as a physical or visual signal.
type Indicator interface {
	RenderState(bucket models.Bucket)
	RenderFailure()
	SoundOK()
	SoundError()
	SelfTestStart()
	SelfTestPass()
	SelfTestFail()
}

// Clock abstracts wall time and sleeping so the loop can be driven in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// StatusStore keeps the latest loop snapshot for the status API.
type StatusStore interface {
	Save(ctx context.Context, s models.StatusSnapshot) error
	Load(ctx context.Context) (models.StatusSnapshot, error)
}

// EventPublisher emits loop transitions to an external stream.
type EventPublisher interface {
	Publish(ctx context.Context, e models.TransitionEvent) error
	Close() error
}

// ObservationStorage records applied observations for auditing. Write-only.
type ObservationStorage interface {
	Store(ctx context.Context, o models.Observation, appliedAt time.Time) error
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordPoll(outcome string)
	RecordFailure(kind string)
	RecordFailureState(inFailure bool)
	RecordApplied(magnitude int)
	RecordLatency(op string, seconds float64)
	RecordTokenAcquired(result string)
	RecordSettleHold()
	RecordError(kind string)
}
