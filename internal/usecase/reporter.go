package usecase

import (
	"context"
	"time"

	"TrafficLight/internal/domain/models"
	drepo "TrafficLight/internal/domain/repository"
	applogger "TrafficLight/pkg/logger"

	"github.com/google/uuid"
)

const defaultSinkTimeout = 2 * time.Second

// Reporter forwards loop output to the optional sinks.
// Sink errors are logged and counted; they never affect the loop.
// A nil *Reporter discards everything.
type Reporter struct {
	status  drepo.StatusStore
	events  drepo.EventPublisher
	audit   drepo.ObservationStorage
	metrics drepo.Metrics
	logger  *applogger.Logger
	timeout time.Duration
}

// NewReporter creates a Reporter. Any sink may be nil.
func NewReporter(status drepo.StatusStore, events drepo.EventPublisher, audit drepo.ObservationStorage, metrics drepo.Metrics, logger *applogger.Logger) *Reporter {
	return &Reporter{
		status:  status,
		events:  events,
		audit:   audit,
		metrics: metrics,
		logger:  logger,
		timeout: defaultSinkTimeout,
	}
}

// Snapshot stores the latest loop status.
func (r *Reporter) Snapshot(ctx context.Context, s models.StatusSnapshot) {
	if r == nil || r.status == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.status.Save(ctx, s); err != nil {
		r.sinkError("status_store", err)
	}
}

// Event publishes a transition, assigning an id if it has none.
func (r *Reporter) Event(ctx context.Context, e models.TransitionEvent) {
	if r == nil || r.events == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.events.Publish(ctx, e); err != nil {
		r.sinkError("events", err)
	}
}

// Audit records an applied observation.
func (r *Reporter) Audit(ctx context.Context, o models.Observation, appliedAt time.Time) {
	if r == nil || r.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.audit.Store(ctx, o, appliedAt); err != nil {
		r.sinkError("audit", err)
	}
}

func (r *Reporter) sinkError(sink string, err error) {
	r.metrics.RecordError(sink)
	r.logger.Warn("status sink failed", applogger.String("sink", sink), applogger.Error(err))
}
