package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"TrafficLight/internal/domain/models"
	drepo "TrafficLight/internal/domain/repository"
	applogger "TrafficLight/pkg/logger"
	"TrafficLight/pkg/util"
)

const (
	DefaultPollInterval = 1100 * time.Millisecond
	DefaultSettleHold   = 55 * time.Second
	DefaultStaleAfter   = 2 * time.Minute
)

// Outcome summarizes one poll cycle.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeCanceled  Outcome = "canceled"
)

// LoopState is owned by the Reconciler and never persisted.
type LoopState struct {
	Phase           models.Phase
	LastAppliedTo   time.Time // zero until the first application
	InFailure       bool
	FirstAfterStart bool
	FailureReason   string
	Applied         *models.Observation
	Credential      models.Credential
}

// NewLoopState returns the state at process start.
func NewLoopState() *LoopState {
	return &LoopState{Phase: models.PhaseStarting, FirstAfterStart: true}
}

// Reconciler polls the signal feed and drives the indicator.
//
// A new observation is applied only when its window end is strictly after the
// last applied one. Failure entry and exit are each signaled once per transition;
// while in failure the indicator keeps showing the failure signal and a newly
// applied bucket is rendered on recovery.
type Reconciler struct {
	fetcher   drepo.SignalFetcher
	indicator drepo.Indicator
	clock     drepo.Clock
	metrics   drepo.Metrics
	logger    *applogger.Logger
	reporter  *Reporter

	pollInterval time.Duration
	settleHold   time.Duration
	staleAfter   time.Duration
	location     *time.Location
	progress     func(remaining time.Duration)

	state *LoopState
}

// ReconcilerOption configures Reconciler.
type ReconcilerOption func(*Reconciler)

func WithPollInterval(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

func WithSettleHold(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if d >= 0 {
			r.settleHold = d
		}
	}
}

func WithStaleAfter(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if d > 0 {
			r.staleAfter = d
		}
	}
}

// WithLocation sets the zone used when logging applied windows.
func WithLocation(loc *time.Location) ReconcilerOption {
	return func(r *Reconciler) { r.location = loc }
}

// WithProgress receives the remaining settle hold once per second and 0 when it ends.
func WithProgress(fn func(remaining time.Duration)) ReconcilerOption {
	return func(r *Reconciler) { r.progress = fn }
}

// WithReporter forwards snapshots, transitions and applied observations.
func WithReporter(rep *Reporter) ReconcilerOption {
	return func(r *Reconciler) { r.reporter = rep }
}

// NewReconciler creates a Reconciler in the STARTING phase.
func NewReconciler(fetcher drepo.SignalFetcher, indicator drepo.Indicator, clock drepo.Clock, metrics drepo.Metrics, logger *applogger.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		fetcher:      fetcher,
		indicator:    indicator,
		clock:        clock,
		metrics:      metrics,
		logger:       logger,
		pollInterval: DefaultPollInterval,
		settleHold:   DefaultSettleHold,
		staleAfter:   DefaultStaleAfter,
		location:     time.UTC,
		state:        NewLoopState(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns a copy of the loop state.
func (r *Reconciler) State() LoopState {
	return *r.state
}

// Run performs the startup probe and then polls until ctx is canceled.
func (r *Reconciler) Run(ctx context.Context) error {
	r.Startup(ctx)
	for {
		if ctx.Err() != nil {
			return nil
		}
		r.Step(ctx)
		if err := r.clock.Sleep(ctx, r.pollInterval); err != nil {
			return nil
		}
	}
}

// Startup runs the self-test and the initial probe fetch.
func (r *Reconciler) Startup(ctx context.Context) {
	r.indicator.SelfTestStart()

	rows, cred, err := r.fetcher.Fetch(ctx, r.state.Credential)
	r.state.Credential = cred
	if err != nil {
		r.indicator.SelfTestFail()
		r.fail(ctx, "startup error: "+err.Error(), err)
		r.report(ctx)
		return
	}

	obs, err := latestObservation(rows)
	if err == nil {
		err = r.checkFresh(obs, r.clock.Now())
	}
	if err != nil {
		r.indicator.SelfTestFail()
		r.fail(ctx, "startup: "+reasonFor(err, rows), err)
		r.report(ctx)
		return
	}

	r.indicator.SelfTestPass()
	r.state.Phase = models.PhaseHealthy
	r.apply(ctx, obs, "initial state")
	r.report(ctx)
}

// Step executes one poll cycle, including the settle hold after a newly applied state.
func (r *Reconciler) Step(ctx context.Context) Outcome {
	outcome := r.evaluate(ctx)
	r.metrics.RecordPoll(string(outcome))
	if outcome == OutcomeCanceled {
		return outcome
	}
	r.report(ctx)

	if outcome == OutcomeApplied {
		if r.state.FirstAfterStart {
			r.state.FirstAfterStart = false
		} else {
			r.hold(ctx)
		}
	}
	return outcome
}

func (r *Reconciler) evaluate(ctx context.Context) Outcome {
	rows, cred, err := r.fetcher.Fetch(ctx, r.state.Credential)
	r.state.Credential = cred
	if err != nil {
		if ctx.Err() != nil {
			return OutcomeCanceled
		}
		r.fail(ctx, err.Error(), err)
		return Outcome(models.FailureKind(err))
	}

	obs, err := latestObservation(rows)
	if err != nil {
		r.fail(ctx, reasonFor(err, rows), err)
		return Outcome(models.FailureKind(err))
	}

	outcome := OutcomeUnchanged
	if r.state.LastAppliedTo.IsZero() || obs.WindowEnd.After(r.state.LastAppliedTo) {
		r.apply(ctx, obs, "applied")
		outcome = OutcomeApplied
	}

	if err := r.checkFresh(obs, r.clock.Now()); err != nil {
		r.fail(ctx, err.Error(), err)
		if outcome == OutcomeUnchanged {
			return Outcome(models.FailureKind(err))
		}
		return outcome
	}
	r.recover(ctx)
	return outcome
}

func (r *Reconciler) apply(ctx context.Context, obs models.Observation, msg string) {
	r.state.LastAppliedTo = obs.WindowEnd
	r.state.Applied = &obs
	if !r.state.InFailure {
		r.indicator.RenderState(obs.Signal.Bucket)
	}

	r.logger.Info(msg,
		applogger.String("window", fmt.Sprintf("%s → %s",
			util.FormatDisplay(obs.WindowStart, r.location),
			util.FormatDisplay(obs.WindowEnd, r.location))),
		applogger.Int("value", obs.Signal.Magnitude),
		applogger.String("label", string(obs.Signal.Label)),
	)
	r.metrics.RecordApplied(obs.Signal.Magnitude)

	appliedAt := r.clock.Now()
	r.reporter.Audit(ctx, obs, appliedAt)
	r.reporter.Event(ctx, models.TransitionEvent{
		Type:        models.EventApplied,
		Label:       string(obs.Signal.Label),
		Magnitude:   obs.Signal.Magnitude,
		Bucket:      string(obs.Signal.Bucket),
		WindowStart: timePtr(obs.WindowStart),
		WindowEnd:   timePtr(obs.WindowEnd),
		At:          appliedAt,
	})
}

func (r *Reconciler) fail(ctx context.Context, reason string, err error) {
	kind := models.FailureKind(err)
	if r.state.InFailure {
		r.state.FailureReason = reason
		r.logger.Debug("still in failure mode", applogger.String("reason", reason), applogger.String("kind", kind))
		return
	}

	r.state.InFailure = true
	r.state.Phase = models.PhaseFailed
	r.state.FailureReason = reason

	r.logger.Error("failure mode", applogger.String("reason", reason), applogger.String("kind", kind))
	r.indicator.RenderFailure()
	r.indicator.SoundError()
	r.metrics.RecordFailure(kind)
	r.metrics.RecordFailureState(true)
	r.reporter.Event(ctx, models.TransitionEvent{
		Type:   models.EventFailure,
		Reason: reason,
		Kind:   kind,
		At:     r.clock.Now(),
	})
}

func (r *Reconciler) recover(ctx context.Context) {
	r.state.Phase = models.PhaseHealthy
	if !r.state.InFailure {
		return
	}
	r.state.InFailure = false
	r.state.FailureReason = ""

	ev := models.TransitionEvent{Type: models.EventRecovered, At: r.clock.Now()}
	if obs := r.state.Applied; obs != nil {
		r.indicator.RenderState(obs.Signal.Bucket)
		ev.Label = string(obs.Signal.Label)
		ev.Magnitude = obs.Signal.Magnitude
		ev.Bucket = string(obs.Signal.Bucket)
		ev.WindowEnd = timePtr(obs.WindowEnd)
	}
	r.logger.Info("recovered from failure mode")
	r.metrics.RecordFailureState(false)
	r.reporter.Event(ctx, ev)
}

// checkFresh reports ErrStaleData when the window end is more than staleAfter before now.
func (r *Reconciler) checkFresh(obs models.Observation, now time.Time) error {
	age := now.Sub(obs.WindowEnd)
	if age > r.staleAfter {
		return fmt.Errorf("%w (%s)", models.ErrStaleData, age.Round(time.Second))
	}
	return nil
}

func (r *Reconciler) hold(ctx context.Context) {
	r.metrics.RecordSettleHold()
	for left := r.settleHold; left > 0; left -= time.Second {
		if r.progress != nil {
			r.progress(left)
		}
		if err := r.clock.Sleep(ctx, min(time.Second, left)); err != nil {
			break
		}
	}
	if r.progress != nil {
		r.progress(0)
	}
}

func (r *Reconciler) report(ctx context.Context) {
	s := models.StatusSnapshot{
		Phase:         r.state.Phase,
		InFailure:     r.state.InFailure,
		FailureReason: r.state.FailureReason,
		UpdatedAt:     r.clock.Now(),
	}
	if obs := r.state.Applied; obs != nil {
		s.Label = string(obs.Signal.Label)
		s.Magnitude = obs.Signal.Magnitude
		s.Bucket = string(obs.Signal.Bucket)
		s.WindowStart = timePtr(obs.WindowStart)
		s.LastAppliedTo = timePtr(obs.WindowEnd)
	}
	r.reporter.Snapshot(ctx, s)
}

// latestObservation normalizes the last row of a response.
func latestObservation(rows []models.Row) (models.Observation, error) {
	if len(rows) == 0 {
		return models.Observation{}, models.ErrEmptyResult
	}
	latest := rows[len(rows)-1]
	sig, err := models.LookupSignal(latest.Value)
	if err != nil {
		return models.Observation{}, err
	}
	to, err := util.ParseUTC(latest.To)
	if err != nil {
		return models.Observation{}, err
	}
	from, err := util.ParseUTC(latest.From)
	if err != nil {
		return models.Observation{}, err
	}
	return models.Observation{WindowStart: from, WindowEnd: to, Signal: sig}, nil
}

func reasonFor(err error, rows []models.Row) string {
	switch {
	case errors.Is(err, models.ErrEmptyResult):
		return "empty response"
	case errors.Is(err, models.ErrUnknownLabel) && len(rows) > 0:
		return "unknown value: " + rows[len(rows)-1].Value
	default:
		return err.Error()
	}
}

// Countdown renders the settle hold as "Sleeping: NNs" on a single terminal line.
func Countdown(w io.Writer) func(time.Duration) {
	return func(left time.Duration) {
		if left <= 0 {
			fmt.Fprint(w, "\r")
			return
		}
		fmt.Fprintf(w, "\rSleeping: %02ds", int(left.Round(time.Second)/time.Second))
	}
}

func timePtr(t time.Time) *time.Time { return &t }
