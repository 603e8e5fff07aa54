// Package scheduler runs cron jobs on top of the schedule, clock and di
// packages. Every job gets its own run loop: compute the next fire time,
// wait for it on the engine clock, then execute the body inside a fresh
// dependency scope. A job never overlaps with itself; a run that outlasts
// its next fire time simply delays it.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/xraph/cadence/clock"
	"github.com/xraph/cadence/di"
	"github.com/xraph/cadence/logger"
	"github.com/xraph/cadence/schedule"
)

// Engine owns the registered jobs and their run loops.
type Engine struct {
	cfg       Config
	container *di.Container
	clk       clock.Clock
	log       logger.Logger
	reporter  Reporter
	metrics   *Metrics
	tracer    trace.Tracer

	mu      sync.Mutex
	handles map[string]*jobHandle
	order   []string
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option customizes an Engine.
type Option func(*Engine) error

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.cfg = cfg
		return nil
	}
}

// WithClock sets the clock the engine schedules against. Defaults to a
// system clock in the configured timezone.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) error {
		e.clk = clk
		return nil
	}
}

// WithLogger sets the engine logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) error {
		e.log = log
		return nil
	}
}

// WithReporter sets the failure/completion reporter. Defaults to a reporter
// that logs every event.
func WithReporter(r Reporter) Option {
	return func(e *Engine) error {
		e.reporter = r
		return nil
	}
}

// WithMetrics registers engine metrics with the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) error {
		m, err := NewMetrics(reg)
		if err != nil {
			return err
		}
		e.metrics = m
		return nil
	}
}

// WithTracer sets the tracer used to span job runs. Defaults to a no-op.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) error {
		e.tracer = tracer
		return nil
	}
}

// WithFailFast makes Start abort when any job fails to activate.
func WithFailFast(on bool) Option {
	return func(e *Engine) error {
		e.cfg.FailFast = on
		return nil
	}
}

// New creates an engine resolving job scopes from container.
func New(container *di.Container, opts ...Option) (*Engine, error) {
	if container == nil {
		return nil, fmt.Errorf("%w: nil container", ErrInvalidConfig)
	}

	e := &Engine{
		cfg:       DefaultConfig(),
		container: container,
		log:       logger.NewNoopLogger(),
		tracer:    noop.NewTracerProvider().Tracer("github.com/xraph/cadence/scheduler"),
		handles:   make(map[string]*jobHandle),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if e.clk == nil {
		loc, err := time.LoadLocation(e.cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, e.cfg.Timezone)
		}
		e.clk = clock.NewSystemClock(loc)
	}
	if e.reporter == nil {
		e.reporter = NewLogReporter(e.log)
	}
	e.log = e.log.Named("scheduler")
	return e, nil
}

// Add registers a job. Jobs can only be added before Start; a static
// Expression is parsed here so malformed expressions fail at registration.
func (e *Engine) Add(job Job) error {
	if job.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidJob)
	}
	if job.Run == nil {
		return fmt.Errorf("%w: job %q has no body", ErrInvalidJob, job.Name)
	}
	sources := 0
	if job.Expression != "" {
		sources++
	}
	if job.Schedule != nil {
		sources++
	}
	if job.ScheduleFunc != nil {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("%w: job %q must set exactly one of Expression, Schedule or ScheduleFunc", ErrInvalidJob, job.Name)
	}

	if job.Expression != "" {
		sched, err := schedule.Parse(job.Expression)
		if err != nil {
			return err
		}
		job.Schedule = sched
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return ErrEngineStarted
	}
	if _, ok := e.handles[job.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateJob, job.Name)
	}
	e.handles[job.Name] = newJobHandle(job)
	e.order = append(e.order, job.Name)
	return nil
}

// Start activates every registered job and launches its run loop. ctx bounds
// startup work only; run loops stop via Stop. Jobs whose schedule cannot be
// resolved are reported and marked Failed without affecting the others,
// unless FailFast is set.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrEngineStarted
	}
	e.started = true
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	handles := make([]*jobHandle, 0, len(e.order))
	for _, name := range e.order {
		handles = append(handles, e.handles[name])
	}
	e.mu.Unlock()

	var startupErrs []error
	for _, h := range handles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.activate(h); err != nil {
			h.setFailed(err)
			e.reporter.JobFailed(h.job.Name, "", PhaseScheduleResolution, err)
			if e.cfg.FailFast {
				cancel()
				return fmt.Errorf("activate job %q: %w", h.job.Name, err)
			}
			startupErrs = append(startupErrs, err)
			continue
		}

		e.metrics.jobActivated()
		e.wg.Add(1)
		go func(h *jobHandle) {
			defer e.wg.Done()
			defer e.metrics.jobStopped()
			e.runLoop(runCtx, h)
		}(h)
	}

	e.log.Info("scheduler started",
		logger.Int("jobs", len(handles)),
		logger.Int("failed", len(startupErrs)),
		logger.String("timezone", e.clk.Location().String()),
	)
	return nil
}

// activate resolves the job's schedule. Dynamic schedules are resolved once,
// against the root resolver.
func (e *Engine) activate(h *jobHandle) error {
	if h.job.ScheduleFunc == nil {
		return nil
	}
	sched, err := h.job.ScheduleFunc(e.container)
	if err != nil {
		return fmt.Errorf("resolve schedule: %w", err)
	}
	if sched == nil {
		return fmt.Errorf("resolve schedule: %w: nil schedule", ErrInvalidJob)
	}
	h.mu.Lock()
	h.sched = sched
	h.mu.Unlock()
	return nil
}

// Stop cancels all run loops and waits for in-flight runs, bounded by the
// configured shutdown timeout and ctx.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ErrEngineNotStarted
	}
	if e.stopped {
		e.mu.Unlock()
		return nil
	}
	e.stopped = true
	cancel := e.cancel
	e.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	var timeout <-chan time.Time
	if e.cfg.ShutdownTimeout > 0 {
		timer := time.NewTimer(e.cfg.ShutdownTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-done:
		e.log.Info("scheduler stopped")
		return nil
	case <-timeout:
		return fmt.Errorf("stop scheduler: %w", context.DeadlineExceeded)
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}

// Jobs returns a snapshot of every registered job, in registration order.
func (e *Engine) Jobs() []JobStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]JobStatus, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.handles[name].status())
	}
	return out
}

// Job returns the snapshot of a single job.
func (e *Engine) Job(name string) (JobStatus, bool) {
	e.mu.Lock()
	h, ok := e.handles[name]
	e.mu.Unlock()
	if !ok {
		return JobStatus{}, false
	}
	return h.status(), true
}

// runLoop drives one job until cancellation or a fatal schedule error. The
// clock wait is the only suspension point; the body itself is allowed to
// finish once started.
func (e *Engine) runLoop(ctx context.Context, h *jobHandle) {
	log := e.log.With(logger.String("job", h.job.Name))

	for {
		now := e.clk.Now()
		next, ok := h.sched.Next(now)
		if !ok {
			h.setFailed(ErrNoFireTime)
			e.reporter.JobFailed(h.job.Name, "", PhaseScheduleComputation, ErrNoFireTime)
			log.Error("schedule has no next fire time", logger.String("expression", h.sched.String()))
			return
		}
		h.setScheduled(next)
		log.Debug("job scheduled", logger.Time("next_fire", next))

		h.setState(StateWaiting)
		woke, err := e.clk.WaitUntil(ctx, next)
		if err != nil {
			h.setState(StateCancelled)
			log.Debug("job cancelled while waiting")
			return
		}
		e.metrics.recordLag(h.job.Name, woke.Sub(next))

		h.setState(StateFiring)
		e.fire(ctx, h, log)
	}
}

// fire executes one run inside a fresh scope. Run errors are recorded and
// reported; the loop then continues with the next cycle.
func (e *Engine) fire(ctx context.Context, h *jobHandle, log logger.Logger) {
	runID := uuid.New().String()

	// The body runs to completion even if Stop cancels the loop mid-run.
	runCtx := context.WithoutCancel(ctx)
	runCtx, span := e.tracer.Start(runCtx, "cron_job.run",
		trace.WithAttributes(
			attribute.String("cron.job", h.job.Name),
			attribute.String("cron.run_id", runID),
		))

	start := time.Now()
	scope := e.container.BeginScope()
	err := e.runBody(runCtx, h, scope)
	if closeErr := scope.Close(); closeErr != nil {
		log.Warn("scope teardown failed", logger.String("run_id", runID), logger.Err(closeErr))
	}
	took := time.Since(start)

	h.recordRun(err)
	e.metrics.recordRun(h.job.Name, took, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.reporter.JobFailed(h.job.Name, runID, PhaseRun, err)
		log.Error("job run failed", logger.String("run_id", runID), logger.Duration("took", took), logger.Err(err))
	} else {
		span.SetStatus(codes.Ok, "")
		e.reporter.RunCompleted(h.job.Name, runID, took)
	}
	span.End()
}

// runBody invokes the job body, converting panics into errors so one job
// cannot take down the engine.
func (e *Engine) runBody(ctx context.Context, h *jobHandle, scope *di.Scope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return h.job.Run(ctx, scope)
}
