package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/cadence/di"
	"github.com/xraph/cadence/schedule"
)

// Job declares a scheduled job. Exactly one of Expression, Schedule or
// ScheduleFunc must be set.
type Job struct {
	// Name identifies the job in reports, logs and metrics.
	Name string

	// Expression is a static cron expression, parsed when the job is added.
	Expression string

	// Schedule is a pre-parsed static schedule.
	Schedule *schedule.Schedule

	// ScheduleFunc resolves the schedule once at engine startup against the
	// root resolver. Only singleton and transient services are resolvable
	// there; its result becomes the job's fixed schedule.
	ScheduleFunc func(di.Resolver) (*schedule.Schedule, error)

	// Run is the job body. It receives a scope opened for this run only;
	// the engine closes the scope when the body returns.
	Run func(ctx context.Context, scope *di.Scope) error
}

// JobState is the live state of a job's run loop.
type JobState string

const (
	StateInitializing JobState = "initializing"
	StateScheduled    JobState = "scheduled"
	StateWaiting      JobState = "waiting"
	StateFiring       JobState = "firing"
	StateCancelled    JobState = "cancelled"
	StateFailed       JobState = "failed"
)

// JobStatus is a point-in-time snapshot of one job's scheduling state.
type JobStatus struct {
	Name       string    `json:"name"`
	State      JobState  `json:"state"`
	Expression string    `json:"expression,omitempty"`
	NextFire   time.Time `json:"nextFire,omitzero"`
	Runs       uint64    `json:"runs"`
	Failures   uint64    `json:"failures"`
	LastError  string    `json:"lastError,omitempty"`
}

// jobHandle is the engine-internal per-job state.
type jobHandle struct {
	job Job

	mu       sync.Mutex
	state    JobState
	sched    *schedule.Schedule
	nextFire time.Time
	runs     uint64
	failures uint64
	lastErr  error
}

func newJobHandle(job Job) *jobHandle {
	return &jobHandle{job: job, state: StateInitializing, sched: job.Schedule}
}

func (h *jobHandle) setState(state JobState) {
	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
}

func (h *jobHandle) setScheduled(next time.Time) {
	h.mu.Lock()
	h.state = StateScheduled
	h.nextFire = next
	h.mu.Unlock()
}

func (h *jobHandle) setFailed(err error) {
	h.mu.Lock()
	h.state = StateFailed
	h.lastErr = err
	h.mu.Unlock()
}

func (h *jobHandle) recordRun(err error) {
	h.mu.Lock()
	h.runs++
	if err != nil {
		h.failures++
		h.lastErr = err
	}
	h.mu.Unlock()
}

func (h *jobHandle) status() JobStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := JobStatus{
		Name:     h.job.Name,
		State:    h.state,
		Runs:     h.runs,
		Failures: h.failures,
	}
	if h.sched != nil {
		st.Expression = h.sched.String()
	}
	if h.state == StateScheduled || h.state == StateWaiting {
		st.NextFire = h.nextFire
	}
	if h.lastErr != nil {
		st.LastError = h.lastErr.Error()
	}
	return st
}
