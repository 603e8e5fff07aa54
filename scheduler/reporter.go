package scheduler

import (
	"time"

	"github.com/xraph/cadence/logger"
)

// Phase identifies which part of a job's lifecycle a failure belongs to, so
// operators can tell configuration errors from runtime errors.
type Phase string

const (
	// PhaseScheduleResolution covers startup-time schedule resolution and
	// validation. Failures here are fatal: the job is never activated.
	PhaseScheduleResolution Phase = "schedule_resolution"

	// PhaseScheduleComputation covers next-fire computation. A failure here
	// means the schedule has no reachable fire time; fatal for the job.
	PhaseScheduleComputation Phase = "schedule_computation"

	// PhaseRun covers job body execution. Failures are reported and the
	// loop continues with the next cycle.
	PhaseRun Phase = "run"
)

// Reporter receives per-job failure and completion events from the engine.
// Implementations must be safe for concurrent use.
type Reporter interface {
	// JobFailed reports a failure together with the phase it occurred in.
	// runID is empty outside PhaseRun.
	JobFailed(job string, runID string, phase Phase, err error)

	// RunCompleted reports a successful run.
	RunCompleted(job string, runID string, took time.Duration)
}

// logReporter is the default Reporter; it writes through the engine logger.
type logReporter struct {
	log logger.Logger
}

// NewLogReporter creates a Reporter that logs every event.
func NewLogReporter(log logger.Logger) Reporter {
	return &logReporter{log: log}
}

func (r *logReporter) JobFailed(job, runID string, phase Phase, err error) {
	fields := []logger.Field{
		logger.String("job", job),
		logger.String("phase", string(phase)),
		logger.Err(err),
	}
	if runID != "" {
		fields = append(fields, logger.String("run_id", runID))
	}
	r.log.Error("cron job failed", fields...)
}

func (r *logReporter) RunCompleted(job, runID string, took time.Duration) {
	r.log.Debug("cron job run completed",
		logger.String("job", job),
		logger.String("run_id", runID),
		logger.Duration("took", took),
	)
}
