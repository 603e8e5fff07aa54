package scheduler

import "errors"

var (
	// ErrNoFireTime reports that the next-fire search exhausted its bound
	// without finding a matching time. Fatal for the job; it is not
	// rescheduled.
	ErrNoFireTime = errors.New("no fire time within search bound")

	// ErrEngineStarted is returned when mutating an engine that already started.
	ErrEngineStarted = errors.New("engine already started")

	// ErrEngineNotStarted is returned by Stop before Start.
	ErrEngineNotStarted = errors.New("engine not started")

	// ErrDuplicateJob is returned when a job name is registered twice.
	ErrDuplicateJob = errors.New("job already registered")

	// ErrInvalidJob is returned for job declarations that are structurally
	// wrong (missing name, body, or schedule source).
	ErrInvalidJob = errors.New("invalid job declaration")

	// ErrInvalidConfig is returned for bad engine configuration.
	ErrInvalidConfig = errors.New("invalid scheduler config")
)
