// Package cadence is a cron scheduling engine: a seven-field cron expression
// parser, a timezone-aware next-fire calculator, a swappable clock, and a
// scheduler that runs jobs inside per-run dependency injection scopes.
//
// The root package re-exports the most common surface; the subpackages hold
// the full APIs.
package cadence

import (
	"github.com/xraph/cadence/clock"
	"github.com/xraph/cadence/di"
	"github.com/xraph/cadence/schedule"
	"github.com/xraph/cadence/scheduler"
)

// Schedule is a parsed cron expression.
type Schedule = schedule.Schedule

// ParseError describes why an expression failed to parse.
type ParseError = schedule.ParseError

// Parse parses a cron expression or preset into a Schedule.
var Parse = schedule.Parse

// MustParse is Parse, panicking on error. For package-level schedules.
var MustParse = schedule.MustParse

// Clock abstracts the passage of time for the scheduler.
type Clock = clock.Clock

// SimulatedClock is a manually advanced Clock for tests.
type SimulatedClock = clock.SimulatedClock

// NewSystemClock creates a real-time Clock in the given location (UTC if nil).
var NewSystemClock = clock.NewSystemClock

// NewSimulatedClock creates a Clock that only moves via Advance or Set.
var NewSimulatedClock = clock.NewSimulatedClock

// Builder collects service registrations.
type Builder = di.Builder

// Container resolves registered services.
type Container = di.Container

// Scope is a bounded service lifetime, one per job run.
type Scope = di.Scope

// Resolver resolves services by name.
type Resolver = di.Resolver

// NewBuilder creates an empty service builder.
var NewBuilder = di.NewBuilder

// Engine owns registered jobs and their run loops.
type Engine = scheduler.Engine

// Job declares a scheduled job.
type Job = scheduler.Job

// JobStatus is a point-in-time snapshot of a job.
type JobStatus = scheduler.JobStatus

// NewEngine creates a scheduler engine resolving job scopes from container.
func NewEngine(container *di.Container, opts ...scheduler.Option) (*Engine, error) {
	return scheduler.New(container, opts...)
}
