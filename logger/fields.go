package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field represents a structured log field.
type Field = zap.Field

// Field constructors.
var (
	// String creates a string field.
	String = zap.String
	// Int creates an int field.
	Int = zap.Int
	// Int64 creates an int64 field.
	Int64 = zap.Int64
	// Uint64 creates a uint64 field.
	Uint64 = zap.Uint64
	// Float64 creates a float64 field.
	Float64 = zap.Float64
	// Bool creates a bool field.
	Bool = zap.Bool
	// Time creates a time field.
	Time = zap.Time
	// Duration creates a duration field.
	Duration = zap.Duration
	// Stringer creates a field from a Stringer.
	Stringer = zap.Stringer
	// Any creates a field with a value of arbitrary type.
	Any = zap.Any
)

// F is shorthand for Any.
func F(key string, value any) Field {
	return zap.Any(key, value)
}

// Err creates an error field under the "error" key.
func Err(err error) Field {
	return zap.Error(err)
}

// TimeP creates a time field from a possibly-nil pointer.
func TimeP(key string, t *time.Time) Field {
	if t == nil {
		return zap.Skip()
	}
	return zap.Time(key, *t)
}
