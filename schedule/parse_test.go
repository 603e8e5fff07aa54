package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNext(t *testing.T, s *Schedule, after time.Time) time.Time {
	t.Helper()
	next, ok := s.Next(after)
	require.True(t, ok, "expected a next fire time for %q after %v", s.String(), after)
	return next
}

func TestParsePresets(t *testing.T) {
	after := time.Date(2024, 3, 10, 10, 30, 45, 0, time.UTC)

	tests := []struct {
		preset string
		want   time.Time
	}{
		{"@hourly", time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)},
		{"@daily", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"@midnight", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"@weekly", time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)}, // next Sunday
		{"@monthly", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"@yearly", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"@annually", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			s, err := Parse(tt.preset)
			require.NoError(t, err)
			assert.Equal(t, tt.preset, s.String())
			assert.Equal(t, tt.want, mustNext(t, s, after))
		})
	}
}

func TestParseFiveFieldsDefaultsSecondsToWildcard(t *testing.T) {
	s, err := Parse("30 14 * * *")
	require.NoError(t, err)

	first := mustNext(t, s, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC), first)

	// Seconds are unconstrained, so the schedule fires every second of 14:30.
	second := mustNext(t, s, first)
	assert.Equal(t, first.Add(time.Second), second)
}

func TestParseSixFieldsPrefersSeconds(t *testing.T) {
	s, err := Parse("0 30 14 * * *")
	require.NoError(t, err)

	after := time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), mustNext(t, s, after))
}

func TestParseSixFieldsFallsBackToYear(t *testing.T) {
	// 2027 is not a valid day-of-week, so the year-suffixed reading applies.
	s, err := Parse("30 14 * * * 2027")
	require.NoError(t, err)

	after := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, 1, 1, 14, 30, 0, 0, time.UTC), mustNext(t, s, after))
}

func TestParseSixFieldsSecondsErrorWins(t *testing.T) {
	// Invalid under both readings; the seconds-prefixed error is reported.
	_, err := Parse("30 14 * * 99 2027")
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "month", pe.Field)
}

func TestParseNamesAndRanges(t *testing.T) {
	s, err := Parse("0 0 12 * mar-jun mon-fri *")
	require.NoError(t, err)

	// 2024-03-02 is a Saturday; the first weekday in range is Monday the 4th.
	after := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC), mustNext(t, s, after))
}

func TestParseListsAndSteps(t *testing.T) {
	s, err := Parse("0 5,35 8-10/2 * * * *")
	require.NoError(t, err)

	after := time.Date(2024, 1, 1, 8, 35, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC), mustNext(t, s, after))
}

func TestParseOpenEndedStep(t *testing.T) {
	// 50/4 runs from 50 to the field maximum.
	s, err := Parse("50/4 * * * * * *")
	require.NoError(t, err)

	after := time.Date(2024, 1, 1, 0, 0, 55, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 58, 0, time.UTC), mustNext(t, s, after))
}

func TestParseQuestionMarkIsWildcard(t *testing.T) {
	a, err := Parse("0 0 0 ? * * *")
	require.NoError(t, err)
	b, err := Parse("0 0 0 * * * *")
	require.NoError(t, err)

	after := time.Date(2024, 5, 5, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, mustNext(t, b, after), mustNext(t, a, after))
}

func TestParseWildcardSubsumesList(t *testing.T) {
	s, err := Parse("0 10,* * * * * *")
	require.NoError(t, err)

	after := time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 6, 0, 0, time.UTC), mustNext(t, s, after))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"too few fields", "* * * *"},
		{"too many fields", "* * * * * * * *"},
		{"seconds out of range", "60 * * * * * *"},
		{"minutes out of range", "0 60 * * * * *"},
		{"hours out of range", "0 0 24 * * * *"},
		{"dom zero", "0 0 0 0 * * *"},
		{"month out of range", "0 0 0 * 13 * *"},
		{"dow out of range", "0 0 0 * * 7 *"},
		{"year below range", "0 0 0 * * * 1969"},
		{"year above range", "0 0 0 * * * 2100"},
		{"inverted range", "0 5-2 * * * * *"},
		{"zero step", "*/0 * * * * * *"},
		{"negative step", "*/-5 * * * * * *"},
		{"malformed step", "*/x * * * * * *"},
		{"unknown token", "0 0 0 * xyz * *"},
		{"empty list item", "0 1,,2 * * * * *"},
		{"occurrence too large", "0 0 0 * * mon#6 *"},
		{"occurrence zero", "0 0 0 * * mon#0 *"},
		{"nearest weekday in dow", "0 0 0 * * 3w *"},
		{"last marker in minutes", "0 L * * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			require.Error(t, err)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
		})
	}
}

func TestParseErrorMessageNamesField(t *testing.T) {
	_, err := Parse("0 0 0 * * 9 *")
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "day-of-week", pe.Field)
	assert.Contains(t, pe.Error(), "day-of-week")
}

func TestMustParsePanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustParse("not a cron expression") })
	assert.NotPanics(t, func() { MustParse("@daily") })
}
