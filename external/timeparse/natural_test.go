package timeparse

import (
	"testing"
	"time"

	"github.com/foxseedlab/tokpost/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday 2026-10-16 12:00 UTC.
var reference = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestResolve_AbsoluteLayouts(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "12/13/2026 8pm", want: time.Date(2026, 12, 13, 20, 0, 0, 0, time.UTC)},
		{input: "12/13/2026 8 PM", want: time.Date(2026, 12, 13, 20, 0, 0, 0, time.UTC)},
		{input: "10/17/2026 8:30am", want: time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)},
		{input: "1/5/2027 21:15", want: time.Date(2027, 1, 5, 21, 15, 0, 0, time.UTC)},
		{input: "10/18/2026", want: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)},
		{input: "2026-10-18 09:45", want: time.Date(2026, 10, 18, 9, 45, 0, 0, time.UTC)},
		{input: "2026-10-18T09:45:00Z", want: time.Date(2026, 10, 18, 9, 45, 0, 0, time.UTC)},
		{input: "12/13/2024 8pm", want: time.Date(2024, 12, 13, 20, 0, 0, 0, time.UTC)},
	}
	r := NewNaturalResolver()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := r.Resolve(tt.input, reference)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestResolve_AbsoluteUsesReferenceLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	got, ok := NewNaturalResolver().Resolve("12/13/2026 8pm", reference.In(loc))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 12, 13, 20, 0, 0, 0, loc).Unix(), got.Unix())
}

func TestResolve_TomorrowAfternoon(t *testing.T) {
	got, ok := NewNaturalResolver().Resolve("tomorrow 3pm", reference)
	require.True(t, ok)
	assert.Equal(t, 17, got.Day())
	assert.Equal(t, 15, got.Hour())
}

func TestResolve_RelativePhrases(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "next friday 2:30pm", want: time.Date(2026, 10, 23, 14, 30, 0, 0, time.UTC)},
		{input: "Next Friday 2:30PM", want: time.Date(2026, 10, 23, 14, 30, 0, 0, time.UTC)},
		{input: "in 2 hours", want: reference.Add(2 * time.Hour)},
		{input: "tomorrow 3pm", want: time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)},
	}
	r := NewNaturalResolver()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := r.Resolve(tt.input, reference)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestResolve_PastDateIsTooSoon(t *testing.T) {
	got, ok := NewNaturalResolver().Resolve("12/13/2024 8pm", reference)
	require.True(t, ok)

	_, verdict := schedule.NewValidator(20*time.Minute, 240*time.Hour).Validate(schedule.NewCandidate(got, reference), reference)
	assert.Equal(t, schedule.VerdictTooSoon, verdict)
}

func TestResolve_IsDeterministic(t *testing.T) {
	r := NewNaturalResolver()
	first, ok := r.Resolve("tomorrow 3pm", reference)
	require.True(t, ok)
	second, ok := r.Resolve("tomorrow 3pm", reference)
	require.True(t, ok)
	assert.True(t, first.Equal(second))
}

func TestResolve_Unrecognized(t *testing.T) {
	r := NewNaturalResolver()
	for _, input := range []string{"blah", "", "   ", "???"} {
		_, ok := r.Resolve(input, reference)
		assert.False(t, ok, "input %q", input)
	}
}
