package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uptr(v uint) *uint { return &v }

func TestValidateTask(t *testing.T) {
	when := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		task  Task
		field string
	}{
		{"regular without schedule", Task{IsRegular: true, Timing: when, Status: StatusPending}, "regular_time_id"},
		{"one-off with schedule", Task{RegularTimeID: uptr(1), Timing: when, Status: StatusPending}, "regular_time_id"},
		{"no timing", Task{Status: StatusPending}, "timing"},
		{"bad status", Task{Timing: when, Status: "Paused"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var re *RuleError
			require.True(t, errors.As(ValidateTask(tt.task), &re))
			assert.Equal(t, tt.field, re.Field)
		})
	}

	assert.NoError(t, ValidateTask(Task{IsRegular: true, RegularTimeID: uptr(3), Timing: when, Status: StatusPending}))
	assert.NoError(t, ValidateTask(Task{Timing: when, Status: StatusRunning}))
}

func TestNextRun_OneOff(t *testing.T) {
	when := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)
	task := Task{Timing: when, Status: StatusPending}

	got, ok, err := NextRun(task, nil, when.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, when, got)

	_, ok, err = NextRun(task, nil, when)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextRun_RegularRespectsAnchor(t *testing.T) {
	rule := &Rule{Period: Daily, At: 8 * time.Hour}
	anchor := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	task := Task{IsRegular: true, RegularTimeID: uptr(1), Timing: anchor, Status: StatusPending}

	// якорь в будущем: первое срабатывание — в сам момент якоря
	got, ok, err := NextRun(task, rule, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, anchor, got)

	// якорь в прошлом: обычное следующее срабатывание
	got, ok, err = NextRun(task, rule, time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 13, 8, 0, 0, 0, time.UTC), got)
}

func TestNextRun_TerminalHasNoRun(t *testing.T) {
	task := Task{Timing: time.Now().Add(time.Hour), Status: StatusSucceeded}
	_, ok, err := NextRun(task, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusRunning))
	assert.True(t, CanTransition(StatusPending, StatusRegisteredOnDevice))
	assert.True(t, CanTransition(StatusRunning, StatusRegisteredOnDevice))
	assert.True(t, CanTransition(StatusRunning, StatusSucceeded))
	assert.True(t, CanTransition(StatusRegisteredOnDevice, StatusFailed))

	assert.False(t, CanTransition(StatusSucceeded, StatusPending))
	assert.False(t, CanTransition(StatusFailed, StatusRunning))
	assert.False(t, CanTransition(StatusFailed, StatusFailed))
	assert.False(t, CanTransition(StatusRunning, StatusPending))
}
