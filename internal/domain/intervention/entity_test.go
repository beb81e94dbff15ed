package intervention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

func newIntervention() *Intervention {
	return &Intervention{
		ID:               "int-1",
		StudentID:        "student-1",
		TeacherID:        "teacher-1",
		Type:             TypeTutoring,
		Status:           StatusPending,
		Priority:         PriorityHigh,
		InitialRiskScore: 80,
	}
}

func TestEffectiveness(t *testing.T) {
	tests := []struct {
		name    string
		initial float64
		final   float64
		want    float64
	}{
		{"halved risk", 80, 40, 50},
		{"no change", 80, 80, 0},
		{"risk went up", 60, 75, 0},
		{"eliminated", 50, 0, 100},
		{"zero initial", 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Effectiveness(tt.initial, tt.final))
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusInProgress))
	assert.True(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusInProgress.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusInProgress.CanTransitionTo(StatusCancelled))

	assert.False(t, StatusInProgress.CanTransitionTo(StatusPending))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusInProgress))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCompleted))
}

func TestInterventionLifecycle(t *testing.T) {
	i := newIntervention()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, i.Start(now))
	assert.Equal(t, StatusInProgress, i.Status)

	later := now.Add(14 * 24 * time.Hour)
	require.NoError(t, i.Complete(40, later))
	assert.Equal(t, StatusCompleted, i.Status)
	require.NotNil(t, i.Effectiveness)
	assert.Equal(t, 50.0, *i.Effectiveness)
	require.NotNil(t, i.FinalRiskScore)
	assert.Equal(t, 40.0, *i.FinalRiskScore)
	require.NotNil(t, i.CompletedAt)
	assert.Equal(t, later, *i.CompletedAt)
	assert.True(t, i.Successful())

	// Completing twice is rejected with a dedicated error.
	err := i.Complete(30, later)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestInterventionCancel(t *testing.T) {
	i := newIntervention()
	now := time.Now()

	require.NoError(t, i.Cancel(now))
	assert.Equal(t, StatusCancelled, i.Status)
	assert.Nil(t, i.Effectiveness)
	assert.False(t, i.Successful())

	assert.ErrorIs(t, i.Start(now), shared.ErrStateTransition)
}

func TestInterventionUnsuccessfulCompletion(t *testing.T) {
	i := newIntervention()
	now := time.Now()

	// Risk got worse: completed but not successful.
	require.NoError(t, i.Complete(95, now))
	require.NotNil(t, i.Effectiveness)
	assert.Equal(t, 0.0, *i.Effectiveness)
	assert.False(t, i.Successful())
}

func TestPriorityForScore(t *testing.T) {
	assert.Equal(t, PriorityUrgent, PriorityForScore(90))
	assert.Equal(t, PriorityUrgent, PriorityForScore(85))
	assert.Equal(t, PriorityHigh, PriorityForScore(70))
	assert.Equal(t, PriorityMedium, PriorityForScore(50))
	assert.Equal(t, PriorityLow, PriorityForScore(10))
}

func TestInterventionValidate(t *testing.T) {
	i := newIntervention()
	require.NoError(t, i.Validate())

	bad := newIntervention()
	bad.StudentID = ""
	assert.ErrorIs(t, bad.Validate(), shared.ErrEmptyValue)

	bad = newIntervention()
	bad.Type = "exorcism"
	assert.ErrorIs(t, bad.Validate(), shared.ErrInvalidInput)

	bad = newIntervention()
	bad.Priority = "whenever"
	assert.ErrorIs(t, bad.Validate(), shared.ErrInvalidInput)
}
