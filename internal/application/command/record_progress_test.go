package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

func TestRecordProgress_XPAndLevel(t *testing.T) {
	students := newFakeStudentRepo(thrivingStudent("s-1"))
	bus := &fakeBus{}
	h := NewRecordProgressHandler(students, bus)

	res, err := h.Handle(context.Background(), RecordProgressCommand{
		StudentID:   "s-1",
		XPDelta:     1200,
		ActiveToday: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1200, res.NewXP)
	assert.Equal(t, 2, res.NewLevel)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 11, res.CurrentStreak)
	assert.False(t, res.StreakBroken)
	assert.Len(t, bus.byType(shared.EventProgressRecorded), 1)
}

func TestRecordProgress_StreakBadge(t *testing.T) {
	s := thrivingStudent("s-2")
	s.Metrics.CurrentStreak = 6
	students := newFakeStudentRepo(s)
	h := NewRecordProgressHandler(students, nil)

	res, err := h.Handle(context.Background(), RecordProgressCommand{StudentID: "s-2", ActiveToday: true})
	require.NoError(t, err)

	assert.Equal(t, 7, res.CurrentStreak)
	assert.Equal(t, []string{"week-streak"}, res.BadgesAwarded)

	// The badge is granted once.
	stored, err := students.GetByID(context.Background(), "s-2")
	require.NoError(t, err)
	assert.Contains(t, stored.Badges, "week-streak")
}

func TestRecordProgress_InactiveBreaksStreak(t *testing.T) {
	s := thrivingStudent("s-3")
	s.Metrics.CurrentStreak = 9
	s.Metrics.LongestStreak = 12
	students := newFakeStudentRepo(s)
	h := NewRecordProgressHandler(students, nil)

	res, err := h.Handle(context.Background(), RecordProgressCommand{StudentID: "s-3", ActiveToday: false})
	require.NoError(t, err)

	assert.True(t, res.StreakBroken)
	assert.Zero(t, res.CurrentStreak)

	stored, err := students.GetByID(context.Background(), "s-3")
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Metrics.LongestStreak)
}

func TestRecordProgress_InactiveWithNoStreakIsQuiet(t *testing.T) {
	s := thrivingStudent("s-4")
	s.Metrics.CurrentStreak = 0
	students := newFakeStudentRepo(s)
	h := NewRecordProgressHandler(students, nil)

	res, err := h.Handle(context.Background(), RecordProgressCommand{StudentID: "s-4", ActiveToday: false})
	require.NoError(t, err)
	assert.False(t, res.StreakBroken)
}
