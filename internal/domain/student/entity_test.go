package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

func newStudent() *Student {
	return &Student{
		ID:       "11111111-1111-1111-1111-111111111111",
		Code:     "STU-2024-0042",
		FullName: "Aruzhan Bekova",
		Grade:    "10",
		Section:  "B",
		Metrics:  DefaultMetrics(),
	}
}

func TestXPLevel(t *testing.T) {
	tests := []struct {
		xp    XP
		level int
	}{
		{0, 1},
		{999, 1},
		{1000, 2},
		{2500, 3},
		{-50, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, tt.xp.Level(), "xp=%d", tt.xp)
	}
}

func TestStudentAddXP(t *testing.T) {
	s := newStudent()

	assert.False(t, s.AddXP(500))
	assert.Equal(t, 1, s.Level())

	assert.True(t, s.AddXP(500))
	assert.Equal(t, 2, s.Level())

	// XP never goes negative.
	s.AddXP(-5000)
	assert.Equal(t, XP(0), s.XP)
}

func TestStudentStreaks(t *testing.T) {
	s := newStudent()

	s.RecordStreakDay()
	s.RecordStreakDay()
	s.RecordStreakDay()
	assert.Equal(t, 3, s.Metrics.CurrentStreak)
	assert.Equal(t, 3, s.Metrics.LongestStreak)

	s.BreakStreak()
	assert.Equal(t, 0, s.Metrics.CurrentStreak)
	assert.Equal(t, 3, s.Metrics.LongestStreak)

	s.RecordStreakDay()
	assert.Equal(t, 1, s.Metrics.CurrentStreak)
	assert.Equal(t, 3, s.Metrics.LongestStreak)
}

func TestStudentAddBadge(t *testing.T) {
	s := newStudent()

	assert.True(t, s.AddBadge("perfect-attendance"))
	assert.False(t, s.AddBadge("perfect-attendance"))
	assert.Equal(t, []string{"perfect-attendance"}, s.Badges)
}

func TestStudentValidate(t *testing.T) {
	s := newStudent()
	require.NoError(t, s.Validate())

	bad := newStudent()
	bad.Code = "x"
	assert.ErrorIs(t, bad.Validate(), shared.ErrInvalidID)

	bad = newStudent()
	bad.FullName = "   "
	assert.ErrorIs(t, bad.Validate(), shared.ErrEmptyValue)

	bad = newStudent()
	bad.Metrics.FeePaymentStatus = "bankrupt"
	assert.ErrorIs(t, bad.Validate(), shared.ErrInvalidInput)
}

func TestApplyMetricsUpdate_ClampsIntoRange(t *testing.T) {
	s := newStudent()

	cgpa := 12.5
	attendance := -10.0
	absences := -3
	u := MetricsUpdate{
		CGPA:           &cgpa,
		AttendanceRate: &attendance,
		TotalAbsences:  &absences,
	}

	changed := s.ApplyMetricsUpdate(u)
	assert.ElementsMatch(t, []string{"cgpa", "attendance_rate", "total_absences"}, changed)
	assert.Equal(t, 10.0, s.Metrics.CGPA)
	assert.Equal(t, 0.0, s.Metrics.AttendanceRate)
	assert.Equal(t, 0, s.Metrics.TotalAbsences)
}

func TestApplyMetricsUpdate_NilFieldsUntouched(t *testing.T) {
	s := newStudent()
	before := s.Metrics

	changed := s.ApplyMetricsUpdate(MetricsUpdate{})
	assert.Empty(t, changed)
	assert.Equal(t, before, s.Metrics)
}

func TestApplyMetricsUpdate_FeeStatusAndScholarship(t *testing.T) {
	s := newStudent()

	overdue := risk.FeeOverdue
	scholarship := true
	changed := s.ApplyMetricsUpdate(MetricsUpdate{
		FeePaymentStatus: &overdue,
		HasScholarship:   &scholarship,
	})
	assert.ElementsMatch(t, []string{"fee_payment_status", "has_scholarship"}, changed)
	assert.Equal(t, risk.FeeOverdue, s.Metrics.FeePaymentStatus)
	assert.True(t, s.Metrics.HasScholarship)

	// Unknown status values are ignored rather than corrupting the snapshot.
	bogus := risk.FeePaymentStatus("bankrupt")
	changed = s.ApplyMetricsUpdate(MetricsUpdate{FeePaymentStatus: &bogus})
	assert.Empty(t, changed)
	assert.Equal(t, risk.FeeOverdue, s.Metrics.FeePaymentStatus)
}

func TestTeacherInterventionStats(t *testing.T) {
	tr := &Teacher{ID: "t-1", Code: "TCH-001", FullName: "Dana Seitkali"}

	assert.Equal(t, 0.0, tr.SuccessRate())

	tr.RecordIntervention(true)
	tr.RecordIntervention(true)
	tr.RecordIntervention(false)
	tr.RecordIntervention(true)

	assert.Equal(t, 4, tr.InterventionsCompleted)
	assert.Equal(t, 3, tr.SuccessfulInterventions)
	assert.Equal(t, 75.0, tr.SuccessRate())
}
