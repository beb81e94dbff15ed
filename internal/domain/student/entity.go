// Package student contains the roster domain: student and teacher profiles,
// the metric snapshots the risk engine consumes, and the gamification
// bookkeeping (XP, levels, streaks, badges) that feeds engagement metrics.
package student

import (
	"strings"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Code is the external, human-facing student or teacher identifier
// (e.g. "STU-2024-0042").
type Code string

// IsValid checks basic shape: non-empty, no whitespace, reasonable length.
func (c Code) IsValid() bool {
	s := string(c)
	return len(s) >= 3 && len(s) <= 40 && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string representation.
func (c Code) String() string {
	return string(c)
}

// XP represents accumulated experience points.
type XP int

// xpPerLevel converts XP into levels.
const xpPerLevel = 1000

// Level computes the level for the given XP: every 1000 XP is one level,
// starting at level 1.
func (x XP) Level() int {
	if x < 0 {
		return 1
	}
	return int(x)/xpPerLevel + 1
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Student is a tracked student profile. The embedded Metrics snapshot is
// the authoritative input for risk calculations; it is kept clamped to
// valid domains at all times (see ApplyMetricsUpdate).
type Student struct {
	// ID is the internal unique identifier (UUID in string form).
	ID string

	// Code is the external student identifier.
	Code Code

	// FullName is the student's display name.
	FullName string

	// Grade and Section describe class placement. Neither feeds any
	// scoring formula.
	Grade   string
	Section string

	// AssignedTeacherID links the student to a supervising teacher
	// (empty when unassigned).
	AssignedTeacherID string

	// Metrics is the current academic/behavioral/financial snapshot.
	Metrics risk.StudentMetrics

	// Gamification
	XP     XP
	Badges []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Level derives the student's level from accumulated XP.
func (s *Student) Level() int {
	return s.XP.Level()
}

// Validate checks entity invariants before persistence.
func (s *Student) Validate() error {
	if !s.Code.IsValid() {
		return shared.ErrInvalidStudentCode
	}
	if strings.TrimSpace(s.FullName) == "" {
		return shared.WrapError("student", "Validate", shared.ErrEmptyValue, "full name is required", nil)
	}
	if !s.Metrics.FeePaymentStatus.IsValid() {
		return shared.WrapError("student", "Validate", shared.ErrInvalidInput, "unknown fee payment status", nil)
	}
	return nil
}

// AddXP adds experience points and reports whether the student leveled up.
func (s *Student) AddXP(delta XP) (leveledUp bool) {
	oldLevel := s.XP.Level()
	s.XP += delta
	if s.XP < 0 {
		s.XP = 0
	}
	return s.XP.Level() > oldLevel
}

// RecordStreakDay extends the current streak by one day and keeps the
// longest-streak high-water mark.
func (s *Student) RecordStreakDay() {
	s.Metrics.CurrentStreak++
	if s.Metrics.CurrentStreak > s.Metrics.LongestStreak {
		s.Metrics.LongestStreak = s.Metrics.CurrentStreak
	}
}

// BreakStreak resets the current streak to zero. The longest streak is
// preserved.
func (s *Student) BreakStreak() {
	s.Metrics.CurrentStreak = 0
}

// AddBadge grants a badge. Granting the same badge twice is a no-op.
func (s *Student) AddBadge(badge string) bool {
	for _, b := range s.Badges {
		if b == badge {
			return false
		}
	}
	s.Badges = append(s.Badges, badge)
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// METRIC UPDATES
// ══════════════════════════════════════════════════════════════════════════════

// MetricsUpdate carries a partial metrics change; nil fields are left
// untouched. All values are clamped into their valid domains on apply -
// out-of-range input dampens to the boundary instead of failing, keeping
// the scoring pipeline total.
type MetricsUpdate struct {
	CGPA                     *float64
	AssignmentCompletionRate *float64
	TestScoreAverage         *float64
	AttendanceRate           *float64
	TotalAbsences            *int
	TardinessCount           *int
	LoginFrequency           *float64
	ClassParticipationScore  *float64
	ChallengeCompletionRate  *float64
	FeePaymentStatus         *risk.FeePaymentStatus
	HasScholarship           *bool
}

// ApplyMetricsUpdate applies the partial update to the student's snapshot
// and returns the names of the fields that changed.
func (s *Student) ApplyMetricsUpdate(u MetricsUpdate) []string {
	var changed []string

	setPercent := func(name string, dst *float64, src *float64) {
		if src == nil {
			return
		}
		v := clampPercent(*src)
		if *dst != v {
			*dst = v
			changed = append(changed, name)
		}
	}

	if u.CGPA != nil {
		v := clampRange(*u.CGPA, 0, 10)
		if s.Metrics.CGPA != v {
			s.Metrics.CGPA = v
			changed = append(changed, "cgpa")
		}
	}
	setPercent("assignment_completion_rate", &s.Metrics.AssignmentCompletionRate, u.AssignmentCompletionRate)
	setPercent("test_score_average", &s.Metrics.TestScoreAverage, u.TestScoreAverage)
	setPercent("attendance_rate", &s.Metrics.AttendanceRate, u.AttendanceRate)
	setPercent("class_participation_score", &s.Metrics.ClassParticipationScore, u.ClassParticipationScore)
	setPercent("challenge_completion_rate", &s.Metrics.ChallengeCompletionRate, u.ChallengeCompletionRate)

	if u.TotalAbsences != nil {
		v := clampCount(*u.TotalAbsences)
		if s.Metrics.TotalAbsences != v {
			s.Metrics.TotalAbsences = v
			changed = append(changed, "total_absences")
		}
	}
	if u.TardinessCount != nil {
		v := clampCount(*u.TardinessCount)
		if s.Metrics.TardinessCount != v {
			s.Metrics.TardinessCount = v
			changed = append(changed, "tardiness_count")
		}
	}
	if u.LoginFrequency != nil {
		v := *u.LoginFrequency
		if v < 0 {
			v = 0
		}
		if s.Metrics.LoginFrequency != v {
			s.Metrics.LoginFrequency = v
			changed = append(changed, "login_frequency")
		}
	}
	if u.FeePaymentStatus != nil && u.FeePaymentStatus.IsValid() {
		if s.Metrics.FeePaymentStatus != *u.FeePaymentStatus {
			s.Metrics.FeePaymentStatus = *u.FeePaymentStatus
			changed = append(changed, "fee_payment_status")
		}
	}
	if u.HasScholarship != nil {
		if s.Metrics.HasScholarship != *u.HasScholarship {
			s.Metrics.HasScholarship = *u.HasScholarship
			changed = append(changed, "has_scholarship")
		}
	}

	return changed
}

// DefaultMetrics is the snapshot a freshly registered student starts with,
// mirroring the onboarding defaults of the dashboard.
func DefaultMetrics() risk.StudentMetrics {
	return risk.StudentMetrics{
		CGPA:                     6.0,
		AssignmentCompletionRate: 80,
		TestScoreAverage:         75,
		AttendanceRate:           90,
		LoginFrequency:           5,
		ClassParticipationScore:  70,
		FeePaymentStatus:         risk.FeeCurrent,
	}
}

func clampPercent(v float64) float64 {
	return clampRange(v, 0, 100)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampCount(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Teacher is a supervising teacher profile with intervention statistics.
type Teacher struct {
	ID         string
	Code       Code
	FullName   string
	Department string
	Subjects   []string

	// Gamification for teachers
	XP XP

	// Intervention effectiveness tracking
	InterventionsCompleted  int
	SuccessfulInterventions int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Level derives the teacher's level from accumulated XP.
func (t *Teacher) Level() int {
	return t.XP.Level()
}

// RecordIntervention updates completion statistics after an intervention
// closes. success means the intervention measurably reduced risk.
func (t *Teacher) RecordIntervention(success bool) {
	t.InterventionsCompleted++
	if success {
		t.SuccessfulInterventions++
	}
}

// SuccessRate returns the share of completed interventions that were
// successful, 0 when none are completed yet.
func (t *Teacher) SuccessRate() float64 {
	if t.InterventionsCompleted == 0 {
		return 0
	}
	return float64(t.SuccessfulInterventions) / float64(t.InterventionsCompleted) * 100
}
