// Package risk implements the dropout risk scoring engine for EduPulse.
// It is the computational core of the system: four independently tuned
// scoring algorithms, a weighted ensemble combiner, temporal trend analysis
// and rule-based recommendation generation.
//
// Everything in this package is a pure function of its inputs. There is no
// I/O, no clock access and no hidden state - callers supply a metrics
// snapshot (and optionally prior assessment scores) and receive computed
// results to persist themselves.
package risk

// FeePaymentStatus describes how current a student is on fee payments.
type FeePaymentStatus string

const (
	// FeeCurrent - fees are paid on time.
	FeeCurrent FeePaymentStatus = "current"
	// FeeDelayed - fees are behind schedule but not critically.
	FeeDelayed FeePaymentStatus = "delayed"
	// FeeOverdue - fees are critically overdue.
	FeeOverdue FeePaymentStatus = "overdue"
)

// IsValid checks that the fee payment status is one of the known values.
func (f FeePaymentStatus) IsValid() bool {
	switch f {
	case FeeCurrent, FeeDelayed, FeeOverdue:
		return true
	default:
		return false
	}
}

// StudentMetrics is an immutable snapshot of the academic, behavioral and
// financial signals a single risk calculation runs on.
//
// All percentage fields are expected to already be clamped to [0,100] by the
// caller (the student domain clamps on update). The formulas assume this
// range and do not re-validate.
type StudentMetrics struct {
	// Academic
	CGPA                     float64 // 0-10 scale
	AssignmentCompletionRate float64 // 0-100
	TestScoreAverage         float64 // 0-100

	// Attendance
	AttendanceRate float64 // 0-100
	TotalAbsences  int
	TardinessCount int

	// Engagement
	LoginFrequency          float64 // logins per week
	ClassParticipationScore float64 // 0-100
	ChallengeCompletionRate float64 // 0-100

	// Financial
	FeePaymentStatus FeePaymentStatus
	HasScholarship   bool

	// Gamification streaks
	CurrentStreak int // days
	LongestStreak int // days
}

// cgpaFullScale normalizes CGPA (0-10) to a 0-1 ratio.
const cgpaFullScale = 10.0

// CGPARatio returns CGPA normalized to [0,1] for use in formulas.
func (m StudentMetrics) CGPARatio() float64 {
	return m.CGPA / cgpaFullScale
}

// loginDaysPerWeek is the divisor that normalizes login frequency to a
// "share of days active" ratio.
const loginDaysPerWeek = 7.0

// LoginRatio returns login frequency normalized against a full week.
func (m StudentMetrics) LoginRatio() float64 {
	return m.LoginFrequency / loginDaysPerWeek
}

// StreakRatio returns currentStreak/longestStreak, or 0 when the student has
// no recorded streak yet. Guarding the zero case here keeps every formula
// free of division faults.
func (m StudentMetrics) StreakRatio() float64 {
	if m.LongestStreak == 0 {
		return 0
	}
	return float64(m.CurrentStreak) / float64(m.LongestStreak)
}
