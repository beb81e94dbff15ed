package risk

// ══════════════════════════════════════════════════════════════════════════════
// HOLISTIC ALGORITHM
// Equal weighting across all five factors plus a compound multiplier that
// models interacting risk factors: two problems together are worse than the
// sum of the two alone.
// ══════════════════════════════════════════════════════════════════════════════

// AlgorithmHolistic is the name reported by the holistic algorithm.
const AlgorithmHolistic = "Holistic"

// Academic factor weights (equal thirds of the 0-100 scale).
const (
	holisticCGPAWeight       = 33.33
	holisticAssignmentWeight = 0.33
	holisticTestWeight       = 0.33
)

// Attendance factor weights: the rate itself plus absence and tardiness
// counts folded in as derived percentages.
const (
	holisticAttendanceRateWeight = 0.7
	holisticAbsencePerUnit       = 2.0
	holisticAbsenceWeight        = 0.2
	holisticTardinessPerUnit     = 5.0
	holisticTardinessWeight      = 0.1
)

// Engagement factor weights.
const (
	holisticLoginWeight         = 25.0
	holisticParticipationWeight = 0.5
	holisticChallengeWeight     = 0.25
)

// Financial risk by fee payment status; scholarship holders who are current
// on fees carry the least risk.
const (
	holisticFinancialOverdue     = 75.0
	holisticFinancialDelayed     = 45.0
	holisticFinancialScholarship = 10.0
	holisticFinancialCurrent     = 20.0
)

// Social factor weights: participation plus streak consistency.
const (
	holisticSocialParticipationWeight = 0.6
	holisticStreakWeight              = 40.0
)

// Compound interaction terms. Each fires when the named pair of factors
// jointly exceeds its threshold.
const (
	compoundPairThreshold          = 60.0
	compoundAcademicSupportThresh  = 50.0
	compoundAcademicAttendanceBump = 0.15
	compoundAcademicEngagementBump = 0.15
	compoundAttendanceEngageBump   = 0.10
	compoundFinancialAcademicBump  = 0.10
)

// Equal base weight for each of the five factors.
const holisticEqualWeight = 0.20

// Risk level thresholds (exclusive upper bounds).
const (
	holisticLowBelow      = 33.0
	holisticModerateBelow = 66.0
)

// ComputeHolistic scores a student with the holistic algorithm.
func ComputeHolistic(m StudentMetrics) AlgorithmResult {
	factors := holisticFactors(m)
	compound := holisticCompoundMultiplier(factors)

	base := holisticEqualWeight * (factors.Academic + factors.Attendance +
		factors.Engagement + factors.Financial + factors.Social)
	score := clampScore(base * compound)

	return AlgorithmResult{
		Algorithm:          AlgorithmHolistic,
		Score:              score,
		Level:              classifyLevel(score, holisticLowBelow, holisticModerateBelow),
		Factors:            factors,
		CompoundMultiplier: compound,
	}
}

// holisticFactors computes the five holistic risk factors.
func holisticFactors(m StudentMetrics) FactorSet {
	return FactorSet{
		Academic: 100 - (m.CGPARatio()*holisticCGPAWeight +
			m.AssignmentCompletionRate*holisticAssignmentWeight +
			m.TestScoreAverage*holisticTestWeight),
		Attendance: 100 - (m.AttendanceRate*holisticAttendanceRateWeight +
			(100-float64(m.TotalAbsences)*holisticAbsencePerUnit)*holisticAbsenceWeight +
			(100-float64(m.TardinessCount)*holisticTardinessPerUnit)*holisticTardinessWeight),
		Engagement: 100 - (m.LoginRatio()*holisticLoginWeight +
			m.ClassParticipationScore*holisticParticipationWeight +
			m.ChallengeCompletionRate*holisticChallengeWeight),
		Financial: holisticFinancialRisk(m),
		Social: 100 - (m.ClassParticipationScore*holisticSocialParticipationWeight +
			m.StreakRatio()*holisticStreakWeight),
	}
}

// holisticFinancialRisk maps the financial situation to a risk value,
// distinguishing scholarship holders among students current on fees.
func holisticFinancialRisk(m StudentMetrics) float64 {
	switch {
	case m.FeePaymentStatus == FeeOverdue:
		return holisticFinancialOverdue
	case m.FeePaymentStatus == FeeDelayed:
		return holisticFinancialDelayed
	case m.HasScholarship:
		return holisticFinancialScholarship
	default:
		return holisticFinancialCurrent
	}
}

// holisticCompoundMultiplier computes the interaction multiplier from
// jointly elevated factor pairs.
func holisticCompoundMultiplier(f FactorSet) float64 {
	compound := 1.0
	if f.Academic > compoundPairThreshold && f.Attendance > compoundPairThreshold {
		compound += compoundAcademicAttendanceBump
	}
	if f.Academic > compoundPairThreshold && f.Engagement > compoundPairThreshold {
		compound += compoundAcademicEngagementBump
	}
	if f.Attendance > compoundPairThreshold && f.Engagement > compoundPairThreshold {
		compound += compoundAttendanceEngageBump
	}
	if f.Financial > compoundPairThreshold && f.Academic > compoundAcademicSupportThresh {
		compound += compoundFinancialAcademicBump
	}
	return compound
}
