package risk

import "math"

// ══════════════════════════════════════════════════════════════════════════════
// ML-INSPIRED ALGORITHM
// Non-linear penalty curves (sharper response below critical thresholds) and
// dynamic weighting that shifts emphasis onto whichever of the three primary
// factors carries the most risk. Thresholds sit higher than the rule-based
// baseline to reduce false positives in the moderate band.
// ══════════════════════════════════════════════════════════════════════════════

// AlgorithmMLBased is the name reported by the ML-inspired algorithm.
const AlgorithmMLBased = "ML-Based"

// Academic penalty curve.
const (
	mlCGPACriticalRatio   = 0.5  // below half-scale CGPA the penalty regime changes
	mlCGPACriticalBase    = 90.0 // risk floor in the critical regime
	mlCGPACriticalSlope   = 20.0 // extra risk per unit of ratio shortfall
	mlCGPAWeight          = 60.0
	mlAssignmentWeight    = 0.2
	mlTestWeight          = 0.2
)

// Attendance penalty curve.
const (
	mlAttendanceCritical     = 75.0 // below this rate an extra penalty kicks in
	mlAttendancePenaltySlope = 0.5
)

// Engagement curve.
const (
	mlLoginExponent         = 0.8
	mlLoginWeight           = 30.0
	mlParticipationWeight   = 0.4
	mlChallengeSqrtWeight   = 3.0
)

// Financial risk by fee payment status.
const (
	mlFinancialOverdue = 85.0
	mlFinancialDelayed = 55.0
	mlFinancialCurrent = 15.0
)

// Social isolation penalty.
const (
	mlSocialCriticalParticipation = 50.0
	mlSocialIsolationPenalty      = 10.0
)

// Dynamic weights: the primary factor carrying the most risk is boosted,
// the other two keep their base weight. Financial and social are fixed.
const (
	mlAcademicWeightBase     = 0.30
	mlAcademicWeightBoost    = 0.40
	mlAttendanceWeightBase   = 0.25
	mlAttendanceWeightBoost  = 0.35
	mlEngagementWeightBase   = 0.20
	mlEngagementWeightBoost  = 0.25
	mlFinancialWeight        = 0.10
	mlSocialWeight           = 0.10
)

// Risk level thresholds (exclusive upper bounds).
const (
	mlLowBelow      = 35.0
	mlModerateBelow = 65.0
)

// ComputeMLBased scores a student with the ML-inspired algorithm.
func ComputeMLBased(m StudentMetrics) AlgorithmResult {
	factors := mlBasedFactors(m)
	weights := pickWeights(factors)
	score := clampScore(weights.Apply(factors))

	return AlgorithmResult{
		Algorithm:          AlgorithmMLBased,
		Score:              score,
		Level:              classifyLevel(score, mlLowBelow, mlModerateBelow),
		Factors:            factors,
		CompoundMultiplier: 1,
	}
}

// mlBasedFactors computes the five ML-inspired risk factors.
func mlBasedFactors(m StudentMetrics) FactorSet {
	return FactorSet{
		Academic:   mlAcademicRisk(m),
		Attendance: mlAttendanceRisk(m),
		Engagement: mlEngagementRisk(m),
		Financial:  mlFinancialRisk(m.FeePaymentStatus),
		Social:     mlSocialRisk(m.ClassParticipationScore),
	}
}

// mlAcademicRisk applies an exponential-feel penalty below half-scale CGPA
// and a steeper CGPA weighting above it.
func mlAcademicRisk(m StudentMetrics) float64 {
	ratio := m.CGPARatio()
	if ratio < mlCGPACriticalRatio {
		return mlCGPACriticalBase + (mlCGPACriticalRatio-ratio)*mlCGPACriticalSlope
	}
	return 100 - (ratio*mlCGPAWeight +
		m.AssignmentCompletionRate*mlAssignmentWeight +
		m.TestScoreAverage*mlTestWeight)
}

// mlAttendanceRisk adds an extra penalty for attendance below the critical
// rate, modeling the disproportionate dropout signal of chronic absence.
func mlAttendanceRisk(m StudentMetrics) float64 {
	base := 100 - m.AttendanceRate
	if m.AttendanceRate < mlAttendanceCritical {
		return base + (mlAttendanceCritical-m.AttendanceRate)*mlAttendancePenaltySlope
	}
	return base
}

// mlEngagementRisk uses sub-linear curves so the first logins and challenge
// completions count for more than the last ones.
func mlEngagementRisk(m StudentMetrics) float64 {
	return 100 - (math.Pow(m.LoginRatio(), mlLoginExponent)*mlLoginWeight +
		m.ClassParticipationScore*mlParticipationWeight +
		math.Sqrt(m.ChallengeCompletionRate)*mlChallengeSqrtWeight)
}

// mlFinancialRisk maps fee payment status to the ML-tuned financial risk.
func mlFinancialRisk(status FeePaymentStatus) float64 {
	switch status {
	case FeeOverdue:
		return mlFinancialOverdue
	case FeeDelayed:
		return mlFinancialDelayed
	default:
		return mlFinancialCurrent
	}
}

// mlSocialRisk adds a flat isolation penalty below the critical
// participation threshold.
func mlSocialRisk(participation float64) float64 {
	if participation < mlSocialCriticalParticipation {
		return (100 - participation) + mlSocialIsolationPenalty
	}
	return 100 - participation
}

// pickWeights selects the dynamic factor weights: whichever of the three
// primary factors (academic, attendance, engagement) carries the most risk
// is boosted. On an exact tie every tied factor is boosted, matching the
// independent comparisons of the tuned formulas.
func pickWeights(f FactorSet) FactorWeights {
	maxFactor := math.Max(f.Academic, math.Max(f.Attendance, f.Engagement))

	w := FactorWeights{
		Academic:   mlAcademicWeightBase,
		Attendance: mlAttendanceWeightBase,
		Engagement: mlEngagementWeightBase,
		Financial:  mlFinancialWeight,
		Social:     mlSocialWeight,
	}
	if f.Academic == maxFactor {
		w.Academic = mlAcademicWeightBoost
	}
	if f.Attendance == maxFactor {
		w.Attendance = mlAttendanceWeightBoost
	}
	if f.Engagement == maxFactor {
		w.Engagement = mlEngagementWeightBoost
	}
	return w
}
