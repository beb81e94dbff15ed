package risk

// ══════════════════════════════════════════════════════════════════════════════
// RULE-BASED ALGORITHM
// The original baseline: linear weighted sums with fixed weights. Kept as the
// reference point the other algorithms are compared against.
// ══════════════════════════════════════════════════════════════════════════════

// AlgorithmRuleBased is the name reported by the rule-based algorithm.
const AlgorithmRuleBased = "Rule-Based"

// Academic factor weights.
const (
	ruleCGPAWeight       = 25.0
	ruleAssignmentWeight = 0.35
	ruleTestWeight       = 0.40
)

// Engagement factor weights.
const (
	ruleLoginWeight         = 30.0
	ruleParticipationWeight = 0.5
	ruleChallengeWeight     = 0.2
)

// Financial risk by fee payment status.
const (
	ruleFinancialOverdue = 80.0
	ruleFinancialDelayed = 50.0
	ruleFinancialCurrent = 20.0
)

// Aggregate factor weights.
var ruleWeights = FactorWeights{
	Academic:   0.35,
	Attendance: 0.25,
	Engagement: 0.20,
	Financial:  0.10,
	Social:     0.10,
}

// Risk level thresholds (exclusive upper bounds).
const (
	ruleLowBelow      = 30.0
	ruleModerateBelow = 60.0
)

// ComputeRuleBased scores a student with the baseline rule-based algorithm.
func ComputeRuleBased(m StudentMetrics) AlgorithmResult {
	factors := ruleBasedFactors(m)
	score := clampScore(ruleWeights.Apply(factors))

	return AlgorithmResult{
		Algorithm:          AlgorithmRuleBased,
		Score:              score,
		Level:              classifyLevel(score, ruleLowBelow, ruleModerateBelow),
		Factors:            factors,
		CompoundMultiplier: 1,
	}
}

// ruleBasedFactors computes the five rule-based risk factors.
func ruleBasedFactors(m StudentMetrics) FactorSet {
	return FactorSet{
		Academic: 100 - (m.CGPARatio()*ruleCGPAWeight +
			m.AssignmentCompletionRate*ruleAssignmentWeight +
			m.TestScoreAverage*ruleTestWeight),
		Attendance: 100 - m.AttendanceRate,
		Engagement: 100 - (m.LoginRatio()*ruleLoginWeight +
			m.ClassParticipationScore*ruleParticipationWeight +
			m.ChallengeCompletionRate*ruleChallengeWeight),
		Financial: ruleFinancialRisk(m.FeePaymentStatus),
		Social:    100 - m.ClassParticipationScore,
	}
}

// ruleFinancialRisk maps fee payment status to the baseline financial risk.
func ruleFinancialRisk(status FeePaymentStatus) float64 {
	switch status {
	case FeeOverdue:
		return ruleFinancialOverdue
	case FeeDelayed:
		return ruleFinancialDelayed
	default:
		return ruleFinancialCurrent
	}
}
