package risk

// ══════════════════════════════════════════════════════════════════════════════
// ML + HOLISTIC COMBINED ALGORITHM
// The primary production algorithm: blends the ML-inspired and holistic
// factor sets, applies the holistic-style compound multiplier on the blended
// factors and the ML-style dynamic weighting. Persisted assessments use this
// algorithm's output as the base score.
// ══════════════════════════════════════════════════════════════════════════════

// AlgorithmCombined is the name reported by the combined algorithm.
const AlgorithmCombined = "ML + Holistic"

// Blend ratio between the ML-inspired and holistic factor sets. An earlier
// revision of this algorithm shipped with 55/45; 60/40 is the tuned value.
const (
	combinedMLBlend       = 0.60
	combinedHolisticBlend = 0.40
)

// Risk level thresholds (exclusive upper bounds), shared with the
// ML-inspired algorithm.
const (
	combinedLowBelow      = mlLowBelow
	combinedModerateBelow = mlModerateBelow
)

// ComputeCombined scores a student with the combined ML + holistic
// algorithm.
func ComputeCombined(m StudentMetrics) AlgorithmResult {
	blended := mlBasedFactors(m).Blend(holisticFactors(m), combinedMLBlend, combinedHolisticBlend)
	compound := combinedCompoundMultiplier(m, blended)
	weights := pickWeights(blended)
	score := clampScore(weights.Apply(blended) * compound)

	return AlgorithmResult{
		Algorithm:          AlgorithmCombined,
		Score:              score,
		Level:              classifyLevel(score, combinedLowBelow, combinedModerateBelow),
		Factors:            blended,
		CompoundMultiplier: compound,
	}
}

// combinedCompoundMultiplier mirrors the holistic interaction terms on the
// blended factors, except the financial term: any fee status other than
// "current" combined with elevated academic risk triggers the bump,
// regardless of the numeric financial factor.
func combinedCompoundMultiplier(m StudentMetrics, f FactorSet) float64 {
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
	if m.FeePaymentStatus != FeeCurrent && f.Academic > compoundAcademicSupportThresh {
		compound += compoundFinancialAcademicBump
	}
	return compound
}
