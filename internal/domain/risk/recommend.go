package risk

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION GENERATOR
// A fixed-order rule table mapping factor scores, compounding and trend to
// advisory strings for teachers. Every matching rule fires; the order only
// affects readability of the resulting list.
// ══════════════════════════════════════════════════════════════════════════════

// Rule thresholds.
const (
	recStdDevDivergence   = 20.0
	recAcademicUrgent     = 60.0
	recAttendanceCritical = 50.0
	recEngagementLow      = 55.0
	recFinancialStrain    = 50.0
	recSocialIsolation    = 60.0
	recCompoundWarning    = 1.2
)

// Advisory strings. Kept as package constants so dashboards and tests refer
// to one authoritative wording.
const (
	AdviceAlgorithmVariance  = "Algorithm variance high - multiple intervention approaches recommended"
	AdviceDecliningTrend     = "WARNING: Risk trend is declining - immediate intervention needed"
	AdviceImprovingTrend     = "Positive trend detected - continue current support"
	AdviceAcademicUrgent     = "Urgent: Intensive academic support required"
	AdviceAttendanceCritical = "Critical: Address chronic absenteeism immediately"
	AdviceEngagementLow      = "Implement personalized engagement strategies"
	AdviceFinancialAid       = "Discuss financial aid options"
	AdviceSocialIsolation    = "Encourage peer interaction and group activities"
	AdviceCompoundRisk       = "Multiple risk factors are compounding - coordinate a cross-area intervention plan"
)

// RecommendationInput carries everything the rule table consults.
type RecommendationInput struct {
	// Factors are the primary algorithm's (blended) risk factors.
	Factors FactorSet

	// CompoundMultiplier from the primary algorithm.
	CompoundMultiplier float64

	// Trend is the temporal classification.
	Trend Trend

	// StdDev across the ensemble's algorithm scores.
	StdDev float64
}

// Recommendations runs the rule table and returns the advisory strings in
// fixed check order. The rules address distinct factors, so no
// deduplication is needed.
func Recommendations(in RecommendationInput) []string {
	advice := make([]string, 0, 6)

	if in.StdDev > recStdDevDivergence {
		advice = append(advice, AdviceAlgorithmVariance)
	}
	if in.Trend == TrendDeclining {
		advice = append(advice, AdviceDecliningTrend)
	}
	if in.Trend == TrendImproving {
		advice = append(advice, AdviceImprovingTrend)
	}
	if in.Factors.Academic > recAcademicUrgent {
		advice = append(advice, AdviceAcademicUrgent)
	}
	if in.Factors.Attendance > recAttendanceCritical {
		advice = append(advice, AdviceAttendanceCritical)
	}
	if in.Factors.Engagement > recEngagementLow {
		advice = append(advice, AdviceEngagementLow)
	}
	if in.Factors.Financial > recFinancialStrain {
		advice = append(advice, AdviceFinancialAid)
	}
	if in.Factors.Social > recSocialIsolation {
		advice = append(advice, AdviceSocialIsolation)
	}
	if in.CompoundMultiplier > recCompoundWarning {
		advice = append(advice, AdviceCompoundRisk)
	}

	return advice
}
