package risk

// RiskLevel is the qualitative classification of a risk score.
type RiskLevel string

const (
	// LevelLow - the student is not considered at risk.
	LevelLow RiskLevel = "low"
	// LevelModerate - warning signs are present, monitoring recommended.
	LevelModerate RiskLevel = "moderate"
	// LevelHigh - intervention is recommended.
	LevelHigh RiskLevel = "high"
)

// IsValid checks that the risk level is one of the known values.
func (l RiskLevel) IsValid() bool {
	switch l {
	case LevelLow, LevelModerate, LevelHigh:
		return true
	default:
		return false
	}
}

// AtRisk returns true for levels that should appear on at-risk dashboards.
func (l RiskLevel) AtRisk() bool {
	return l == LevelModerate || l == LevelHigh
}

// FactorSet holds the five per-domain risk sub-scores. Each is conceptually
// in [0,100] (higher = more risk), though intermediate formula values may
// transiently exceed the range before the final score is clamped.
type FactorSet struct {
	Academic   float64
	Attendance float64
	Engagement float64
	Financial  float64
	Social     float64
}

// Blend returns a component-wise weighted mix of two factor sets:
// a*aWeight + b*bWeight. Used by the combined algorithm.
func (a FactorSet) Blend(b FactorSet, aWeight, bWeight float64) FactorSet {
	return FactorSet{
		Academic:   a.Academic*aWeight + b.Academic*bWeight,
		Attendance: a.Attendance*aWeight + b.Attendance*bWeight,
		Engagement: a.Engagement*aWeight + b.Engagement*bWeight,
		Financial:  a.Financial*aWeight + b.Financial*bWeight,
		Social:     a.Social*aWeight + b.Social*bWeight,
	}
}

// FactorWeights holds the per-factor weights an algorithm applies when
// aggregating a FactorSet into a single score.
type FactorWeights struct {
	Academic   float64
	Attendance float64
	Engagement float64
	Financial  float64
	Social     float64
}

// Apply computes the weighted sum of the factors.
func (w FactorWeights) Apply(f FactorSet) float64 {
	return f.Academic*w.Academic +
		f.Attendance*w.Attendance +
		f.Engagement*w.Engagement +
		f.Financial*w.Financial +
		f.Social*w.Social
}

// AlgorithmResult is the output of a single scoring algorithm for a single
// metrics snapshot. Results are immutable once computed.
type AlgorithmResult struct {
	// Algorithm is the human-readable algorithm name.
	Algorithm string

	// Score is the aggregate risk score, clamped to [0,100].
	Score float64

	// Level is the score classified against the algorithm's own thresholds.
	Level RiskLevel

	// Factors are the five contributing sub-scores.
	Factors FactorSet

	// CompoundMultiplier is the interaction multiplier applied to the base
	// score. Algorithms without compounding report 1.
	CompoundMultiplier float64
}

// clampScore bounds a computed score to the canonical [0,100] range.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// classifyLevel maps a score to a risk level given the algorithm's
// exclusive upper bounds for the low and moderate bands.
func classifyLevel(score, lowBelow, moderateBelow float64) RiskLevel {
	switch {
	case score < lowBelow:
		return LevelLow
	case score < moderateBelow:
		return LevelModerate
	default:
		return LevelHigh
	}
}
