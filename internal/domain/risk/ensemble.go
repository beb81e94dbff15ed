package risk

import "math"

// ══════════════════════════════════════════════════════════════════════════════
// ENSEMBLE COMBINER
// Merges the four algorithm scores into one weighted score with a
// variance-derived confidence and agreement rating.
// ══════════════════════════════════════════════════════════════════════════════

// Agreement is the qualitative label for how much the algorithms concur.
type Agreement string

const (
	// AgreementHigh - the algorithms produce nearly identical scores.
	AgreementHigh Agreement = "high"
	// AgreementModerate - the algorithms broadly agree.
	AgreementModerate Agreement = "moderate"
	// AgreementLow - the algorithms diverge significantly.
	AgreementLow Agreement = "low"
)

// EnsembleWeights holds the per-algorithm weights used when combining the
// four scores.
type EnsembleWeights struct {
	RuleBased float64
	MLBased   float64
	Holistic  float64
	Combined  float64
}

// DefaultEnsembleWeights reflects observed predictive accuracy: the
// combined algorithm is the strongest and carries the highest weight, the
// rule-based baseline the lowest.
func DefaultEnsembleWeights() EnsembleWeights {
	return EnsembleWeights{
		RuleBased: 0.15,
		MLBased:   0.25,
		Holistic:  0.20,
		Combined:  0.40,
	}
}

// Confidence derivation from the scores' standard deviation.
const (
	confidencePerStdDev = 2.0
	stdDevHighAgreement = 10.0
	stdDevModerateAgree = 20.0
)

// Confidence-weighted boost: high inter-algorithm agreement is rewarded
// with a larger ensemble value, capped at the scale maximum.
const (
	boostFloor         = 0.7
	boostPerConfidence = 0.003
)

// Agreement thresholds for the raw-variance path used by the three-way
// comparison view.
const (
	varianceHighAgreement = 100.0
	varianceModerateAgree = 400.0
)

// EnsembleResult is the outcome of combining multiple algorithm scores.
// It is recomputed on every calculation and never mutated.
type EnsembleResult struct {
	// Score is the weighted ensemble score.
	Score float64

	// Confidence (0-100) reflects inter-algorithm agreement.
	Confidence float64

	// StdDev is the standard deviation of the raw scores around Score.
	StdDev float64

	// Agreement is the qualitative label derived from StdDev.
	Agreement Agreement
}

// CombineEnsemble merges the four algorithm results into a weighted
// ensemble. Deviation is measured against the weighted ensemble score, so a
// spread of raw scores lowers confidence even when their plain mean matches.
func CombineEnsemble(ruleBased, mlBased, holistic, combined AlgorithmResult, w EnsembleWeights) EnsembleResult {
	score := ruleBased.Score*w.RuleBased +
		mlBased.Score*w.MLBased +
		holistic.Score*w.Holistic +
		combined.Score*w.Combined

	scores := [4]float64{ruleBased.Score, mlBased.Score, holistic.Score, combined.Score}
	variance := 0.0
	for _, s := range scores {
		variance += (s - score) * (s - score)
	}
	variance /= float64(len(scores))
	stdDev := math.Sqrt(variance)

	return EnsembleResult{
		Score:      score,
		Confidence: math.Max(0, 100-stdDev*confidencePerStdDev),
		StdDev:     stdDev,
		Agreement:  AgreementFromStdDev(stdDev),
	}
}

// BoostedScore returns the confidence-weighted ensemble score: strong
// agreement boosts the value by up to 30%, capped at 100.
func (e EnsembleResult) BoostedScore() float64 {
	return math.Min(100, e.Score*(boostFloor+e.Confidence*boostPerConfidence))
}

// AgreementFromStdDev labels agreement by the standard deviation of the
// algorithm scores. Used by the four-algorithm ensemble path.
func AgreementFromStdDev(stdDev float64) Agreement {
	switch {
	case stdDev < stdDevHighAgreement:
		return AgreementHigh
	case stdDev < stdDevModerateAgree:
		return AgreementModerate
	default:
		return AgreementLow
	}
}

// AgreementFromVariance labels agreement by raw variance. Used by the
// three-algorithm comparison view; the thresholds are the squares of the
// stdDev ones, so both paths rate the same spreads the same way.
func AgreementFromVariance(variance float64) Agreement {
	switch {
	case variance < varianceHighAgreement:
		return AgreementHigh
	case variance < varianceModerateAgree:
		return AgreementModerate
	default:
		return AgreementLow
	}
}
