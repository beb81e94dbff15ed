package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func algorithmResultWithScore(score float64) AlgorithmResult {
	return AlgorithmResult{Score: score, CompoundMultiplier: 1}
}

func TestCombineEnsemble_PerfectAgreement(t *testing.T) {
	r := algorithmResultWithScore(50)
	result := CombineEnsemble(r, r, r, r, DefaultEnsembleWeights())

	assert.InDelta(t, 50.0, result.Score, 1e-9)
	assert.Equal(t, 0.0, result.StdDev)
	assert.Equal(t, 100.0, result.Confidence)
	assert.Equal(t, AgreementHigh, result.Agreement)

	// Full confidence boosts by exactly 30%: 50 * (0.7 + 0.3).
	assert.InDelta(t, 50.0, result.BoostedScore(), 1e-9)
}

func TestCombineEnsemble_WeightedScore(t *testing.T) {
	result := CombineEnsemble(
		algorithmResultWithScore(40),
		algorithmResultWithScore(60),
		algorithmResultWithScore(50),
		algorithmResultWithScore(70),
		DefaultEnsembleWeights(),
	)

	// 40*0.15 + 60*0.25 + 50*0.20 + 70*0.40
	assert.InDelta(t, 59.0, result.Score, 1e-9)
	assert.Greater(t, result.StdDev, 0.0)
	assert.Less(t, result.Confidence, 100.0)
}

func TestCombineEnsemble_DivergenceLowersConfidence(t *testing.T) {
	result := CombineEnsemble(
		algorithmResultWithScore(10),
		algorithmResultWithScore(90),
		algorithmResultWithScore(20),
		algorithmResultWithScore(80),
		DefaultEnsembleWeights(),
	)

	assert.Equal(t, AgreementLow, result.Agreement)
	// confidence = max(0, 100 - stdDev*2) never goes negative.
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
}

func TestBoostedScore_CappedAt100(t *testing.T) {
	r := algorithmResultWithScore(95)
	result := CombineEnsemble(r, r, r, r, DefaultEnsembleWeights())

	// 95 * 1.0 is fine, but 95 with full confidence would overshoot via
	// the 30% boost if not capped.
	e := EnsembleResult{Score: 95, Confidence: 100}
	assert.Equal(t, 100.0, e.BoostedScore())
	assert.LessOrEqual(t, result.BoostedScore(), 100.0)
}

func TestAgreementFromStdDev(t *testing.T) {
	assert.Equal(t, AgreementHigh, AgreementFromStdDev(9.9))
	assert.Equal(t, AgreementModerate, AgreementFromStdDev(10))
	assert.Equal(t, AgreementModerate, AgreementFromStdDev(19.9))
	assert.Equal(t, AgreementLow, AgreementFromStdDev(20))
}

func TestAgreementFromVariance(t *testing.T) {
	assert.Equal(t, AgreementHigh, AgreementFromVariance(99.9))
	assert.Equal(t, AgreementModerate, AgreementFromVariance(100))
	assert.Equal(t, AgreementModerate, AgreementFromVariance(399.9))
	assert.Equal(t, AgreementLow, AgreementFromVariance(400))
}
