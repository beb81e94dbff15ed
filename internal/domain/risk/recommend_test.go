package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommendations_NoMatches(t *testing.T) {
	advice := Recommendations(RecommendationInput{
		Factors:            FactorSet{Academic: 10, Attendance: 10, Engagement: 10, Financial: 10, Social: 10},
		CompoundMultiplier: 1,
		Trend:              TrendStable,
	})
	assert.Empty(t, advice)
}

func TestRecommendations_AllRulesFireInOrder(t *testing.T) {
	advice := Recommendations(RecommendationInput{
		Factors:            FactorSet{Academic: 70, Attendance: 60, Engagement: 60, Financial: 60, Social: 70},
		CompoundMultiplier: 1.3,
		Trend:              TrendDeclining,
		StdDev:             25,
	})

	assert.Equal(t, []string{
		AdviceAlgorithmVariance,
		AdviceDecliningTrend,
		AdviceAcademicUrgent,
		AdviceAttendanceCritical,
		AdviceEngagementLow,
		AdviceFinancialAid,
		AdviceSocialIsolation,
		AdviceCompoundRisk,
	}, advice)
}

func TestRecommendations_ImprovingTrend(t *testing.T) {
	advice := Recommendations(RecommendationInput{
		CompoundMultiplier: 1,
		Trend:              TrendImproving,
	})
	assert.Equal(t, []string{AdviceImprovingTrend}, advice)
}

func TestRecommendations_ThresholdsAreExclusive(t *testing.T) {
	// Values exactly at their thresholds do not fire.
	advice := Recommendations(RecommendationInput{
		Factors:            FactorSet{Academic: 60, Attendance: 50, Engagement: 55, Financial: 50, Social: 60},
		CompoundMultiplier: 1.2,
		Trend:              TrendStable,
		StdDev:             20,
	})
	assert.Empty(t, advice)
}
