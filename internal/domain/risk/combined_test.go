package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCombined_BlendRatioRegression(t *testing.T) {
	// Pin the 60/40 blend: every blended factor must equal
	// mlFactor*0.6 + holisticFactor*0.4 for the same metrics.
	m := strugglingStudent()

	ml := mlBasedFactors(m)
	holistic := holisticFactors(m)
	result := ComputeCombined(m)

	assert.InDelta(t, ml.Academic*0.6+holistic.Academic*0.4, result.Factors.Academic, 1e-9)
	assert.InDelta(t, ml.Attendance*0.6+holistic.Attendance*0.4, result.Factors.Attendance, 1e-9)
	assert.InDelta(t, ml.Engagement*0.6+holistic.Engagement*0.4, result.Factors.Engagement, 1e-9)
	assert.InDelta(t, ml.Financial*0.6+holistic.Financial*0.4, result.Factors.Financial, 1e-9)
	assert.InDelta(t, ml.Social*0.6+holistic.Social*0.4, result.Factors.Social, 1e-9)

	// Overdue, no scholarship: 85*0.6 + 75*0.4.
	assert.InDelta(t, 81.0, result.Factors.Financial, 1e-9)
}

func TestComputeCombined_CompoundUsesFeeStatusNotFactorValue(t *testing.T) {
	// Elevated academic risk with delayed fees: the numeric financial
	// factor stays under the pair threshold, but any non-current fee
	// status still triggers the financial interaction term.
	m := StudentMetrics{
		CGPA:                     3.0,
		AssignmentCompletionRate: 50,
		TestScoreAverage:         50,
		AttendanceRate:           95,
		LoginFrequency:           7,
		ClassParticipationScore:  90,
		ChallengeCompletionRate:  90,
		FeePaymentStatus:         FeeDelayed,
	}

	blended := mlBasedFactors(m).Blend(holisticFactors(m), combinedMLBlend, combinedHolisticBlend)
	require.Greater(t, blended.Academic, compoundAcademicSupportThresh)
	require.LessOrEqual(t, blended.Attendance, compoundPairThreshold)
	require.LessOrEqual(t, blended.Engagement, compoundPairThreshold)

	withDelayed := ComputeCombined(m)
	assert.InDelta(t, 1.10, withDelayed.CompoundMultiplier, 1e-9)

	m.FeePaymentStatus = FeeCurrent
	withCurrent := ComputeCombined(m)
	assert.InDelta(t, 1.0, withCurrent.CompoundMultiplier, 1e-9)
}

func TestComputeCombined_ClampsAt100(t *testing.T) {
	result := ComputeCombined(worstCaseStudent())

	assert.InDelta(t, 1.5, result.CompoundMultiplier, 1e-9)
	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, LevelHigh, result.Level)
}

func TestComputeCombined_ModelStudentLow(t *testing.T) {
	result := ComputeCombined(modelStudent())

	assert.Equal(t, LevelLow, result.Level)
	assert.Equal(t, 1.0, result.CompoundMultiplier)
	assert.Less(t, result.Score, 10.0)
}

func TestComputeCombined_Idempotent(t *testing.T) {
	m := strugglingStudent()
	require.Equal(t, ComputeCombined(m), ComputeCombined(m))
}
