package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// strugglingStudent carries heavy risk across every domain.
func strugglingStudent() StudentMetrics {
	return StudentMetrics{
		CGPA:                     3.0,
		AssignmentCompletionRate: 40,
		TestScoreAverage:         35,
		AttendanceRate:           55,
		TotalAbsences:            15,
		TardinessCount:           8,
		LoginFrequency:           1,
		ClassParticipationScore:  20,
		ChallengeCompletionRate:  10,
		FeePaymentStatus:         FeeOverdue,
		HasScholarship:           false,
		CurrentStreak:            0,
		LongestStreak:            0,
	}
}

// modelStudent is strong on every metric.
func modelStudent() StudentMetrics {
	return StudentMetrics{
		CGPA:                     9.5,
		AssignmentCompletionRate: 98,
		TestScoreAverage:         95,
		AttendanceRate:           99,
		TotalAbsences:            0,
		TardinessCount:           0,
		LoginFrequency:           7,
		ClassParticipationScore:  95,
		ChallengeCompletionRate:  90,
		FeePaymentStatus:         FeeCurrent,
		HasScholarship:           true,
		CurrentStreak:            10,
		LongestStreak:            10,
	}
}

func TestComputeRuleBased_StrugglingStudent(t *testing.T) {
	result := ComputeRuleBased(strugglingStudent())

	assert.Equal(t, AlgorithmRuleBased, result.Algorithm)
	assert.Equal(t, LevelHigh, result.Level)
	assert.Greater(t, result.Score, 60.0)

	// Overdue fees map to exactly 80.
	assert.Equal(t, 80.0, result.Factors.Financial)

	// academic = 100 - (0.3*25 + 40*0.35 + 35*0.40)
	assert.InDelta(t, 64.5, result.Factors.Academic, 1e-9)
	assert.InDelta(t, 45.0, result.Factors.Attendance, 1e-9)
	assert.InDelta(t, 80.0, result.Factors.Social, 1e-9)
	assert.InDelta(t, 66.5678571, result.Score, 1e-6)
}

func TestComputeRuleBased_ModelStudent(t *testing.T) {
	result := ComputeRuleBased(modelStudent())

	assert.Equal(t, LevelLow, result.Level)
	assert.InDelta(t, 5.0325, result.Score, 1e-9)
	assert.Equal(t, 1.0, result.CompoundMultiplier)
}

func TestComputeRuleBased_FinancialMapping(t *testing.T) {
	m := modelStudent()

	m.FeePaymentStatus = FeeCurrent
	assert.Equal(t, 20.0, ComputeRuleBased(m).Factors.Financial)

	m.FeePaymentStatus = FeeDelayed
	assert.Equal(t, 50.0, ComputeRuleBased(m).Factors.Financial)

	m.FeePaymentStatus = FeeOverdue
	assert.Equal(t, 80.0, ComputeRuleBased(m).Factors.Financial)
}

func TestComputeRuleBased_Idempotent(t *testing.T) {
	m := strugglingStudent()
	first := ComputeRuleBased(m)
	second := ComputeRuleBased(m)
	require.Equal(t, first, second)
}

func TestClassifyLevel_RuleBasedBoundaries(t *testing.T) {
	assert.Equal(t, LevelLow, classifyLevel(29.9, ruleLowBelow, ruleModerateBelow))
	assert.Equal(t, LevelModerate, classifyLevel(30.0, ruleLowBelow, ruleModerateBelow))
	assert.Equal(t, LevelModerate, classifyLevel(59.9, ruleLowBelow, ruleModerateBelow))
	assert.Equal(t, LevelHigh, classifyLevel(60.0, ruleLowBelow, ruleModerateBelow))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-3.5))
	assert.Equal(t, 42.0, clampScore(42))
	assert.Equal(t, 100.0, clampScore(117.6))
}
