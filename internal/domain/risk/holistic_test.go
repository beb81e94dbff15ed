package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeHolistic_ModelStudent(t *testing.T) {
	result := ComputeHolistic(modelStudent())

	assert.Equal(t, LevelLow, result.Level)
	assert.Equal(t, 1.0, result.CompoundMultiplier)
	// Scholarship holder current on fees carries the least financial risk.
	assert.Equal(t, 10.0, result.Factors.Financial)
}

func TestComputeHolistic_FinancialMapping(t *testing.T) {
	m := modelStudent()

	m.HasScholarship = false
	assert.Equal(t, 20.0, ComputeHolistic(m).Factors.Financial)

	m.FeePaymentStatus = FeeDelayed
	assert.Equal(t, 45.0, ComputeHolistic(m).Factors.Financial)

	// Overdue dominates scholarship status.
	m.FeePaymentStatus = FeeOverdue
	m.HasScholarship = true
	assert.Equal(t, 75.0, ComputeHolistic(m).Factors.Financial)
}

func TestComputeHolistic_StreakRatioZeroGuard(t *testing.T) {
	m := modelStudent()
	m.CurrentStreak = 0
	m.LongestStreak = 0

	// longestStreak=0 must short-circuit the ratio to 0, not divide by zero.
	result := ComputeHolistic(m)
	assert.InDelta(t, 100-m.ClassParticipationScore*holisticSocialParticipationWeight,
		result.Factors.Social, 1e-9)
}

func TestComputeHolistic_AttendanceFoldsInAbsencesAndTardiness(t *testing.T) {
	m := modelStudent()
	m.AttendanceRate = 80
	m.TotalAbsences = 10
	m.TardinessCount = 4

	// 100 - (80*0.7 + (100-20)*0.2 + (100-20)*0.1)
	assert.InDelta(t, 100-(56.0+16.0+8.0), ComputeHolistic(m).Factors.Attendance, 1e-9)
}

func TestHolisticCompoundMultiplier(t *testing.T) {
	tests := []struct {
		name    string
		factors FactorSet
		want    float64
	}{
		{
			name:    "no interaction",
			factors: FactorSet{Academic: 50, Attendance: 50, Engagement: 50, Financial: 50},
			want:    1.0,
		},
		{
			name:    "academic and attendance both elevated",
			factors: FactorSet{Academic: 61, Attendance: 61, Engagement: 10, Financial: 10},
			want:    1.15,
		},
		{
			name:    "all three primary factors elevated",
			factors: FactorSet{Academic: 61, Attendance: 61, Engagement: 61, Financial: 10},
			want:    1.40,
		},
		{
			name:    "financial strain amplifies academic risk",
			factors: FactorSet{Academic: 51, Attendance: 10, Engagement: 10, Financial: 61},
			want:    1.10,
		},
		{
			name:    "full compound",
			factors: FactorSet{Academic: 61, Attendance: 61, Engagement: 61, Financial: 61},
			want:    1.50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, holisticCompoundMultiplier(tt.factors), 1e-9)
		})
	}
}

func TestComputeHolistic_CompoundClampsAt100(t *testing.T) {
	result := ComputeHolistic(worstCaseStudent())

	assert.InDelta(t, 1.5, result.CompoundMultiplier, 1e-9)
	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, LevelHigh, result.Level)
}

func TestComputeHolistic_LevelBoundaries(t *testing.T) {
	assert.Equal(t, LevelLow, classifyLevel(32.9, holisticLowBelow, holisticModerateBelow))
	assert.Equal(t, LevelModerate, classifyLevel(33.0, holisticLowBelow, holisticModerateBelow))
	assert.Equal(t, LevelModerate, classifyLevel(65.9, holisticLowBelow, holisticModerateBelow))
	assert.Equal(t, LevelHigh, classifyLevel(66.0, holisticLowBelow, holisticModerateBelow))
}
