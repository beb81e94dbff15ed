package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
)

func TestForAssessment_HighRiskAndDeclining(t *testing.T) {
	a := &risk.Assessment{
		StudentID:      "student-1",
		RiskLevel:      risk.LevelHigh,
		RiskScore:      82.5,
		TrendDirection: risk.TrendDeclining,
	}

	got := ForAssessment(a, "Aruzhan Bekova")
	require.Len(t, got, 2)

	assert.Equal(t, TypeHighRiskAlert, got[0].Type)
	assert.Equal(t, "student-1", got[0].StudentID)
	assert.Contains(t, got[0].Message, "82.5")
	assert.Contains(t, got[0].Message, "Aruzhan Bekova")

	assert.Equal(t, TypeDecliningTrend, got[1].Type)
	assert.Contains(t, got[1].Title, "Declining trend")
}

func TestForAssessment_LowRiskStable(t *testing.T) {
	a := &risk.Assessment{
		StudentID:      "student-2",
		RiskLevel:      risk.LevelLow,
		RiskScore:      12,
		TrendDirection: risk.TrendStable,
	}
	assert.Empty(t, ForAssessment(a, "Dias Omarov"))
}

func TestForAssessment_ModerateDecliningOnlyTrendAlert(t *testing.T) {
	a := &risk.Assessment{
		StudentID:      "student-3",
		RiskLevel:      risk.LevelModerate,
		RiskScore:      48,
		TrendDirection: risk.TrendDeclining,
	}

	got := ForAssessment(a, "Dias Omarov")
	require.Len(t, got, 1)
	assert.Equal(t, TypeDecliningTrend, got[0].Type)
}

func TestForLevelChange(t *testing.T) {
	n := ForLevelChange("student-4", "Aliya Nurlanova", risk.LevelModerate, risk.LevelHigh, 71.2)

	assert.Equal(t, TypeLevelChanged, n.Type)
	assert.Equal(t, "student-4", n.StudentID)
	assert.Contains(t, n.Message, "moderate")
	assert.Contains(t, n.Message, "high")
	assert.Contains(t, n.Message, "71.2")
}

func TestMarkRead(t *testing.T) {
	n := &Notification{}
	assert.False(t, n.Read)
	n.MarkRead()
	assert.True(t, n.Read)
}
