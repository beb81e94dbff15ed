package query

import (
	"context"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/intervention"
	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATISTICS QUERY
// Cohort-level numbers for the admin dashboard: roster size, risk level
// distribution, at-risk share and intervention effectiveness.
// ══════════════════════════════════════════════════════════════════════════════

// GetStatisticsResult contains the cohort statistics.
type GetStatisticsResult struct {
	TotalStudents int `json:"total_students"`

	// ByLevel maps risk level to the number of students currently
	// classified there. Unassessed students appear in no bucket.
	ByLevel map[string]int `json:"by_level"`

	AtRiskCount   int     `json:"at_risk_count"`
	AtRiskPercent float64 `json:"at_risk_percent"`

	// AverageEffectiveness is the mean measured effectiveness of
	// completed interventions.
	AverageEffectiveness float64 `json:"average_effectiveness"`

	GeneratedAt time.Time `json:"generated_at"`
}

// GetStatisticsHandler handles the statistics query.
type GetStatisticsHandler struct {
	studentRepo      student.Repository
	assessmentRepo   risk.AssessmentRepository
	interventionRepo intervention.Repository
}

// NewGetStatisticsHandler creates a new GetStatisticsHandler.
// interventionRepo may be nil.
func NewGetStatisticsHandler(
	studentRepo student.Repository,
	assessmentRepo risk.AssessmentRepository,
	interventionRepo intervention.Repository,
) *GetStatisticsHandler {
	return &GetStatisticsHandler{
		studentRepo:      studentRepo,
		assessmentRepo:   assessmentRepo,
		interventionRepo: interventionRepo,
	}
}

// Handle executes the query.
func (h *GetStatisticsHandler) Handle(ctx context.Context) (*GetStatisticsResult, error) {
	total, err := h.studentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := h.assessmentRepo.CountByLevel(ctx)
	if err != nil {
		return nil, err
	}

	result := &GetStatisticsResult{
		TotalStudents: total,
		ByLevel:       make(map[string]int, len(counts)),
		GeneratedAt:   time.Now().UTC(),
	}

	for level, n := range counts {
		result.ByLevel[string(level)] = n
		if level.AtRisk() {
			result.AtRiskCount += n
		}
	}
	if total > 0 {
		result.AtRiskPercent = float64(result.AtRiskCount) / float64(total) * 100
	}

	if h.interventionRepo != nil {
		if avg, err := h.interventionRepo.AverageEffectiveness(ctx, ""); err == nil {
			result.AverageEffectiveness = avg
		}
	}

	return result, nil
}
