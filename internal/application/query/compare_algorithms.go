package query

import (
	"context"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPARE ALGORITHMS QUERY
// Side-by-side diagnostic view of the scoring algorithms on a student's
// current snapshot. Nothing here persists: the comparison is recomputed
// on demand so it always reflects today's metrics.
// ══════════════════════════════════════════════════════════════════════════════

// CompareAlgorithmsQuery contains the query parameters.
type CompareAlgorithmsQuery struct {
	// StudentID is the internal ID of the student.
	StudentID string

	// IncludeCombined extends the comparison to the blended fourth
	// algorithm (4-way instead of 3-way).
	IncludeCombined bool
}

// Validate validates the query.
func (q CompareAlgorithmsQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("query", "CompareAlgorithms", shared.ErrEmptyValue, "student_id is required")
	}
	return nil
}

// AlgorithmResultDTO is the wire shape of one algorithm's verdict.
type AlgorithmResultDTO struct {
	Algorithm          string         `json:"algorithm"`
	Score              float64        `json:"score"`
	Level              string         `json:"level"`
	Factors            risk.FactorSet `json:"factors"`
	CompoundMultiplier float64        `json:"compound_multiplier"`
}

// CompareAlgorithmsResult contains the comparison payload.
type CompareAlgorithmsResult struct {
	StudentID      string               `json:"student_id"`
	Results        []AlgorithmResultDTO `json:"results"`
	Average        float64              `json:"average"`
	Variance       float64              `json:"variance"`
	StdDev         float64              `json:"std_dev"`
	Agreement      string               `json:"agreement"`
	Recommendation string               `json:"recommendation"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

// CompareAlgorithmsHandler handles the CompareAlgorithmsQuery.
type CompareAlgorithmsHandler struct {
	studentRepo student.Repository
}

// NewCompareAlgorithmsHandler creates a new CompareAlgorithmsHandler.
func NewCompareAlgorithmsHandler(studentRepo student.Repository) *CompareAlgorithmsHandler {
	return &CompareAlgorithmsHandler{studentRepo: studentRepo}
}

// Handle executes the query.
func (h *CompareAlgorithmsHandler) Handle(ctx context.Context, q CompareAlgorithmsQuery) (*CompareAlgorithmsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	var c risk.Comparison
	if q.IncludeCombined {
		c = risk.CompareAll(s.Metrics)
	} else {
		c = risk.CompareThree(s.Metrics)
	}

	results := make([]AlgorithmResultDTO, len(c.Results))
	for i, r := range c.Results {
		results[i] = AlgorithmResultDTO{
			Algorithm:          r.Algorithm,
			Score:              r.Score,
			Level:              string(r.Level),
			Factors:            r.Factors,
			CompoundMultiplier: r.CompoundMultiplier,
		}
	}

	return &CompareAlgorithmsResult{
		StudentID:      s.ID,
		Results:        results,
		Average:        c.Average,
		Variance:       c.Variance,
		StdDev:         c.StdDev,
		Agreement:      string(c.Agreement),
		Recommendation: c.Recommendation,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
