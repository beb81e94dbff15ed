package query

import (
	"context"
	"sort"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET HIGH RISK STUDENTS QUERY
// The triage list: every student currently classified at-risk, worst
// first, enriched with roster data for the dashboard.
// ══════════════════════════════════════════════════════════════════════════════

// GetHighRiskStudentsQuery contains the query parameters.
type GetHighRiskStudentsQuery struct {
	// Limit caps the list (default 20, maximum 100).
	Limit int

	// IncludeModerate widens the list from high-only to every at-risk
	// level. On by default from the HTTP layer.
	IncludeModerate bool
}

// Validate validates and normalizes the query.
func (q *GetHighRiskStudentsQuery) Validate() error {
	if q.Limit < 0 {
		return shared.NewDomainError("query", "GetHighRiskStudents", shared.ErrInvalidInput, "limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// HighRiskEntryDTO is one row of the triage list.
type HighRiskEntryDTO struct {
	StudentID      string  `json:"student_id"`
	Code           string  `json:"code"`
	FullName       string  `json:"full_name"`
	Grade          string  `json:"grade"`
	RiskScore      float64 `json:"risk_score"`
	RiskLevel      string  `json:"risk_level"`
	TrendDirection string  `json:"trend_direction"`
	AssessedAt     time.Time `json:"assessed_at"`
}

// GetHighRiskStudentsResult contains the triage list.
type GetHighRiskStudentsResult struct {
	Entries     []HighRiskEntryDTO `json:"entries"`
	TotalAtRisk int                `json:"total_at_risk"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// GetHighRiskStudentsHandler handles the GetHighRiskStudentsQuery.
type GetHighRiskStudentsHandler struct {
	studentRepo    student.Repository
	assessmentRepo risk.AssessmentRepository
}

// NewGetHighRiskStudentsHandler creates a new GetHighRiskStudentsHandler.
func NewGetHighRiskStudentsHandler(studentRepo student.Repository, assessmentRepo risk.AssessmentRepository) *GetHighRiskStudentsHandler {
	return &GetHighRiskStudentsHandler{
		studentRepo:    studentRepo,
		assessmentRepo: assessmentRepo,
	}
}

// Handle executes the query.
func (h *GetHighRiskStudentsHandler) Handle(ctx context.Context, q GetHighRiskStudentsQuery) (*GetHighRiskStudentsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	levels := []risk.RiskLevel{risk.LevelHigh}
	if q.IncludeModerate {
		levels = append(levels, risk.LevelModerate)
	}

	var assessments []*risk.Assessment
	for _, level := range levels {
		batch, err := h.assessmentRepo.ByRiskLevel(ctx, level)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		assessments = append(assessments, batch...)
	}

	// Worst first.
	sort.Slice(assessments, func(i, j int) bool {
		return assessments[i].RiskScore > assessments[j].RiskScore
	})

	result := &GetHighRiskStudentsResult{
		TotalAtRisk: len(assessments),
		GeneratedAt: time.Now().UTC(),
	}

	if len(assessments) > q.Limit {
		assessments = assessments[:q.Limit]
	}

	for _, a := range assessments {
		entry := HighRiskEntryDTO{
			StudentID:      a.StudentID,
			RiskScore:      a.RiskScore,
			RiskLevel:      string(a.RiskLevel),
			TrendDirection: string(a.TrendDirection),
			AssessedAt:     a.CreatedAt,
		}
		// Roster enrichment is best-effort; a deleted student still
		// shows up by ID.
		if s, err := h.studentRepo.GetByID(ctx, a.StudentID); err == nil {
			entry.Code = s.Code.String()
			entry.FullName = s.FullName
			entry.Grade = s.Grade
		}
		result.Entries = append(result.Entries, entry)
	}

	return result, nil
}
