// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/intervention"
	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RISK OVERVIEW QUERY
// Builds the per-student dashboard view: profile, latest assessment,
// bounded history and open interventions. The latest assessment is read
// through a cache when one is wired; everything falls back to the
// repository.
// ══════════════════════════════════════════════════════════════════════════════

// GetRiskOverviewQuery contains the query parameters.
type GetRiskOverviewQuery struct {
	// StudentID is the internal ID of the student.
	StudentID string

	// HistoryLimit caps the returned assessment history (default 5,
	// maximum 50).
	HistoryLimit int
}

// Validate validates and normalizes the query.
func (q *GetRiskOverviewQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("query", "GetRiskOverview", shared.ErrEmptyValue, "student_id is required")
	}
	if q.HistoryLimit <= 0 {
		q.HistoryLimit = risk.DefaultHistoryLimit
	}
	if q.HistoryLimit > 50 {
		q.HistoryLimit = 50
	}
	return nil
}

// AssessmentDTO is the wire shape of one assessment.
type AssessmentDTO struct {
	ID                          string          `json:"id"`
	RiskScore                   float64         `json:"risk_score"`
	RiskLevel                   string          `json:"risk_level"`
	Factors                     risk.FactorSet  `json:"factors"`
	Recommendations             []string        `json:"recommendations"`
	PredictedDropoutProbability float64         `json:"predicted_dropout_probability"`
	TrendDirection              string          `json:"trend_direction"`
	PreviousScore               *float64        `json:"previous_score,omitempty"`
	CreatedAt                   time.Time       `json:"created_at"`
}

// InterventionDTO is the wire shape of one open intervention.
type InterventionDTO struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Description string `json:"description,omitempty"`
}

// RiskOverviewResult contains the per-student overview.
type RiskOverviewResult struct {
	StudentID   string `json:"student_id"`
	Code        string `json:"code"`
	FullName    string `json:"full_name"`
	Grade       string `json:"grade"`
	Section     string `json:"section,omitempty"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
	CurrentStreak int  `json:"current_streak"`

	// Latest is nil for a student never assessed.
	Latest *AssessmentDTO `json:"latest,omitempty"`

	// History holds prior assessments, most recent first (including the
	// latest).
	History []AssessmentDTO `json:"history"`

	// OpenInterventions lists pending and in-progress interventions.
	OpenInterventions []InterventionDTO `json:"open_interventions"`

	// FromCache indicates the latest assessment was served from cache.
	FromCache bool `json:"-"`

	GeneratedAt time.Time `json:"generated_at"`
}

// LatestAssessmentCache serves the freshest assessment without touching
// postgres.
type LatestAssessmentCache interface {
	GetLatest(ctx context.Context, studentID string) (*risk.Assessment, error)
}

// GetRiskOverviewHandler handles the GetRiskOverviewQuery.
type GetRiskOverviewHandler struct {
	studentRepo      student.Repository
	assessmentRepo   risk.AssessmentRepository
	interventionRepo intervention.Repository
	cache            LatestAssessmentCache
}

// NewGetRiskOverviewHandler creates a new GetRiskOverviewHandler. cache
// and interventionRepo may be nil.
func NewGetRiskOverviewHandler(
	studentRepo student.Repository,
	assessmentRepo risk.AssessmentRepository,
	interventionRepo intervention.Repository,
	cache LatestAssessmentCache,
) *GetRiskOverviewHandler {
	return &GetRiskOverviewHandler{
		studentRepo:      studentRepo,
		assessmentRepo:   assessmentRepo,
		interventionRepo: interventionRepo,
		cache:            cache,
	}
}

// Handle executes the query.
func (h *GetRiskOverviewHandler) Handle(ctx context.Context, q GetRiskOverviewQuery) (*RiskOverviewResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	result := &RiskOverviewResult{
		StudentID:     s.ID,
		Code:          s.Code.String(),
		FullName:      s.FullName,
		Grade:         s.Grade,
		Section:       s.Section,
		Level:         s.Level(),
		XP:            int(s.XP),
		CurrentStreak: s.Metrics.CurrentStreak,
		GeneratedAt:   time.Now().UTC(),
	}

	latest, fromCache := h.loadLatest(ctx, s.ID)
	if latest != nil {
		dto := toAssessmentDTO(latest)
		result.Latest = &dto
		result.FromCache = fromCache
	}

	history, err := h.assessmentRepo.HistoryForStudent(ctx, s.ID, q.HistoryLimit)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	result.History = make([]AssessmentDTO, len(history))
	for i, a := range history {
		result.History[i] = toAssessmentDTO(a)
	}

	if h.interventionRepo != nil {
		open, err := h.interventionRepo.OpenByStudent(ctx, s.ID)
		if err == nil {
			result.OpenInterventions = make([]InterventionDTO, len(open))
			for i, iv := range open {
				result.OpenInterventions[i] = InterventionDTO{
					ID:          iv.ID,
					Type:        string(iv.Type),
					Status:      string(iv.Status),
					Priority:    string(iv.Priority),
					Description: iv.Description,
				}
			}
		}
	}

	return result, nil
}

// loadLatest tries the cache first and falls back to the repository.
func (h *GetRiskOverviewHandler) loadLatest(ctx context.Context, studentID string) (*risk.Assessment, bool) {
	if h.cache != nil {
		if a, err := h.cache.GetLatest(ctx, studentID); err == nil && a != nil {
			return a, true
		}
	}
	a, err := h.assessmentRepo.LatestForStudent(ctx, studentID)
	if err != nil {
		return nil, false
	}
	return a, false
}

func toAssessmentDTO(a *risk.Assessment) AssessmentDTO {
	return AssessmentDTO{
		ID:                          a.ID,
		RiskScore:                   a.RiskScore,
		RiskLevel:                   string(a.RiskLevel),
		Factors:                     a.Factors,
		Recommendations:             a.Recommendations,
		PredictedDropoutProbability: a.PredictedDropoutProbability,
		TrendDirection:              string(a.TrendDirection),
		PreviousScore:               a.PreviousScore,
		CreatedAt:                   a.CreatedAt,
	}
}
