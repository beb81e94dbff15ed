package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edupulse/student-risk-hub/internal/domain/intervention"
	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE INTERVENTION COMMAND
// Opens a support action against the student's current risk score. The
// score captured here is the baseline the effectiveness measurement uses
// at completion.
// ══════════════════════════════════════════════════════════════════════════════

// CreateInterventionCommand contains the data needed to open an intervention.
type CreateInterventionCommand struct {
	StudentID   string
	TeacherID   string
	Type        intervention.Type
	Description string

	// Priority overrides the score-derived default when non-empty.
	Priority intervention.Priority
}

// Validate validates the command.
func (c CreateInterventionCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("command", "CreateIntervention", shared.ErrEmptyValue, "student_id is required")
	}
	if !c.Type.IsValid() {
		return shared.NewDomainError("command", "CreateIntervention", shared.ErrInvalidInput, "unknown intervention type")
	}
	if c.Priority != "" && !c.Priority.IsValid() {
		return shared.NewDomainError("command", "CreateIntervention", shared.ErrInvalidInput, "unknown priority")
	}
	return nil
}

// CreateInterventionHandler handles the CreateInterventionCommand.
type CreateInterventionHandler struct {
	studentRepo      student.Repository
	interventionRepo intervention.Repository
	assessmentRepo   risk.AssessmentRepository
	eventPublisher   shared.EventPublisher
}

// NewCreateInterventionHandler creates a new CreateInterventionHandler.
func NewCreateInterventionHandler(
	studentRepo student.Repository,
	interventionRepo intervention.Repository,
	assessmentRepo risk.AssessmentRepository,
	eventPublisher shared.EventPublisher,
) *CreateInterventionHandler {
	return &CreateInterventionHandler{
		studentRepo:      studentRepo,
		interventionRepo: interventionRepo,
		assessmentRepo:   assessmentRepo,
		eventPublisher:   eventPublisher,
	}
}

// Handle executes the create intervention command.
func (h *CreateInterventionHandler) Handle(ctx context.Context, cmd CreateInterventionCommand) (*intervention.Intervention, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.studentRepo.GetByID(ctx, cmd.StudentID); err != nil {
		return nil, fmt.Errorf("create_intervention: load student: %w", err)
	}

	// Unassessed students get a zero baseline; completion then records
	// zero effectiveness rather than failing.
	initialScore := 0.0
	if latest, err := h.assessmentRepo.LatestForStudent(ctx, cmd.StudentID); err == nil {
		initialScore = latest.RiskScore
	}

	priority := cmd.Priority
	if priority == "" {
		priority = intervention.PriorityForScore(initialScore)
	}

	now := time.Now().UTC()
	i := &intervention.Intervention{
		ID:               uuid.NewString(),
		StudentID:        cmd.StudentID,
		TeacherID:        cmd.TeacherID,
		Type:             cmd.Type,
		Status:           intervention.StatusPending,
		Priority:         priority,
		Description:      cmd.Description,
		InitialRiskScore: initialScore,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := i.Validate(); err != nil {
		return nil, err
	}

	if err := h.interventionRepo.Create(ctx, i); err != nil {
		return nil, fmt.Errorf("create_intervention: persist: %w", err)
	}

	return i, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE INTERVENTION COMMAND
// Closes an intervention against a fresh risk score, measures
// effectiveness, and credits the teacher's statistics.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteInterventionCommand contains the data needed to close an
// intervention.
type CompleteInterventionCommand struct {
	InterventionID string
}

// Validate validates the command.
func (c CompleteInterventionCommand) Validate() error {
	if c.InterventionID == "" {
		return shared.NewDomainError("command", "CompleteIntervention", shared.ErrEmptyValue, "intervention_id is required")
	}
	return nil
}

// CompleteInterventionResult contains the measured outcome.
type CompleteInterventionResult struct {
	Intervention  *intervention.Intervention
	Effectiveness float64
	Successful    bool
}

// CompleteInterventionHandler handles the CompleteInterventionCommand.
type CompleteInterventionHandler struct {
	interventionRepo intervention.Repository
	assessmentRepo   risk.AssessmentRepository
	teacherRepo      student.TeacherRepository
	assessHandler    *AssessStudentHandler
	eventPublisher   shared.EventPublisher
}

// NewCompleteInterventionHandler creates a new CompleteInterventionHandler.
func NewCompleteInterventionHandler(
	interventionRepo intervention.Repository,
	assessmentRepo risk.AssessmentRepository,
	teacherRepo student.TeacherRepository,
	assessHandler *AssessStudentHandler,
	eventPublisher shared.EventPublisher,
) *CompleteInterventionHandler {
	return &CompleteInterventionHandler{
		interventionRepo: interventionRepo,
		assessmentRepo:   assessmentRepo,
		teacherRepo:      teacherRepo,
		assessHandler:    assessHandler,
		eventPublisher:   eventPublisher,
	}
}

// Handle executes the complete intervention command.
func (h *CompleteInterventionHandler) Handle(ctx context.Context, cmd CompleteInterventionCommand) (*CompleteInterventionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	i, err := h.interventionRepo.GetByID(ctx, cmd.InterventionID)
	if err != nil {
		return nil, fmt.Errorf("complete_intervention: load: %w", err)
	}

	finalScore, err := h.currentScore(ctx, i.StudentID)
	if err != nil {
		return nil, fmt.Errorf("complete_intervention: measure final score: %w", err)
	}

	if err := i.Complete(finalScore, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := h.interventionRepo.Update(ctx, i); err != nil {
		return nil, fmt.Errorf("complete_intervention: persist: %w", err)
	}

	h.creditTeacher(ctx, i)

	result := &CompleteInterventionResult{
		Intervention:  i,
		Effectiveness: *i.Effectiveness,
		Successful:    i.Successful(),
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(shared.NewInterventionCompletedEvent(
			i.StudentID, i.ID, i.TeacherID, result.Effectiveness, result.Successful))
	}

	return result, nil
}

// currentScore reassesses the student when possible so the measurement
// reflects today's data, falling back to the latest stored assessment.
func (h *CompleteInterventionHandler) currentScore(ctx context.Context, studentID string) (float64, error) {
	if h.assessHandler != nil {
		res, err := h.assessHandler.Handle(ctx, AssessStudentCommand{StudentID: studentID, Reason: "intervention_completed"})
		if err == nil {
			return res.Assessment.RiskScore, nil
		}
	}

	latest, err := h.assessmentRepo.LatestForStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return latest.RiskScore, nil
}

// creditTeacher updates the assigned teacher's statistics. Missing
// teachers are tolerated.
func (h *CompleteInterventionHandler) creditTeacher(ctx context.Context, i *intervention.Intervention) {
	if h.teacherRepo == nil || i.TeacherID == "" {
		return
	}
	t, err := h.teacherRepo.GetByID(ctx, i.TeacherID)
	if err != nil {
		return
	}
	t.RecordIntervention(i.Successful())
	_ = h.teacherRepo.Update(ctx, t)
}
