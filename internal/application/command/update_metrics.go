package command

import (
	"context"
	"fmt"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE METRICS COMMAND
// Applies a partial metrics change to a student's snapshot. Out-of-range
// values clamp to the boundary instead of failing. Optionally chains a
// fresh assessment so the risk picture never lags the data.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateMetricsCommand contains a partial metrics change for one student.
type UpdateMetricsCommand struct {
	// StudentID is the internal ID of the student to update.
	StudentID string

	// Update carries the changed fields; nil fields are left untouched.
	Update student.MetricsUpdate

	// TriggerAssessment runs a fresh risk assessment after the update.
	TriggerAssessment bool
}

// Validate validates the command.
func (c UpdateMetricsCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("command", "UpdateMetrics", shared.ErrEmptyValue, "student_id is required")
	}
	return nil
}

// UpdateMetricsResult contains the outcome of a metrics update.
type UpdateMetricsResult struct {
	// ChangedFields names the metric fields that actually changed.
	ChangedFields []string

	// Assessment is the chained assessment outcome, nil when not
	// triggered or when nothing changed.
	Assessment *AssessStudentResult
}

// UpdateMetricsHandler handles the UpdateMetricsCommand.
type UpdateMetricsHandler struct {
	studentRepo    student.Repository
	assessHandler  *AssessStudentHandler
	eventPublisher shared.EventPublisher
}

// NewUpdateMetricsHandler creates a new UpdateMetricsHandler.
// assessHandler may be nil when chained assessment is not wanted.
func NewUpdateMetricsHandler(
	studentRepo student.Repository,
	assessHandler *AssessStudentHandler,
	eventPublisher shared.EventPublisher,
) *UpdateMetricsHandler {
	return &UpdateMetricsHandler{
		studentRepo:    studentRepo,
		assessHandler:  assessHandler,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the update metrics command.
func (h *UpdateMetricsHandler) Handle(ctx context.Context, cmd UpdateMetricsCommand) (*UpdateMetricsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	s, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("update_metrics: load student: %w", err)
	}

	changed := s.ApplyMetricsUpdate(cmd.Update)
	result := &UpdateMetricsResult{ChangedFields: changed}
	if len(changed) == 0 {
		return result, nil
	}

	s.UpdatedAt = time.Now().UTC()
	if err := h.studentRepo.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update_metrics: persist student: %w", err)
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(shared.NewMetricsUpdatedEvent(s.ID, changed))
	}

	if cmd.TriggerAssessment && h.assessHandler != nil {
		assessed, assessErr := h.assessHandler.Handle(ctx, AssessStudentCommand{
			StudentID: s.ID,
			Reason:    "metrics_updated",
		})
		if assessErr != nil {
			// The metrics update already landed; surface the chained
			// failure without rolling back.
			return result, fmt.Errorf("update_metrics: chained assessment: %w", assessErr)
		}
		result.Assessment = assessed
	}

	return result, nil
}
