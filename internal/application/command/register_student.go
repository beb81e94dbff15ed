package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Adds a student to the roster with the onboarding metric defaults, then
// runs the first assessment so the dashboard never shows an unscored
// student.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the data needed to register a student.
type RegisterStudentCommand struct {
	// Code is the external student identifier.
	Code string

	// FullName is the student's display name.
	FullName string

	Grade   string
	Section string

	// TeacherID assigns a supervising teacher (optional).
	TeacherID string

	// Metrics overrides the onboarding defaults when non-nil.
	Metrics *student.MetricsUpdate
}

// Validate validates the command.
func (c RegisterStudentCommand) Validate() error {
	if !student.Code(c.Code).IsValid() {
		return shared.ErrInvalidStudentCode
	}
	if c.FullName == "" {
		return shared.NewDomainError("command", "RegisterStudent", shared.ErrEmptyValue, "full_name is required")
	}
	return nil
}

// RegisterStudentResult contains the outcome of a registration.
type RegisterStudentResult struct {
	// Student is the persisted student.
	Student *student.Student

	// InitialAssessment is the first assessment, nil when the assess
	// handler is not wired.
	InitialAssessment *AssessStudentResult
}

// RegisterStudentHandler handles the RegisterStudentCommand.
type RegisterStudentHandler struct {
	studentRepo    student.Repository
	teacherRepo    student.TeacherRepository
	assessHandler  *AssessStudentHandler
	eventPublisher shared.EventPublisher
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
func NewRegisterStudentHandler(
	studentRepo student.Repository,
	teacherRepo student.TeacherRepository,
	assessHandler *AssessStudentHandler,
	eventPublisher shared.EventPublisher,
) *RegisterStudentHandler {
	return &RegisterStudentHandler{
		studentRepo:    studentRepo,
		teacherRepo:    teacherRepo,
		assessHandler:  assessHandler,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the register student command.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (*RegisterStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if cmd.TeacherID != "" && h.teacherRepo != nil {
		if _, err := h.teacherRepo.GetByID(ctx, cmd.TeacherID); err != nil {
			return nil, fmt.Errorf("register_student: verify teacher: %w", err)
		}
	}

	now := time.Now().UTC()
	s := &student.Student{
		ID:                uuid.NewString(),
		Code:              student.Code(cmd.Code),
		FullName:          cmd.FullName,
		Grade:             cmd.Grade,
		Section:           cmd.Section,
		AssignedTeacherID: cmd.TeacherID,
		Metrics:           student.DefaultMetrics(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if cmd.Metrics != nil {
		s.ApplyMetricsUpdate(*cmd.Metrics)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if err := h.studentRepo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("register_student: persist student: %w", err)
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(shared.NewStudentRegisteredEvent(s.ID, s.Code.String(), s.FullName))
	}

	result := &RegisterStudentResult{Student: s}
	if h.assessHandler != nil {
		assessed, err := h.assessHandler.Handle(ctx, AssessStudentCommand{
			StudentID: s.ID,
			Reason:    "registered",
		})
		if err != nil {
			// Registration already landed; the first assessment can be
			// retried by the scheduled bulk run.
			return result, nil
		}
		result.InitialAssessment = assessed
	}

	return result, nil
}
