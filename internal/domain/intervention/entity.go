// Package intervention contains the intervention domain: support actions a
// teacher opens for an at-risk student, their lifecycle, and the
// effectiveness measurement taken when they close.
package intervention

import (
	"context"
	"strings"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Type categorizes the kind of support action.
type Type string

const (
	TypeCounseling    Type = "counseling"
	TypeTutoring      Type = "tutoring"
	TypeMentoring     Type = "mentoring"
	TypeFinancialAid  Type = "financial_aid"
	TypeParentMeeting Type = "parent_meeting"
)

// IsValid checks that the type is one of the known values.
func (t Type) IsValid() bool {
	switch t {
	case TypeCounseling, TypeTutoring, TypeMentoring, TypeFinancialAid, TypeParentMeeting:
		return true
	}
	return false
}

// Status is the lifecycle state of an intervention.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// CanTransitionTo reports whether moving to the target status is allowed.
// Completed and cancelled are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusInProgress || target == StatusCompleted || target == StatusCancelled
	case StatusInProgress:
		return target == StatusCompleted || target == StatusCancelled
	default:
		return false
	}
}

// Priority expresses how urgently the intervention needs attention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks that the priority is one of the known values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// PriorityForScore derives a default priority from the risk score the
// intervention is opened against.
func PriorityForScore(score float64) Priority {
	switch {
	case score >= 85:
		return PriorityUrgent
	case score >= 65:
		return PriorityHigh
	case score >= 35:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Intervention is a support action opened for a student. InitialRiskScore
// is captured at creation; FinalRiskScore at completion. The pair yields
// the effectiveness measurement that feeds teacher statistics.
type Intervention struct {
	ID        string
	StudentID string
	TeacherID string

	Type        Type
	Status      Status
	Priority    Priority
	Description string

	// InitialRiskScore is the student's risk score when the intervention
	// was opened.
	InitialRiskScore float64

	// FinalRiskScore is the score at completion; nil until completed.
	FinalRiskScore *float64

	// Effectiveness is the measured risk reduction in percent; nil until
	// completed.
	Effectiveness *float64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// Validate checks entity invariants before persistence.
func (i *Intervention) Validate() error {
	if strings.TrimSpace(i.StudentID) == "" {
		return shared.WrapError("intervention", "Validate", shared.ErrEmptyValue, "student ID is required", nil)
	}
	if !i.Type.IsValid() {
		return shared.WrapError("intervention", "Validate", shared.ErrInvalidInput, "unknown intervention type", nil)
	}
	if !i.Priority.IsValid() {
		return shared.WrapError("intervention", "Validate", shared.ErrInvalidInput, "unknown priority", nil)
	}
	return nil
}

// Start moves a pending intervention into progress.
func (i *Intervention) Start(now time.Time) error {
	if !i.Status.CanTransitionTo(StatusInProgress) {
		return shared.ErrInvalidTransition
	}
	i.Status = StatusInProgress
	i.UpdatedAt = now
	return nil
}

// Complete closes the intervention with the student's current risk score
// and computes effectiveness as the relative risk reduction, clamped to
// [0, 100]. A zero initial score yields zero effectiveness.
func (i *Intervention) Complete(finalScore float64, now time.Time) error {
	if i.Status == StatusCompleted {
		return shared.ErrInterventionCompleted
	}
	if !i.Status.CanTransitionTo(StatusCompleted) {
		return shared.ErrInvalidTransition
	}

	eff := Effectiveness(i.InitialRiskScore, finalScore)
	i.Status = StatusCompleted
	i.FinalRiskScore = &finalScore
	i.Effectiveness = &eff
	i.CompletedAt = &now
	i.UpdatedAt = now
	return nil
}

// Cancel abandons the intervention without measuring effectiveness.
func (i *Intervention) Cancel(now time.Time) error {
	if !i.Status.CanTransitionTo(StatusCancelled) {
		return shared.ErrInvalidTransition
	}
	i.Status = StatusCancelled
	i.UpdatedAt = now
	return nil
}

// Successful reports whether the completed intervention measurably
// reduced risk. False for anything not yet completed.
func (i *Intervention) Successful() bool {
	return i.Status == StatusCompleted && i.Effectiveness != nil && *i.Effectiveness > 0
}

// Effectiveness computes the relative risk reduction in percent:
// (initial - final) / initial * 100, clamped to [0, 100].
func Effectiveness(initial, final float64) float64 {
	if initial <= 0 {
		return 0
	}
	eff := (initial - final) / initial * 100
	if eff < 0 {
		return 0
	}
	if eff > 100 {
		return 100
	}
	return eff
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines persistence operations for interventions.
type Repository interface {
	// Create persists a new intervention.
	Create(ctx context.Context, i *Intervention) error

	// GetByID returns an intervention by ID.
	GetByID(ctx context.Context, id string) (*Intervention, error)

	// Update persists lifecycle changes.
	Update(ctx context.Context, i *Intervention) error

	// ByStudent returns all interventions for a student, newest first.
	ByStudent(ctx context.Context, studentID string) ([]*Intervention, error)

	// OpenByStudent returns pending and in-progress interventions for a
	// student.
	OpenByStudent(ctx context.Context, studentID string) ([]*Intervention, error)

	// ByTeacher returns all interventions opened by a teacher, newest first.
	ByTeacher(ctx context.Context, teacherID string) ([]*Intervention, error)

	// AverageEffectiveness returns the mean effectiveness of completed
	// interventions, optionally filtered by type (empty means all).
	AverageEffectiveness(ctx context.Context, typ Type) (float64, error)
}
