// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edupulse/student-risk-hub/internal/domain/notification"
	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESS STUDENT COMMAND
// Runs the full four-algorithm ensemble for one student, persists the
// assessment, and fans out alerts. Assessments for the same student are
// serialized so concurrent triggers cannot interleave history reads with
// writes.
// ══════════════════════════════════════════════════════════════════════════════

// AssessStudentCommand contains the data needed to assess a student.
type AssessStudentCommand struct {
	// StudentID is the internal ID of the student to assess.
	StudentID string

	// Reason records what triggered the assessment ("manual",
	// "metrics_updated", "scheduled"). Informational only.
	Reason string
}

// Validate validates the command.
func (c AssessStudentCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("command", "AssessStudent", shared.ErrEmptyValue, "student_id is required")
	}
	return nil
}

// AssessStudentResult contains the outcome of an assessment run.
type AssessStudentResult struct {
	// Assessment is the persisted assessment.
	Assessment *risk.Assessment

	// LevelChanged indicates the classification moved between levels.
	LevelChanged bool

	// PreviousLevel is the classification before this run (empty on the
	// first assessment).
	PreviousLevel risk.RiskLevel

	// NotificationsSent is how many alerts this run produced.
	NotificationsSent int
}

// AssessmentCache invalidates cached read models after a write.
type AssessmentCache interface {
	// SetLatest caches the freshest assessment for a student.
	SetLatest(ctx context.Context, a *risk.Assessment) error

	// InvalidateOverview drops the aggregated overview cache.
	InvalidateOverview(ctx context.Context) error
}

// AssessStudentHandler handles the AssessStudentCommand.
type AssessStudentHandler struct {
	studentRepo      student.Repository
	assessmentRepo   risk.AssessmentRepository
	notificationRepo notification.Repository
	cache            AssessmentCache
	eventPublisher   shared.EventPublisher

	// locks serializes assessments per student.
	locks sync.Map // studentID -> *sync.Mutex
}

// NewAssessStudentHandler creates a new AssessStudentHandler. cache and
// notificationRepo may be nil; the corresponding side effects are skipped.
func NewAssessStudentHandler(
	studentRepo student.Repository,
	assessmentRepo risk.AssessmentRepository,
	notificationRepo notification.Repository,
	cache AssessmentCache,
	eventPublisher shared.EventPublisher,
) *AssessStudentHandler {
	return &AssessStudentHandler{
		studentRepo:      studentRepo,
		assessmentRepo:   assessmentRepo,
		notificationRepo: notificationRepo,
		cache:            cache,
		eventPublisher:   eventPublisher,
	}
}

// Handle executes the assess student command.
func (h *AssessStudentHandler) Handle(ctx context.Context, cmd AssessStudentCommand) (*AssessStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	mu := h.lockFor(cmd.StudentID)
	mu.Lock()
	defer mu.Unlock()

	s, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("assess_student: load student: %w", err)
	}

	history, err := h.assessmentRepo.HistoryForStudent(ctx, s.ID, risk.DefaultHistoryLimit)
	if err != nil && !shared.IsNotFound(err) {
		return nil, fmt.Errorf("assess_student: load history: %w", err)
	}

	a := risk.Assess(s.ID, s.Metrics, risk.Scores(history))
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()

	if err := h.assessmentRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("assess_student: persist assessment: %w", err)
	}

	result := &AssessStudentResult{Assessment: a}
	if len(history) > 0 {
		result.PreviousLevel = history[0].RiskLevel
		result.LevelChanged = history[0].RiskLevel != a.RiskLevel
	}

	h.updateCache(ctx, a)
	result.NotificationsSent = h.sendAlerts(ctx, s, a, result)
	h.publishEvents(a, result)

	return result, nil
}

// lockFor returns the per-student mutex, creating it on first use.
func (h *AssessStudentHandler) lockFor(studentID string) *sync.Mutex {
	v, _ := h.locks.LoadOrStore(studentID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// updateCache refreshes read-model caches. Cache failures never fail the
// assessment.
func (h *AssessStudentHandler) updateCache(ctx context.Context, a *risk.Assessment) {
	if h.cache == nil {
		return
	}
	_ = h.cache.SetLatest(ctx, a)
	_ = h.cache.InvalidateOverview(ctx)
}

// sendAlerts persists the notifications the assessment warrants and
// returns how many landed. Alert failures never fail the assessment.
func (h *AssessStudentHandler) sendAlerts(ctx context.Context, s *student.Student, a *risk.Assessment, r *AssessStudentResult) int {
	if h.notificationRepo == nil {
		return 0
	}

	alerts := notification.ForAssessment(a, s.FullName)
	if r.LevelChanged {
		alerts = append(alerts, notification.ForLevelChange(s.ID, s.FullName, r.PreviousLevel, a.RiskLevel, a.RiskScore))
	}

	sent := 0
	now := time.Now().UTC()
	for _, n := range alerts {
		n.ID = uuid.NewString()
		n.RecipientID = s.AssignedTeacherID
		n.CreatedAt = now
		if err := h.notificationRepo.Create(ctx, n); err != nil {
			continue
		}
		sent++
	}
	return sent
}

// publishEvents emits the domain events for the run. Publish failures are
// swallowed; the bus is best-effort.
func (h *AssessStudentHandler) publishEvents(a *risk.Assessment, r *AssessStudentResult) {
	if h.eventPublisher == nil {
		return
	}

	_ = h.eventPublisher.Publish(shared.NewAssessmentCreatedEvent(
		a.StudentID, a.ID, string(a.RiskLevel), a.RiskScore, string(a.TrendDirection)))

	if r.LevelChanged {
		_ = h.eventPublisher.Publish(shared.NewRiskLevelChangedEvent(
			a.StudentID, string(r.PreviousLevel), string(a.RiskLevel), a.RiskScore))
	}
}
