package command

import (
	"context"
	"fmt"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD PROGRESS COMMAND
// Lands daily gamification progress: XP, streak movement, badges. Streaks
// feed the engagement metrics the scoring algorithms consume, so a broken
// streak quietly worsens the social factor on the next assessment.
// ══════════════════════════════════════════════════════════════════════════════

// Streak milestones that award badges.
var streakBadges = map[int]string{
	7:   "week-streak",
	30:  "month-streak",
	100: "centurion",
}

// RecordProgressCommand contains one day's activity for a student.
type RecordProgressCommand struct {
	// StudentID is the internal ID of the student.
	StudentID string

	// XPDelta is the XP earned (negative values correct prior awards).
	XPDelta int

	// ActiveToday extends the streak; false breaks it.
	ActiveToday bool
}

// Validate validates the command.
func (c RecordProgressCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("command", "RecordProgress", shared.ErrEmptyValue, "student_id is required")
	}
	return nil
}

// RecordProgressResult contains the outcome of a progress record.
type RecordProgressResult struct {
	NewXP         int
	NewLevel      int
	LeveledUp     bool
	CurrentStreak int
	StreakBroken  bool
	BadgesAwarded []string
}

// RecordProgressHandler handles the RecordProgressCommand.
type RecordProgressHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewRecordProgressHandler creates a new RecordProgressHandler.
func NewRecordProgressHandler(studentRepo student.Repository, eventPublisher shared.EventPublisher) *RecordProgressHandler {
	return &RecordProgressHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the record progress command.
func (h *RecordProgressHandler) Handle(ctx context.Context, cmd RecordProgressCommand) (*RecordProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	s, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("record_progress: load student: %w", err)
	}

	result := &RecordProgressResult{}
	result.LeveledUp = s.AddXP(student.XP(cmd.XPDelta))

	if cmd.ActiveToday {
		s.RecordStreakDay()
		if badge, ok := streakBadges[s.Metrics.CurrentStreak]; ok && s.AddBadge(badge) {
			result.BadgesAwarded = append(result.BadgesAwarded, badge)
		}
	} else if s.Metrics.CurrentStreak > 0 {
		s.BreakStreak()
		result.StreakBroken = true
	}

	s.UpdatedAt = time.Now().UTC()
	if err := h.studentRepo.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("record_progress: persist student: %w", err)
	}

	result.NewXP = int(s.XP)
	result.NewLevel = s.Level()
	result.CurrentStreak = s.Metrics.CurrentStreak

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(shared.NewProgressRecordedEvent(
			s.ID, cmd.XPDelta, result.NewLevel, result.LeveledUp, result.CurrentStreak, result.BadgesAwarded))
	}

	return result, nil
}
