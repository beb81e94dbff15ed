// Package notification contains the alerting domain: messages pushed to
// teachers when assessments cross alert thresholds, plus digest entries.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
)

// Type categorizes the alert.
type Type string

const (
	TypeHighRiskAlert  Type = "high_risk_alert"
	TypeDecliningTrend Type = "declining_trend"
	TypeLevelChanged   Type = "level_changed"
	TypeDailyDigest    Type = "daily_digest"
)

// Notification is an alert addressed to a teacher about one of their
// students. RecipientID is empty for broadcast notifications picked up by
// whoever owns the student at read time.
type Notification struct {
	ID          string
	RecipientID string
	StudentID   string
	Type        Type
	Title       string
	Message     string
	Read        bool
	CreatedAt   time.Time
}

// MarkRead flags the notification as read.
func (n *Notification) MarkRead() {
	n.Read = true
}

// ══════════════════════════════════════════════════════════════════════════════
// ALERT RULES
// ══════════════════════════════════════════════════════════════════════════════

// ForAssessment derives the notifications a fresh assessment warrants:
// one when the student classifies at-risk (moderate or high), one when
// the trend is declining. ID, recipient and timestamps are left for the
// caller.
func ForAssessment(a *risk.Assessment, studentName string) []*Notification {
	var out []*Notification

	if a.RiskLevel.AtRisk() {
		out = append(out, &Notification{
			StudentID: a.StudentID,
			Type:      TypeHighRiskAlert,
			Title:     fmt.Sprintf("%s risk: %s", a.RiskLevel, studentName),
			Message: fmt.Sprintf("%s scored %.1f and is classified %s risk. Review the recommended actions.",
				studentName, a.RiskScore, a.RiskLevel),
		})
	}

	if a.TrendDirection == risk.TrendDeclining {
		out = append(out, &Notification{
			StudentID: a.StudentID,
			Type:      TypeDecliningTrend,
			Title:     fmt.Sprintf("Declining trend: %s", studentName),
			Message: fmt.Sprintf("%s's risk trajectory is worsening (score %.1f). Early intervention is most effective now.",
				studentName, a.RiskScore),
		})
	}

	return out
}

// ForLevelChange builds the notification for a level transition.
func ForLevelChange(studentID, studentName string, oldLevel, newLevel risk.RiskLevel, score float64) *Notification {
	return &Notification{
		StudentID: studentID,
		Type:      TypeLevelChanged,
		Title:     fmt.Sprintf("Risk level changed: %s", studentName),
		Message: fmt.Sprintf("%s moved from %s to %s risk (score %.1f).",
			studentName, oldLevel, newLevel, score),
	}
}

// Repository defines persistence operations for notifications.
type Repository interface {
	// Create persists a new notification.
	Create(ctx context.Context, n *Notification) error

	// GetByID returns a notification by ID.
	GetByID(ctx context.Context, id string) (*Notification, error)

	// UnreadForRecipient returns unread notifications for a teacher,
	// newest first.
	UnreadForRecipient(ctx context.Context, recipientID string, limit int) ([]*Notification, error)

	// MarkRead flags a notification as read.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead flags every unread notification for a teacher as
	// read and returns how many were affected.
	MarkAllRead(ctx context.Context, recipientID string) (int, error)

	// CountUnread returns the unread count for a teacher.
	CountUnread(ctx context.Context, recipientID string) (int, error)
}
