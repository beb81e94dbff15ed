// Package shared contains common domain types, errors and events used across
// all domain packages.
package shared

import "time"

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven side effects
// (notifications, cache invalidation, alerting).
const (
	// Student events
	EventStudentRegistered EventType = "student.registered"
	EventMetricsUpdated    EventType = "student.metrics_updated"
	EventProgressRecorded  EventType = "student.progress_recorded"
	EventStreakBroken      EventType = "student.streak_broken"

	// Risk events
	EventAssessmentCreated EventType = "risk.assessment_created"
	EventRiskLevelChanged  EventType = "risk.level_changed"
	EventTrendDeclining    EventType = "risk.trend_declining"

	// Intervention events
	EventInterventionCreated   EventType = "intervention.created"
	EventInterventionCompleted EventType = "intervention.completed"

	// System events
	EventBulkRecalculationDone EventType = "system.bulk_recalculation_done"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single event. Implementations must be safe for
// concurrent use when registered on an asynchronous bus.
type EventHandler interface {
	Handle(event Event) error
	Name() string
}

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Risk Events
// ═══════════════════════════════════════════════════════════════════════════

// AssessmentCreatedEvent is emitted when a new risk assessment is persisted.
type AssessmentCreatedEvent struct {
	BaseEvent
	AssessmentID string  `json:"assessment_id"`
	RiskLevel    string  `json:"risk_level"`
	RiskScore    float64 `json:"risk_score"`
	Trend        string  `json:"trend"`
}

// Payload implements Event interface.
func (e AssessmentCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assessment_id": e.AssessmentID,
		"risk_level":    e.RiskLevel,
		"risk_score":    e.RiskScore,
		"trend":         e.Trend,
	}
}

// NewAssessmentCreatedEvent creates a new AssessmentCreatedEvent. The
// aggregate is the assessed student.
func NewAssessmentCreatedEvent(studentID, assessmentID, riskLevel string, riskScore float64, trend string) AssessmentCreatedEvent {
	return AssessmentCreatedEvent{
		BaseEvent:    NewBaseEvent(EventAssessmentCreated, studentID),
		AssessmentID: assessmentID,
		RiskLevel:    riskLevel,
		RiskScore:    riskScore,
		Trend:        trend,
	}
}

// RiskLevelChangedEvent is emitted when a student's classification moves
// between levels, e.g. moderate -> high.
type RiskLevelChangedEvent struct {
	BaseEvent
	OldLevel  string  `json:"old_level"`
	NewLevel  string  `json:"new_level"`
	RiskScore float64 `json:"risk_score"`
}

// Payload implements Event interface.
func (e RiskLevelChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_level":  e.OldLevel,
		"new_level":  e.NewLevel,
		"risk_score": e.RiskScore,
	}
}

// NewRiskLevelChangedEvent creates a new RiskLevelChangedEvent.
func NewRiskLevelChangedEvent(studentID, oldLevel, newLevel string, riskScore float64) RiskLevelChangedEvent {
	return RiskLevelChangedEvent{
		BaseEvent: NewBaseEvent(EventRiskLevelChanged, studentID),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		RiskScore: riskScore,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Student Events
// ═══════════════════════════════════════════════════════════════════════════

// MetricsUpdatedEvent is emitted when a student's metric snapshot changes.
// Listeners typically trigger a fresh risk assessment.
type MetricsUpdatedEvent struct {
	BaseEvent
	ChangedFields []string `json:"changed_fields"`
}

// Payload implements Event interface.
func (e MetricsUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"changed_fields": e.ChangedFields,
	}
}

// NewMetricsUpdatedEvent creates a new MetricsUpdatedEvent.
func NewMetricsUpdatedEvent(studentID string, changedFields []string) MetricsUpdatedEvent {
	return MetricsUpdatedEvent{
		BaseEvent:     NewBaseEvent(EventMetricsUpdated, studentID),
		ChangedFields: changedFields,
	}
}

// StudentRegisteredEvent is emitted when a new student joins the roster.
type StudentRegisteredEvent struct {
	BaseEvent
	Code     string `json:"code"`
	FullName string `json:"full_name"`
}

// Payload implements Event interface.
func (e StudentRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"code":      e.Code,
		"full_name": e.FullName,
	}
}

// NewStudentRegisteredEvent creates a new StudentRegisteredEvent.
func NewStudentRegisteredEvent(studentID, code, fullName string) StudentRegisteredEvent {
	return StudentRegisteredEvent{
		BaseEvent: NewBaseEvent(EventStudentRegistered, studentID),
		Code:      code,
		FullName:  fullName,
	}
}

// ProgressRecordedEvent is emitted when gamification progress lands: XP,
// streak movement, badges.
type ProgressRecordedEvent struct {
	BaseEvent
	XPDelta       int      `json:"xp_delta"`
	NewLevel      int      `json:"new_level"`
	LeveledUp     bool     `json:"leveled_up"`
	CurrentStreak int      `json:"current_streak"`
	BadgesAwarded []string `json:"badges_awarded"`
}

// Payload implements Event interface.
func (e ProgressRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"xp_delta":       e.XPDelta,
		"new_level":      e.NewLevel,
		"leveled_up":     e.LeveledUp,
		"current_streak": e.CurrentStreak,
		"badges_awarded": e.BadgesAwarded,
	}
}

// NewProgressRecordedEvent creates a new ProgressRecordedEvent.
func NewProgressRecordedEvent(studentID string, xpDelta, newLevel int, leveledUp bool, currentStreak int, badges []string) ProgressRecordedEvent {
	return ProgressRecordedEvent{
		BaseEvent:     NewBaseEvent(EventProgressRecorded, studentID),
		XPDelta:       xpDelta,
		NewLevel:      newLevel,
		LeveledUp:     leveledUp,
		CurrentStreak: currentStreak,
		BadgesAwarded: badges,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Intervention Events
// ═══════════════════════════════════════════════════════════════════════════

// InterventionCompletedEvent is emitted when an intervention closes with a
// measured outcome.
type InterventionCompletedEvent struct {
	BaseEvent
	InterventionID string  `json:"intervention_id"`
	TeacherID      string  `json:"teacher_id"`
	Effectiveness  float64 `json:"effectiveness"`
	Successful     bool    `json:"successful"`
}

// Payload implements Event interface.
func (e InterventionCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"intervention_id": e.InterventionID,
		"teacher_id":      e.TeacherID,
		"effectiveness":   e.Effectiveness,
		"successful":      e.Successful,
	}
}

// NewInterventionCompletedEvent creates a new InterventionCompletedEvent.
// The aggregate is the student the intervention targeted.
func NewInterventionCompletedEvent(studentID, interventionID, teacherID string, effectiveness float64, successful bool) InterventionCompletedEvent {
	return InterventionCompletedEvent{
		BaseEvent:      NewBaseEvent(EventInterventionCompleted, studentID),
		InterventionID: interventionID,
		TeacherID:      teacherID,
		Effectiveness:  effectiveness,
		Successful:     successful,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// BulkRecalculationDoneEvent summarizes a completed bulk recompute run.
type BulkRecalculationDoneEvent struct {
	BaseEvent
	Assessed int `json:"assessed"`
	Failed   int `json:"failed"`
}

// Payload implements Event interface.
func (e BulkRecalculationDoneEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assessed": e.Assessed,
		"failed":   e.Failed,
	}
}

// NewBulkRecalculationDoneEvent creates a new BulkRecalculationDoneEvent.
func NewBulkRecalculationDoneEvent(assessed, failed int) BulkRecalculationDoneEvent {
	return BulkRecalculationDoneEvent{
		BaseEvent: NewBaseEvent(EventBulkRecalculationDone, "system"),
		Assessed:  assessed,
		Failed:    failed,
	}
}
