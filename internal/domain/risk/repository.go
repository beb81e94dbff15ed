package risk

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Contract for assessment persistence. Implementations live in
// infrastructure/persistence. The history is append-only: no update
// operation exists, and deletion is reserved for the administrative clear.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultHistoryLimit is how many prior assessments temporal analysis
// typically consumes.
const DefaultHistoryLimit = 5

// AssessmentRepository defines persistence operations for assessments.
type AssessmentRepository interface {
	// Create appends a new assessment to the student's history.
	Create(ctx context.Context, a *Assessment) error

	// LatestForStudent returns the most recent assessment for a student.
	// Returns ErrAssessmentNotFound if none exists yet.
	LatestForStudent(ctx context.Context, studentID string) (*Assessment, error)

	// HistoryForStudent returns up to limit assessments for a student,
	// most recent first.
	HistoryForStudent(ctx context.Context, studentID string, limit int) ([]*Assessment, error)

	// ByRiskLevel returns the latest assessment of every student whose
	// current classification matches the given level.
	ByRiskLevel(ctx context.Context, level RiskLevel) ([]*Assessment, error)

	// CountByLevel returns the number of students per current risk level.
	CountByLevel(ctx context.Context) (map[RiskLevel]int, error)

	// DeleteAllForStudent wipes a student's assessment history.
	// Administrative use only.
	DeleteAllForStudent(ctx context.Context, studentID string) (int, error)
}
