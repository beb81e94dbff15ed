package student

import "context"

// ListOptions controls pagination and filtering for roster listings.
type ListOptions struct {
	// Limit caps the number of returned students (0 means no cap).
	Limit int

	// Offset skips the first N students.
	Offset int

	// Grade filters by grade when non-empty.
	Grade string

	// TeacherID filters by assigned teacher when non-empty.
	TeacherID string
}

// Repository defines persistence operations for students.
type Repository interface {
	// Create persists a new student. Returns ErrStudentAlreadyExists if
	// the code is taken.
	Create(ctx context.Context, s *Student) error

	// GetByID returns a student by internal ID.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByCode returns a student by external code.
	GetByCode(ctx context.Context, code Code) (*Student, error)

	// Update persists changes to an existing student.
	Update(ctx context.Context, s *Student) error

	// List returns students matching the options, ordered by code.
	List(ctx context.Context, opts ListOptions) ([]*Student, error)

	// ListIDs returns the IDs of all students. Used by the bulk
	// recalculation job to fan work out without loading full rows.
	ListIDs(ctx context.Context) ([]string, error)

	// Count returns the total number of students.
	Count(ctx context.Context) (int, error)

	// Delete removes a student. Administrative use only.
	Delete(ctx context.Context, id string) error
}

// TeacherRepository defines persistence operations for teachers.
type TeacherRepository interface {
	// Create persists a new teacher.
	Create(ctx context.Context, t *Teacher) error

	// GetByID returns a teacher by internal ID.
	GetByID(ctx context.Context, id string) (*Teacher, error)

	// Update persists changes to an existing teacher.
	Update(ctx context.Context, t *Teacher) error

	// List returns all teachers ordered by code.
	List(ctx context.Context) ([]*Teacher, error)
}
