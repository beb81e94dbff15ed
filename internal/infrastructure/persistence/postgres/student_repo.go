package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const studentColumns = `
	id, code, full_name, grade, section, teacher_id,
	cgpa, assignment_completion_rate, test_score_average, attendance_rate,
	total_absences, tardiness_count, login_frequency, class_participation_score,
	challenge_completion_rate, fee_payment_status, has_scholarship,
	current_streak, longest_streak, xp, badges, created_at, updated_at`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, code, full_name, grade, section, teacher_id,
			cgpa, assignment_completion_rate, test_score_average, attendance_rate,
			total_absences, tardiness_count, login_frequency, class_participation_score,
			challenge_completion_rate, fee_payment_status, has_scholarship,
			current_streak, longest_streak, xp, badges, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
	`

	badgesJSON, err := json.Marshal(badgesOrEmpty(s.Badges))
	if err != nil {
		return fmt.Errorf("failed to marshal badges: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		s.ID, s.Code.String(), s.FullName, s.Grade, s.Section, nullableID(s.AssignedTeacherID),
		s.Metrics.CGPA, s.Metrics.AssignmentCompletionRate, s.Metrics.TestScoreAverage, s.Metrics.AttendanceRate,
		s.Metrics.TotalAbsences, s.Metrics.TardinessCount, s.Metrics.LoginFrequency, s.Metrics.ClassParticipationScore,
		s.Metrics.ChallengeCompletionRate, string(s.Metrics.FeePaymentStatus), s.Metrics.HasScholarship,
		s.Metrics.CurrentStreak, s.Metrics.LongestStreak, int(s.XP), badgesJSON, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := `SELECT` + studentColumns + ` FROM students WHERE id = $1`
	return r.scanStudent(r.conn.QueryRow(ctx, query, id))
}

// GetByCode returns a student by external code.
func (r *StudentRepository) GetByCode(ctx context.Context, code student.Code) (*student.Student, error) {
	query := `SELECT` + studentColumns + ` FROM students WHERE code = $1`
	return r.scanStudent(r.conn.QueryRow(ctx, query, code.String()))
}

// Update updates a student.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			full_name = $1, grade = $2, section = $3, teacher_id = $4,
			cgpa = $5, assignment_completion_rate = $6, test_score_average = $7,
			attendance_rate = $8, total_absences = $9, tardiness_count = $10,
			login_frequency = $11, class_participation_score = $12,
			challenge_completion_rate = $13, fee_payment_status = $14,
			has_scholarship = $15, current_streak = $16, longest_streak = $17,
			xp = $18, badges = $19, updated_at = $20
		WHERE id = $21
	`

	badgesJSON, err := json.Marshal(badgesOrEmpty(s.Badges))
	if err != nil {
		return fmt.Errorf("failed to marshal badges: %w", err)
	}

	result, err := r.conn.Exec(ctx, query,
		s.FullName, s.Grade, s.Section, nullableID(s.AssignedTeacherID),
		s.Metrics.CGPA, s.Metrics.AssignmentCompletionRate, s.Metrics.TestScoreAverage,
		s.Metrics.AttendanceRate, s.Metrics.TotalAbsences, s.Metrics.TardinessCount,
		s.Metrics.LoginFrequency, s.Metrics.ClassParticipationScore,
		s.Metrics.ChallengeCompletionRate, string(s.Metrics.FeePaymentStatus),
		s.Metrics.HasScholarship, s.Metrics.CurrentStreak, s.Metrics.LongestStreak,
		int(s.XP), badgesJSON, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}
	return nil
}

// List returns students matching the options, ordered by code.
func (r *StudentRepository) List(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	query := `SELECT` + studentColumns + ` FROM students WHERE 1=1`
	args := []interface{}{}
	arg := 1

	if opts.Grade != "" {
		query += fmt.Sprintf(" AND grade = $%d", arg)
		args = append(args, opts.Grade)
		arg++
	}
	if opts.TeacherID != "" {
		query += fmt.Sprintf(" AND teacher_id = $%d", arg)
		args = append(args, opts.TeacherID)
		arg++
	}
	query += " ORDER BY code"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", arg)
		args = append(args, opts.Limit)
		arg++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", arg)
		args = append(args, opts.Offset)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var out []*student.Student
	for rows.Next() {
		s, err := r.scanStudentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListIDs returns the IDs of all students.
func (r *StudentRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.conn.Query(ctx, `SELECT id FROM students ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list student IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return n, nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}
	return nil
}

// scanStudent scans a single row into a Student.
func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	return scanStudentFrom(row)
}

func (r *StudentRepository) scanStudentRow(rows pgx.Rows) (*student.Student, error) {
	return scanStudentFrom(rows)
}

func scanStudentFrom(row pgx.Row) (*student.Student, error) {
	var (
		s         student.Student
		code      string
		teacherID *string
		feeStatus string
		xp        int
		badges    []byte
	)

	err := row.Scan(
		&s.ID, &code, &s.FullName, &s.Grade, &s.Section, &teacherID,
		&s.Metrics.CGPA, &s.Metrics.AssignmentCompletionRate, &s.Metrics.TestScoreAverage,
		&s.Metrics.AttendanceRate, &s.Metrics.TotalAbsences, &s.Metrics.TardinessCount,
		&s.Metrics.LoginFrequency, &s.Metrics.ClassParticipationScore,
		&s.Metrics.ChallengeCompletionRate, &feeStatus, &s.Metrics.HasScholarship,
		&s.Metrics.CurrentStreak, &s.Metrics.LongestStreak, &xp, &badges,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.Code = student.Code(code)
	s.Metrics.FeePaymentStatus = risk.FeePaymentStatus(feeStatus)
	s.XP = student.XP(xp)
	if teacherID != nil {
		s.AssignedTeacherID = *teacherID
	}
	if len(badges) > 0 {
		if err := json.Unmarshal(badges, &s.Badges); err != nil {
			return nil, fmt.Errorf("failed to unmarshal badges: %w", err)
		}
	}
	return &s, nil
}

// badgesOrEmpty keeps the JSONB column an array rather than null.
func badgesOrEmpty(badges []string) []string {
	if badges == nil {
		return []string{}
	}
	return badges
}

// nullableID maps an empty string to SQL NULL for foreign keys.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const teacherColumns = `
	id, code, full_name, department, subjects, xp,
	interventions_completed, successful_interventions, created_at, updated_at`

// TeacherRepository implements student.TeacherRepository for PostgreSQL.
type TeacherRepository struct {
	conn *Connection
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(conn *Connection) *TeacherRepository {
	return &TeacherRepository{conn: conn}
}

// Create creates a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, t *student.Teacher) error {
	subjectsJSON, err := json.Marshal(badgesOrEmpty(t.Subjects))
	if err != nil {
		return fmt.Errorf("failed to marshal subjects: %w", err)
	}

	query := `
		INSERT INTO teachers (
			id, code, full_name, department, subjects, xp,
			interventions_completed, successful_interventions, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err = r.conn.Exec(ctx, query,
		t.ID, t.Code.String(), t.FullName, t.Department, subjectsJSON, int(t.XP),
		t.InterventionsCompleted, t.SuccessfulInterventions, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("student", "CreateTeacher", shared.ErrAlreadyExists, "teacher code already taken", err)
		}
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	return nil
}

// GetByID returns a teacher by internal ID.
func (r *TeacherRepository) GetByID(ctx context.Context, id string) (*student.Teacher, error) {
	query := `SELECT` + teacherColumns + ` FROM teachers WHERE id = $1`
	return scanTeacher(r.conn.QueryRow(ctx, query, id))
}

// Update updates a teacher.
func (r *TeacherRepository) Update(ctx context.Context, t *student.Teacher) error {
	subjectsJSON, err := json.Marshal(badgesOrEmpty(t.Subjects))
	if err != nil {
		return fmt.Errorf("failed to marshal subjects: %w", err)
	}

	query := `
		UPDATE teachers SET
			full_name = $1, department = $2, subjects = $3, xp = $4,
			interventions_completed = $5, successful_interventions = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.conn.Exec(ctx, query,
		t.FullName, t.Department, subjectsJSON, int(t.XP),
		t.InterventionsCompleted, t.SuccessfulInterventions, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrTeacherNotFound
	}
	return nil
}

// List returns all teachers ordered by code.
func (r *TeacherRepository) List(ctx context.Context) ([]*student.Teacher, error) {
	query := `SELECT` + teacherColumns + ` FROM teachers ORDER BY code`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	defer rows.Close()

	var out []*student.Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTeacher(row pgx.Row) (*student.Teacher, error) {
	var (
		t        student.Teacher
		code     string
		subjects []byte
		xp       int
	)

	err := row.Scan(
		&t.ID, &code, &t.FullName, &t.Department, &subjects, &xp,
		&t.InterventionsCompleted, &t.SuccessfulInterventions, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to scan teacher: %w", err)
	}

	t.Code = student.Code(code)
	t.XP = student.XP(xp)
	if len(subjects) > 0 {
		if err := json.Unmarshal(subjects, &t.Subjects); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subjects: %w", err)
		}
	}
	return &t, nil
}
