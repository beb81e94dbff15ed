package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edupulse/student-risk-hub/internal/domain/intervention"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// INTERVENTION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const interventionColumns = `
	id, student_id, teacher_id, type, status, priority, description,
	initial_risk_score, final_risk_score, effectiveness,
	created_at, updated_at, completed_at`

// InterventionRepository implements intervention.Repository for PostgreSQL.
type InterventionRepository struct {
	conn *Connection
}

// NewInterventionRepository creates a new InterventionRepository.
func NewInterventionRepository(conn *Connection) *InterventionRepository {
	return &InterventionRepository{conn: conn}
}

// Create persists a new intervention.
func (r *InterventionRepository) Create(ctx context.Context, i *intervention.Intervention) error {
	query := `
		INSERT INTO interventions (
			id, student_id, teacher_id, type, status, priority, description,
			initial_risk_score, final_risk_score, effectiveness,
			created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	_, err := r.conn.Exec(ctx, query,
		i.ID, i.StudentID, nullableID(i.TeacherID), string(i.Type), string(i.Status),
		string(i.Priority), i.Description, i.InitialRiskScore, i.FinalRiskScore,
		i.Effectiveness, i.CreatedAt, i.UpdatedAt, i.CompletedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrStudentNotFound
		}
		return fmt.Errorf("failed to create intervention: %w", err)
	}
	return nil
}

// GetByID returns an intervention by ID.
func (r *InterventionRepository) GetByID(ctx context.Context, id string) (*intervention.Intervention, error) {
	query := `SELECT` + interventionColumns + ` FROM interventions WHERE id = $1`
	return scanIntervention(r.conn.QueryRow(ctx, query, id))
}

// Update persists lifecycle changes.
func (r *InterventionRepository) Update(ctx context.Context, i *intervention.Intervention) error {
	query := `
		UPDATE interventions SET
			status = $1, priority = $2, description = $3,
			final_risk_score = $4, effectiveness = $5,
			updated_at = $6, completed_at = $7
		WHERE id = $8
	`
	result, err := r.conn.Exec(ctx, query,
		string(i.Status), string(i.Priority), i.Description,
		i.FinalRiskScore, i.Effectiveness, i.UpdatedAt, i.CompletedAt, i.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update intervention: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrInterventionNotFound
	}
	return nil
}

// ByStudent returns all interventions for a student, newest first.
func (r *InterventionRepository) ByStudent(ctx context.Context, studentID string) ([]*intervention.Intervention, error) {
	query := `SELECT` + interventionColumns + `
		FROM interventions WHERE student_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, studentID)
}

// OpenByStudent returns pending and in-progress interventions for a student.
func (r *InterventionRepository) OpenByStudent(ctx context.Context, studentID string) ([]*intervention.Intervention, error) {
	query := `SELECT` + interventionColumns + `
		FROM interventions
		WHERE student_id = $1 AND status IN ('pending', 'in_progress')
		ORDER BY created_at DESC`
	return r.queryMany(ctx, query, studentID)
}

// ByTeacher returns all interventions opened by a teacher, newest first.
func (r *InterventionRepository) ByTeacher(ctx context.Context, teacherID string) ([]*intervention.Intervention, error) {
	query := `SELECT` + interventionColumns + `
		FROM interventions WHERE teacher_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, teacherID)
}

// AverageEffectiveness returns the mean effectiveness of completed
// interventions, optionally filtered by type.
func (r *InterventionRepository) AverageEffectiveness(ctx context.Context, typ intervention.Type) (float64, error) {
	query := `SELECT COALESCE(AVG(effectiveness), 0) FROM interventions WHERE effectiveness IS NOT NULL`
	args := []interface{}{}
	if typ != "" {
		query += ` AND type = $1`
		args = append(args, string(typ))
	}

	var avg float64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average effectiveness: %w", err)
	}
	return avg, nil
}

func (r *InterventionRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*intervention.Intervention, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interventions: %w", err)
	}
	defer rows.Close()

	var out []*intervention.Intervention
	for rows.Next() {
		i, err := scanIntervention(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func scanIntervention(row pgx.Row) (*intervention.Intervention, error) {
	var (
		i         intervention.Intervention
		teacherID *string
		typ       string
		status    string
		priority  string
	)

	err := row.Scan(
		&i.ID, &i.StudentID, &teacherID, &typ, &status, &priority, &i.Description,
		&i.InitialRiskScore, &i.FinalRiskScore, &i.Effectiveness,
		&i.CreatedAt, &i.UpdatedAt, &i.CompletedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrInterventionNotFound
		}
		return nil, fmt.Errorf("failed to scan intervention: %w", err)
	}

	if teacherID != nil {
		i.TeacherID = *teacherID
	}
	i.Type = intervention.Type(typ)
	i.Status = intervention.Status(status)
	i.Priority = intervention.Priority(priority)
	return &i, nil
}
