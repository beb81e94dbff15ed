package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT REPOSITORY IMPLEMENTATION
// The history is append-only. "Latest per student" reads use
// DISTINCT ON (student_id) over the (student_id, created_at DESC) index.
// ══════════════════════════════════════════════════════════════════════════════

const assessmentColumns = `
	id, student_id, risk_level, risk_score, factors, recommendations,
	predicted_dropout_probability, trend_direction, previous_score, created_at`

// AssessmentRepository implements risk.AssessmentRepository for PostgreSQL.
type AssessmentRepository struct {
	conn *Connection
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(conn *Connection) *AssessmentRepository {
	return &AssessmentRepository{conn: conn}
}

// Create appends a new assessment to the student's history.
func (r *AssessmentRepository) Create(ctx context.Context, a *risk.Assessment) error {
	factorsJSON, err := json.Marshal(a.Factors)
	if err != nil {
		return fmt.Errorf("failed to marshal factors: %w", err)
	}
	recsJSON, err := json.Marshal(recommendationsOrEmpty(a.Recommendations))
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	query := `
		INSERT INTO risk_assessments (
			id, student_id, risk_level, risk_score, factors, recommendations,
			predicted_dropout_probability, trend_direction, previous_score, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err = r.conn.Exec(ctx, query,
		a.ID, a.StudentID, string(a.RiskLevel), a.RiskScore, factorsJSON, recsJSON,
		a.PredictedDropoutProbability, string(a.TrendDirection), a.PreviousScore, a.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrStudentNotFound
		}
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

// LatestForStudent returns the most recent assessment for a student.
func (r *AssessmentRepository) LatestForStudent(ctx context.Context, studentID string) (*risk.Assessment, error) {
	query := `SELECT` + assessmentColumns + `
		FROM risk_assessments
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	return scanAssessment(r.conn.QueryRow(ctx, query, studentID))
}

// HistoryForStudent returns up to limit assessments, most recent first.
func (r *AssessmentRepository) HistoryForStudent(ctx context.Context, studentID string, limit int) ([]*risk.Assessment, error) {
	if limit <= 0 {
		limit = risk.DefaultHistoryLimit
	}

	query := `SELECT` + assessmentColumns + `
		FROM risk_assessments
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.conn.Query(ctx, query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return collectAssessments(rows)
}

// ByRiskLevel returns the latest assessment of every student currently
// classified at the given level.
func (r *AssessmentRepository) ByRiskLevel(ctx context.Context, level risk.RiskLevel) ([]*risk.Assessment, error) {
	query := `
		SELECT ` + assessmentColumns + ` FROM (
			SELECT DISTINCT ON (student_id) ` + assessmentColumns + `
			FROM risk_assessments
			ORDER BY student_id, created_at DESC
		) latest
		WHERE risk_level = $1
		ORDER BY risk_score DESC`

	rows, err := r.conn.Query(ctx, query, string(level))
	if err != nil {
		return nil, fmt.Errorf("failed to query by risk level: %w", err)
	}
	defer rows.Close()

	return collectAssessments(rows)
}

// CountByLevel returns how many students currently sit at each level.
func (r *AssessmentRepository) CountByLevel(ctx context.Context) (map[risk.RiskLevel]int, error) {
	query := `
		SELECT risk_level, COUNT(*) FROM (
			SELECT DISTINCT ON (student_id) student_id, risk_level
			FROM risk_assessments
			ORDER BY student_id, created_at DESC
		) latest
		GROUP BY risk_level`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count by level: %w", err)
	}
	defer rows.Close()

	counts := make(map[risk.RiskLevel]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		counts[risk.RiskLevel(level)] = n
	}
	return counts, rows.Err()
}

// DeleteAllForStudent wipes a student's assessment history.
func (r *AssessmentRepository) DeleteAllForStudent(ctx context.Context, studentID string) (int, error) {
	result, err := r.conn.Exec(ctx, `DELETE FROM risk_assessments WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete assessments: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func collectAssessments(rows pgx.Rows) ([]*risk.Assessment, error) {
	var out []*risk.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssessment(row pgx.Row) (*risk.Assessment, error) {
	var (
		a       risk.Assessment
		level   string
		trend   string
		factors []byte
		recs    []byte
	)

	err := row.Scan(
		&a.ID, &a.StudentID, &level, &a.RiskScore, &factors, &recs,
		&a.PredictedDropoutProbability, &trend, &a.PreviousScore, &a.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}

	a.RiskLevel = risk.RiskLevel(level)
	a.TrendDirection = risk.Trend(trend)
	if err := json.Unmarshal(factors, &a.Factors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal factors: %w", err)
	}
	if len(recs) > 0 {
		if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
		}
	}
	return &a, nil
}

func recommendationsOrEmpty(recs []string) []string {
	if recs == nil {
		return []string{}
	}
	return recs
}
