package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edupulse/student-risk-hub/internal/infrastructure/auth"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const accountColumns = `
	id, email, full_name, role, teacher_id, password_hash, created_at`

// AccountRepository implements auth.AccountRepository for PostgreSQL.
type AccountRepository struct {
	conn *Connection
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(conn *Connection) *AccountRepository {
	return &AccountRepository{conn: conn}
}

// Create persists a new account.
func (r *AccountRepository) Create(ctx context.Context, a *auth.Account) error {
	query := `
		INSERT INTO accounts (id, email, full_name, role, teacher_id, password_hash, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.conn.Exec(ctx, query,
		a.ID, a.Email, a.FullName, string(a.Role), nullableID(a.TeacherID), a.PasswordHash, a.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return auth.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByEmail returns an account by email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.conn.QueryRow(ctx, query, email))
}

// GetByID returns an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*auth.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.conn.QueryRow(ctx, query, id))
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		a         auth.Account
		role      string
		teacherID *string
	)

	err := row.Scan(&a.ID, &a.Email, &a.FullName, &role, &teacherID, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	a.Role = auth.Role(role)
	if teacherID != nil {
		a.TeacherID = *teacherID
	}
	return &a, nil
}
