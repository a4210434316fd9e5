package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/splitsmart/internal/database"
)

// Repository handles user data persistence
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (email, name, created_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, u.Email, u.Name, u.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by their normalized email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT email, name, created_at
		FROM users
		WHERE email = $1
	`

	var (
		user    User
		created int64
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.Email, &user.Name, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	user.CreatedAt = time.Unix(created, 0)

	return &user, nil
}

// List retrieves users ordered by email with pagination. A limit <= 0 returns all users.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM users`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `
		SELECT email, name, created_at
		FROM users
		ORDER BY email
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		var (
			user    User
			created int64
		)
		if err := rows.Scan(&user.Email, &user.Name, &created); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		user.CreatedAt = time.Unix(created, 0)
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}
