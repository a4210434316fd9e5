package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/splitsmart/internal/database"
	"github.com/fkhayef/splitsmart/internal/ledger"
	"github.com/fkhayef/splitsmart/internal/money"
)

// Repository handles group, membership and debt persistence
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new group repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new group and its initial members in the given order
func (r *Repository) Create(ctx context.Context, g *Group) error {
	query := `
		INSERT INTO groups (id, name, created_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, g.ID, g.Name, g.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	for _, m := range g.Members {
		if err := r.insertMember(ctx, g.ID, m.Email, m.Position); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) insertMember(ctx context.Context, groupID, email string, position int) error {
	query := `
		INSERT INTO group_members (group_id, user_email, position)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, groupID, email, position); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// GetByID retrieves a group with its members
func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	return r.getBy(ctx, "id", id)
}

// Exists reports whether a group with the given id is stored
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group: %w", err)
	}
	return exists, nil
}

// GetByName retrieves a group with its members by its unique name
func (r *Repository) GetByName(ctx context.Context, name string) (*Group, error) {
	return r.getBy(ctx, "name", name)
}

func (r *Repository) getBy(ctx context.Context, column, value string) (*Group, error) {
	query := `
		SELECT id, name, created_at
		FROM groups
		WHERE ` + column + ` = $1
	`

	var (
		group   Group
		created int64
	)
	err := r.db.QueryRowContext(ctx, query, value).Scan(&group.ID, &group.Name, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.CreatedAt = time.Unix(created, 0)

	members, err := r.GetMembers(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return &group, nil
}

// List retrieves groups ordered by name. A limit <= 0 returns all groups.
// Members are not populated.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Group, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT id, name, created_at
		FROM groups
		ORDER BY name
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []*Group{}
	for rows.Next() {
		var (
			group   Group
			created int64
		)
		if err := rows.Scan(&group.ID, &group.Name, &created); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		group.CreatedAt = time.Unix(created, 0)
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, total, nil
}

// AddMember appends a user to the end of the group's member list
func (r *Repository) AddMember(ctx context.Context, groupID, email string) error {
	var next int
	query := `SELECT COALESCE(MAX(position) + 1, 0) FROM group_members WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, query, groupID).Scan(&next); err != nil {
		return fmt.Errorf("failed to get next member position: %w", err)
	}

	return r.insertMember(ctx, groupID, email, next)
}

// GetMembers retrieves the members of a group in membership order
func (r *Repository) GetMembers(ctx context.Context, groupID string) ([]*Member, error) {
	query := `
		SELECT gm.user_email, u.name, gm.position
		FROM group_members gm
		JOIN users u ON u.email = gm.user_email
		WHERE gm.group_id = $1
		ORDER BY gm.position
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := []*Member{}
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.Email, &m.Name, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// ListDebts retrieves the stored debts of a group
func (r *Repository) ListDebts(ctx context.Context, groupID string) ([]ledger.Debt, error) {
	query := `
		SELECT debtor, creditor, amount_cents
		FROM debts
		WHERE group_id = $1
		ORDER BY debtor, creditor
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	debts := []ledger.Debt{}
	for rows.Next() {
		var (
			d     ledger.Debt
			cents int64
		)
		if err := rows.Scan(&d.Debtor, &d.Creditor, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		d.Amount = money.Amount(cents)
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}

	return debts, nil
}

// ReplaceDebts swaps the group's stored debt set for debts
func (r *Repository) ReplaceDebts(ctx context.Context, groupID string, debts []ledger.Debt) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM debts WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("failed to clear debts: %w", err)
	}

	query := `
		INSERT INTO debts (group_id, debtor, creditor, amount_cents)
		VALUES ($1, $2, $3, $4)
	`
	for _, d := range debts {
		if _, err := r.db.ExecContext(ctx, query, groupID, d.Debtor, d.Creditor, d.Amount.Cents()); err != nil {
			return fmt.Errorf("failed to store debt: %w", err)
		}
	}

	return nil
}
