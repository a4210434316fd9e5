package expense

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/splitsmart/internal/database"
	"github.com/fkhayef/splitsmart/internal/expense/split"
	"github.com/fkhayef/splitsmart/internal/money"
)

// Repository handles expense and share persistence
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new expense repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

// Create appends an expense to its group's history, assigning the next sequence number
func (r *Repository) Create(ctx context.Context, e *Expense) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("failed to encode split details: %w", err)
	}

	seqQuery := `SELECT COALESCE(MAX(seq) + 1, 0) FROM expenses WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, seqQuery, e.GroupID).Scan(&e.Seq); err != nil {
		return fmt.Errorf("failed to get next expense sequence: %w", err)
	}

	query := `
		INSERT INTO expenses (id, group_id, seq, description, amount_cents, payer_email, policy, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.GroupID,
		e.Seq,
		e.Description,
		e.Amount.Cents(),
		e.Payer,
		e.SplitType,
		string(details),
		e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	shareQuery := `
		INSERT INTO expense_participants (expense_id, user_email, position, share_cents)
		VALUES ($1, $2, $3, $4)
	`
	owed := e.Shares.Map()
	for i, p := range e.Participants {
		if _, err := r.db.ExecContext(ctx, shareQuery, e.ID, p, i, owed[p].Cents()); err != nil {
			return fmt.Errorf("failed to store share: %w", err)
		}
	}

	return nil
}

const selectExpense = `
	SELECT id, group_id, seq, description, amount_cents, payer_email, policy, details, created_at
	FROM expenses
`

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*Expense, error) {
	var (
		e       Expense
		cents   int64
		details string
		created int64
	)
	if err := row.Scan(&e.ID, &e.GroupID, &e.Seq, &e.Description, &cents, &e.Payer, &e.SplitType, &details, &created); err != nil {
		return nil, err
	}
	e.Amount = money.Amount(cents)
	e.CreatedAt = time.Unix(created, 0)
	if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
		return nil, fmt.Errorf("failed to decode split details of expense %s: %w", e.ID, err)
	}
	return &e, nil
}

// GetByID retrieves an expense with its shares
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, selectExpense+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := r.loadShares(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByGroupID retrieves a group's expenses in recording order, with shares.
// A limit <= 0 returns the whole history.
func (r *Repository) ListByGroupID(ctx context.Context, groupID string, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := selectExpense + ` WHERE group_id = $1 ORDER BY seq`
	args := []any{groupID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := []*Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	// shares are loaded after the cursor is released; SQLite runs on one connection
	rows.Close()

	for _, e := range expenses {
		if err := r.loadShares(ctx, e); err != nil {
			return nil, 0, err
		}
	}

	return expenses, total, nil
}

func (r *Repository) loadShares(ctx context.Context, e *Expense) error {
	query := `
		SELECT user_email, share_cents
		FROM expense_participants
		WHERE expense_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, e.ID)
	if err != nil {
		return fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	e.Participants, e.Shares = nil, nil
	for rows.Next() {
		var (
			participant string
			cents       int64
		)
		if err := rows.Scan(&participant, &cents); err != nil {
			return fmt.Errorf("failed to scan share: %w", err)
		}
		e.Participants = append(e.Participants, participant)
		e.Shares = append(e.Shares, split.Share{Participant: participant, Amount: money.Amount(cents)})
	}
	return rows.Err()
}
