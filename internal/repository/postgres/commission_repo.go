// internal/repository/postgres/commission_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"edman-service/internal/domain/commission"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommissionRepository struct {
	db *pgxpool.Pool
}

func NewCommissionRepository(db *pgxpool.Pool) *CommissionRepository {
	return &CommissionRepository{db: db}
}

const commissionColumns = `cm.id, cm.lead_id, cm.agent_id, cm.amount, cm.status, cm.paid_at, cm.created_at, cm.updated_at`

func commissionDest(c *commission.Commission) []any {
	return []any{&c.ID, &c.LeadID, &c.AgentID, &c.Amount, &c.Status, &c.PaidAt, &c.CreatedAt, &c.UpdatedAt}
}

func collectCommissions(rows pgx.Rows) ([]commission.Commission, error) {
	defer rows.Close()
	list := []commission.Commission{}
	for rows.Next() {
		var c commission.Commission
		if err := rows.Scan(commissionDest(&c)...); err != nil {
			return nil, fmt.Errorf("failed to scan commission: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ========== Lifecycle ==========

func (r *CommissionRepository) ExistsForLeadWithTx(ctx context.Context, tx pgx.Tx, leadID string) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM commissions WHERE lead_id = $1)`, leadID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check commission: %w", err)
	}
	return exists, nil
}

func (r *CommissionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, c *commission.Commission) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Status == "" {
		c.Status = commission.StatusPending
	}
	query := `
		INSERT INTO commissions (id, lead_id, agent_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := tx.QueryRow(ctx, query, c.ID, c.LeadID, c.AgentID, c.Amount, c.Status).Scan(&c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create commission: %w", err)
	}
	return nil
}

// ========== Payout support ==========

// LockPending locks the agent's PENDING commissions among ids. Ids that are
// not pending or belong to someone else are silently absent from the result.
func (r *CommissionRepository) LockPending(ctx context.Context, tx pgx.Tx, agentID string, ids []string) ([]commission.Commission, error) {
	query := `
		SELECT ` + commissionColumns + `
		FROM commissions cm
		WHERE cm.id = ANY($1) AND cm.agent_id = $2 AND cm.status = 'PENDING'
		ORDER BY cm.id
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, ids, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock commissions: %w", err)
	}
	return collectCommissions(rows)
}

// TransitionWithTx moves the commissions in ids that are currently in from
// to status to, and returns how many rows changed. paidAt is written as
// given.
func (r *CommissionRepository) TransitionWithTx(ctx context.Context, tx pgx.Tx, ids []string, from, to commission.Status, paidAt *time.Time) (int64, error) {
	query := `
		UPDATE commissions
		SET status = $3, paid_at = $4, updated_at = NOW()
		WHERE id = ANY($1) AND status = $2
	`
	tag, err := tx.Exec(ctx, query, ids, from, to, paidAt)
	if err != nil {
		return 0, fmt.Errorf("failed to update commissions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CommissionRepository) FindByIDs(ctx context.Context, ids []string) ([]commission.Commission, error) {
	rows, err := r.db.Query(ctx, `SELECT `+commissionColumns+` FROM commissions cm WHERE cm.id = ANY($1) ORDER BY cm.created_at DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find commissions: %w", err)
	}
	return collectCommissions(rows)
}

// ========== Reads ==========

// List returns commissions newest first with their lead and course. An empty
// agentID lists everything.
func (r *CommissionRepository) List(ctx context.Context, agentID string) ([]commission.Detail, error) {
	query := `
		SELECT ` + commissionColumns + `,
		       l.id, l.student_name, l.status,
		       co.id, co.name, co.fee
		FROM commissions cm
		LEFT JOIN leads l ON l.id = cm.lead_id
		LEFT JOIN courses co ON co.id = l.course_id
		WHERE ($1 = '' OR cm.agent_id = $1)
		ORDER BY cm.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}
	defer rows.Close()

	list := []commission.Detail{}
	for rows.Next() {
		var (
			d                               commission.Detail
			leadID, studentName, leadStatus *string
			courseID, courseName            *string
			courseFee                       *float64
		)
		dest := append(commissionDest(&d.Commission),
			&leadID, &studentName, &leadStatus,
			&courseID, &courseName, &courseFee,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan commission: %w", err)
		}
		// A missing lead or course leaves its ref nil; the row still counts.
		if leadID != nil {
			d.Lead = &commission.LeadRef{ID: *leadID, StudentName: deref(studentName), Status: deref(leadStatus)}
		}
		if courseID != nil {
			d.Course = &commission.CourseRef{ID: *courseID, Name: deref(courseName), Fee: derefFloat(courseFee)}
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Totals sums commission amounts by status. An empty agentID sums everything.
func (r *CommissionRepository) Totals(ctx context.Context, agentID string) (commission.Totals, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)::float8,
		       COALESCE(SUM(amount) FILTER (WHERE status = 'PENDING'), 0)::float8,
		       COALESCE(SUM(amount) FILTER (WHERE status = 'APPROVED'), 0)::float8,
		       COALESCE(SUM(amount) FILTER (WHERE status = 'PAID'), 0)::float8
		FROM commissions
		WHERE ($1 = '' OR agent_id = $1)
	`
	var t commission.Totals
	if err := r.db.QueryRow(ctx, query, agentID).Scan(&t.Total, &t.Pending, &t.Approved, &t.Paid); err != nil {
		return t, fmt.Errorf("failed to sum commissions: %w", err)
	}
	return t, nil
}
