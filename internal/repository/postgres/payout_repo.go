// internal/repository/postgres/payout_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"edman-service/internal/domain/payout"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type PayoutRepository struct {
	db *pgxpool.Pool
}

func NewPayoutRepository(db *pgxpool.Pool) *PayoutRepository {
	return &PayoutRepository{db: db}
}

const payoutColumns = `p.id, p.agent_id, p.total_amount, p.commission_ids, p.status, p.requested_at,
	p.approved_at, p.paid_at, p.notes, p.created_at, p.updated_at`

// payoutScan scans commission_ids through a plain []string and converts it
// once the row is read.
type payoutScan struct {
	p   *payout.Payout
	ids []string
}

func (s *payoutScan) dest() []any {
	p := s.p
	return []any{
		&p.ID, &p.AgentID, &p.TotalAmount, &s.ids, &p.Status, &p.RequestedAt,
		&p.ApprovedAt, &p.PaidAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (s *payoutScan) finish() {
	s.p.CommissionIDs = pq.StringArray(s.ids)
}

func (r *PayoutRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *payout.Payout) error {
	if p.ID == "" {
		p.ID = newID()
	}
	query := `
		INSERT INTO payouts (id, agent_id, total_amount, commission_ids, status, requested_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		p.ID, p.AgentID, p.TotalAmount, []string(p.CommissionIDs), p.Status, p.RequestedAt, p.Notes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payout: %w", err)
	}
	return nil
}

// FindByIDForUpdate loads a payout and locks its row until tx ends.
func (r *PayoutRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*payout.Payout, error) {
	var p payout.Payout
	ps := payoutScan{p: &p}
	err := tx.QueryRow(ctx, `SELECT `+payoutColumns+` FROM payouts p WHERE p.id = $1 FOR UPDATE`, id).Scan(ps.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock payout: %w", err)
	}
	ps.finish()
	return &p, nil
}

func (r *PayoutRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, p *payout.Payout) error {
	query := `
		UPDATE payouts
		SET status = $2, approved_at = $3, paid_at = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, p.ID, p.Status, p.ApprovedAt, p.PaidAt, p.Notes).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update payout: %w", err)
	}
	return nil
}

const payoutDetailQuery = `
	SELECT ` + payoutColumns + `, u.id, u.name, u.email
	FROM payouts p
	LEFT JOIN users u ON u.id = p.agent_id
`

func scanPayoutDetail(row pgx.Row) (*payout.Detail, error) {
	var (
		d                              payout.Detail
		agentID, agentName, agentEmail *string
	)
	ps := payoutScan{p: &d.Payout}
	if err := row.Scan(append(ps.dest(), &agentID, &agentName, &agentEmail)...); err != nil {
		return nil, err
	}
	ps.finish()
	if agentID != nil {
		d.Agent = &payout.AgentRef{ID: *agentID, Name: deref(agentName), Email: deref(agentEmail)}
	}
	return &d, nil
}

func (r *PayoutRepository) FindByID(ctx context.Context, id string) (*payout.Detail, error) {
	d, err := scanPayoutDetail(r.db.QueryRow(ctx, payoutDetailQuery+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payout: %w", err)
	}
	return d, nil
}

// List returns payouts by request time, newest first. An empty agentID lists
// everything.
func (r *PayoutRepository) List(ctx context.Context, agentID string) ([]payout.Detail, error) {
	rows, err := r.db.Query(ctx, payoutDetailQuery+` WHERE ($1 = '' OR p.agent_id = $1) ORDER BY p.requested_at DESC`, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	list := []payout.Detail{}
	for rows.Next() {
		d, err := scanPayoutDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

// PendingSummary counts REQUESTED payouts and sums their totals.
func (r *PayoutRepository) PendingSummary(ctx context.Context) (int, float64, error) {
	var n int
	var amount float64
	query := `SELECT COUNT(*), COALESCE(SUM(total_amount), 0)::float8 FROM payouts WHERE status = 'REQUESTED'`
	if err := r.db.QueryRow(ctx, query).Scan(&n, &amount); err != nil {
		return 0, 0, fmt.Errorf("failed to summarise payouts: %w", err)
	}
	return n, amount, nil
}
