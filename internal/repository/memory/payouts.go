// internal/repository/memory/payouts.go
package memory

import (
	"context"
	"sort"

	"edman-service/internal/domain/payout"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type PayoutRepository struct{ s *Store }

func (r *PayoutRepository) CreateWithTx(ctx context.Context, _ pgx.Tx, p *payout.Payout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.data.payouts[p.ID] = *p
	return nil
}

func (r *PayoutRepository) FindByIDForUpdate(ctx context.Context, _ pgx.Tx, id string) (*payout.Payout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.payouts[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &p, nil
}

func (r *PayoutRepository) UpdateWithTx(ctx context.Context, _ pgx.Tx, p *payout.Payout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.payouts[p.ID]
	if !ok {
		return xerrors.ErrNotFound
	}
	cur.Status = p.Status
	cur.ApprovedAt = p.ApprovedAt
	cur.PaidAt = p.PaidAt
	cur.Notes = p.Notes
	cur.UpdatedAt = r.s.now()
	p.UpdatedAt = cur.UpdatedAt
	r.s.data.payouts[p.ID] = cur
	return nil
}

func (r *PayoutRepository) detail(p payout.Payout) payout.Detail {
	d := payout.Detail{Payout: p}
	if u, ok := r.s.data.users[p.AgentID]; ok {
		d.Agent = &payout.AgentRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return d
}

func (r *PayoutRepository) FindByID(ctx context.Context, id string) (*payout.Detail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.payouts[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	d := r.detail(p)
	return &d, nil
}

func (r *PayoutRepository) List(ctx context.Context, agentID string) ([]payout.Detail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []payout.Detail{}
	for _, p := range r.s.data.payouts {
		if agentID == "" || p.AgentID == agentID {
			out = append(out, r.detail(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (r *PayoutRepository) PendingSummary(ctx context.Context) (int, float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int
	var amount float64
	for _, p := range r.s.data.payouts {
		if p.Status == payout.StatusRequested {
			n++
			amount += p.TotalAmount
		}
	}
	return n, amount, nil
}
