// internal/repository/memory/commissions.go
package memory

import (
	"context"
	"sort"
	"time"

	"edman-service/internal/domain/commission"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type CommissionRepository struct{ s *Store }

func (r *CommissionRepository) ExistsForLeadWithTx(ctx context.Context, _ pgx.Tx, leadID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.data.commissions {
		if c.LeadID == leadID {
			return true, nil
		}
	}
	return false, nil
}

func (r *CommissionRepository) CreateWithTx(ctx context.Context, _ pgx.Tx, c *commission.Commission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.commissions {
		if existing.LeadID == c.LeadID {
			return xerrors.ErrDuplicateEntry
		}
	}
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Status == "" {
		c.Status = commission.StatusPending
	}
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.data.commissions[c.ID] = *c
	return nil
}

func (r *CommissionRepository) LockPending(ctx context.Context, _ pgx.Tx, agentID string, ids []string) ([]commission.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []commission.Commission{}
	seen := map[string]bool{}
	for _, id := range ids {
		c, ok := r.s.data.commissions[id]
		if !ok || seen[id] || c.AgentID != agentID || c.Status != commission.StatusPending {
			continue
		}
		seen[id] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CommissionRepository) TransitionWithTx(ctx context.Context, _ pgx.Tx, ids []string, from, to commission.Status, paidAt *time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	seen := map[string]bool{}
	for _, id := range ids {
		c, ok := r.s.data.commissions[id]
		if !ok || seen[id] || c.Status != from {
			continue
		}
		seen[id] = true
		c.Status = to
		c.PaidAt = paidAt
		c.UpdatedAt = r.s.now()
		r.s.data.commissions[id] = c
		n++
	}
	return n, nil
}

func (r *CommissionRepository) FindByIDs(ctx context.Context, ids []string) ([]commission.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []commission.Commission{}
	for _, id := range ids {
		if c, ok := r.s.data.commissions[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CommissionRepository) List(ctx context.Context, agentID string) ([]commission.Detail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []commission.Detail{}
	for _, c := range r.s.data.commissions {
		if agentID != "" && c.AgentID != agentID {
			continue
		}
		d := commission.Detail{Commission: c}
		if l, ok := r.s.data.leads[c.LeadID]; ok {
			d.Lead = &commission.LeadRef{ID: l.ID, StudentName: l.StudentName, Status: string(l.Status)}
			if co, ok := r.s.data.courses[l.CourseID]; ok {
				d.Course = &commission.CourseRef{ID: co.ID, Name: co.Name, Fee: co.Fee}
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CommissionRepository) Totals(ctx context.Context, agentID string) (commission.Totals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []commission.Commission
	for _, c := range r.s.data.commissions {
		if agentID == "" || c.AgentID == agentID {
			list = append(list, c)
		}
	}
	return commission.ComputeTotals(list), nil
}
