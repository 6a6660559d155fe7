// internal/repository/memory/leads.go
package memory

import (
	"context"
	"sort"
	"time"

	"edman-service/internal/domain/lead"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type LeadRepository struct{ s *Store }

func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = newID()
	}
	if l.Status == "" {
		l.Status = lead.StatusNew
	}
	l.CreatedAt = r.s.now()
	l.UpdatedAt = l.CreatedAt
	r.s.data.leads[l.ID] = *l
	return nil
}

func (r *LeadRepository) FindByIDForUpdate(ctx context.Context, _ pgx.Tx, id string) (*lead.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.data.leads[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &l, nil
}

func (r *LeadRepository) UpdateWithTx(ctx context.Context, _ pgx.Tx, l *lead.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.leads[l.ID]
	if !ok {
		return xerrors.ErrNotFound
	}
	cur.Status = l.Status
	cur.Notes = l.Notes
	cur.FollowUpDate = l.FollowUpDate
	cur.ClosedAt = l.ClosedAt
	cur.UpdatedAt = r.s.now()
	l.UpdatedAt = cur.UpdatedAt
	r.s.data.leads[l.ID] = cur
	return nil
}

func (r *LeadRepository) detail(l lead.Lead) lead.Detail {
	d := lead.Detail{Lead: l}
	if c, ok := r.s.data.courses[l.CourseID]; ok {
		d.Course = &lead.CourseRef{ID: c.ID, Name: c.Name, Fee: c.Fee, CommissionPercent: c.CommissionPercent}
	}
	if u, ok := r.s.data.users[l.AgentID]; ok {
		d.Agent = &lead.AgentRef{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
	}
	if ce, ok := r.s.data.centers[l.CenterID]; ok {
		d.Center = &lead.CenterRef{ID: ce.ID, Name: ce.Name}
	}
	return d
}

func (r *LeadRepository) FindDetail(ctx context.Context, id string) (*lead.Detail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.data.leads[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	d := r.detail(l)
	return &d, nil
}

func matches(l lead.Lead, f lead.ListFilter) bool {
	return (f.AgentID == "" || l.AgentID == f.AgentID) &&
		(f.CenterID == "" || l.CenterID == f.CenterID) &&
		(f.Status == "" || l.Status == f.Status)
}

func (r *LeadRepository) List(ctx context.Context, f lead.ListFilter) ([]lead.Detail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []lead.Detail{}
	for _, l := range r.s.data.leads {
		if matches(l, f) {
			out = append(out, r.detail(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *LeadRepository) CountByStatus(ctx context.Context, f lead.ListFilter) (map[lead.Status]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.Status = ""
	counts := make(map[lead.Status]int)
	for _, l := range r.s.data.leads {
		if matches(l, f) {
			counts[l.Status]++
		}
	}
	return counts, nil
}

func inWindow(t *time.Time, from, to time.Time) bool {
	return t != nil && !t.Before(from) && t.Before(to)
}

func (r *LeadRepository) CountFollowUps(ctx context.Context, centerID string, from, to time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, l := range r.s.data.leads {
		if l.CenterID == centerID && inWindow(l.FollowUpDate, from, to) {
			n++
		}
	}
	return n, nil
}

func (r *LeadRepository) DueFollowUps(ctx context.Context, from, to time.Time) ([]lead.FollowUp, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var due []lead.FollowUp
	for _, l := range r.s.data.leads {
		if l.Status == lead.StatusClosed || l.Status == lead.StatusLost || !inWindow(l.FollowUpDate, from, to) {
			continue
		}
		f := lead.FollowUp{LeadID: l.ID, StudentName: l.StudentName, CenterID: l.CenterID}
		if ce, ok := r.s.data.centers[l.CenterID]; ok {
			f.CenterUserID = ce.UserID
		}
		due = append(due, f)
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].CenterID != due[j].CenterID {
			return due[i].CenterID < due[j].CenterID
		}
		return due[i].LeadID < due[j].LeadID
	})
	return due, nil
}

func (r *LeadRepository) ClosedRevenue(ctx context.Context) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total float64
	for _, l := range r.s.data.leads {
		if l.Status != lead.StatusClosed {
			continue
		}
		if c, ok := r.s.data.courses[l.CourseID]; ok {
			total += c.Fee
		}
	}
	return total, nil
}
