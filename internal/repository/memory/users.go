// internal/repository/memory/users.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/user"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.s.data.users {
		if existing.Email == u.Email {
			return xerrors.ErrDuplicateEntry
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *UserRepository) CreateWithTx(ctx context.Context, _ pgx.Tx, u *user.User) error {
	return r.Create(ctx, u)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *UserRepository) List(ctx context.Context, role user.Role) ([]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []user.User{}
	for _, u := range r.s.data.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) UpdateWithTx(ctx context.Context, _ pgx.Tx, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[u.ID]; !ok {
		return xerrors.ErrNotFound
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.s.data.users {
		if existing.ID != u.ID && existing.Email == u.Email {
			return xerrors.ErrDuplicateEntry
		}
	}
	u.UpdatedAt = r.s.now()
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *UserRepository) DeleteWithTx(ctx context.Context, _ pgx.Tx, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[id]; !ok {
		return xerrors.ErrNotFound
	}
	if r.s.referencesAgent(id) {
		return fmt.Errorf("user has leads, commissions or payouts: %w", xerrors.ErrInvalidInput)
	}
	delete(r.s.data.users, id)
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role user.Role) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, u := range r.s.data.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// referencesAgent reports whether any ledger row points at the user. Callers
// hold s.mu.
func (s *Store) referencesAgent(id string) bool {
	for _, l := range s.data.leads {
		if l.AgentID == id {
			return true
		}
	}
	for _, c := range s.data.commissions {
		if c.AgentID == id {
			return true
		}
	}
	for _, p := range s.data.payouts {
		if p.AgentID == id {
			return true
		}
	}
	return false
}

type CenterRepository struct{ s *Store }

func (r *CenterRepository) CreateWithTx(ctx context.Context, _ pgx.Tx, c *catalog.Center) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.centers {
		if existing.UserID == c.UserID {
			return xerrors.ErrDuplicateEntry
		}
	}
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.data.centers[c.ID] = *c
	return nil
}

func (r *CenterRepository) FindByID(ctx context.Context, id string) (*catalog.Center, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.centers[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &c, nil
}

func (r *CenterRepository) FindByUserID(ctx context.Context, userID string) (*catalog.Center, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.data.centers {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *CenterRepository) List(ctx context.Context) ([]catalog.Center, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []catalog.Center{}
	for _, c := range r.s.data.centers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CenterRepository) UpdateWithTx(ctx context.Context, _ pgx.Tx, c *catalog.Center) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.centers[c.ID]; !ok {
		return xerrors.ErrNotFound
	}
	c.UpdatedAt = r.s.now()
	r.s.data.centers[c.ID] = *c
	return nil
}

func (r *CenterRepository) DeleteByUserIDWithTx(ctx context.Context, _ pgx.Tx, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.data.centers {
		if c.UserID != userID {
			continue
		}
		for _, l := range r.s.data.leads {
			if l.CenterID == id {
				return fmt.Errorf("center has leads: %w", xerrors.ErrInvalidInput)
			}
		}
		for courseID, co := range r.s.data.courses {
			if co.CenterID == id {
				delete(r.s.data.courses, courseID)
			}
		}
		delete(r.s.data.centers, id)
	}
	return nil
}

func (r *CenterRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.data.centers), nil
}
