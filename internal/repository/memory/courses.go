// internal/repository/memory/courses.go
package memory

import (
	"context"
	"fmt"
	"sort"

	"edman-service/internal/domain/catalog"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type CourseRepository struct{ s *Store }

func (r *CourseRepository) Create(ctx context.Context, c *catalog.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.data.courses[c.ID] = *c
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*catalog.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.courses[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &c, nil
}

func (r *CourseRepository) FindByIDWithTx(ctx context.Context, _ pgx.Tx, id string) (*catalog.Course, error) {
	return r.FindByID(ctx, id)
}

func (r *CourseRepository) withCenter(c catalog.Course) catalog.CourseWithCenter {
	cw := catalog.CourseWithCenter{Course: c}
	if ce, ok := r.s.data.centers[c.CenterID]; ok {
		cw.Center = &catalog.CenterRef{ID: ce.ID, Name: ce.Name}
	}
	return cw
}

func (r *CourseRepository) FindWithCenter(ctx context.Context, id string) (*catalog.CourseWithCenter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.courses[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cw := r.withCenter(c)
	return &cw, nil
}

func (r *CourseRepository) List(ctx context.Context, f catalog.CourseFilter) ([]catalog.CourseWithCenter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []catalog.CourseWithCenter{}
	for _, c := range r.s.data.courses {
		if f.CenterID != "" && c.CenterID != f.CenterID {
			continue
		}
		if f.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, r.withCenter(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CourseRepository) Update(ctx context.Context, c *catalog.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.courses[c.ID]; !ok {
		return xerrors.ErrNotFound
	}
	c.UpdatedAt = r.s.now()
	r.s.data.courses[c.ID] = *c
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.courses[id]; !ok {
		return xerrors.ErrNotFound
	}
	for _, l := range r.s.data.leads {
		if l.CourseID == id {
			return fmt.Errorf("course has leads: %w", xerrors.ErrInvalidInput)
		}
	}
	delete(r.s.data.courses, id)
	return nil
}

func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.data.courses), nil
}
