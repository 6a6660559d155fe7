// internal/repository/postgres/course_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"edman-service/internal/domain/catalog"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourseRepository struct {
	db *pgxpool.Pool
}

func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `c.id, c.name, c.description, c.course_type, c.fee, c.commission_percent,
	c.center_id, c.is_active, c.created_at, c.updated_at`

func courseDest(c *catalog.Course) []any {
	return []any{
		&c.ID, &c.Name, &c.Description, &c.CourseType, &c.Fee, &c.CommissionPercent,
		&c.CenterID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	}
}

func (r *CourseRepository) Create(ctx context.Context, c *catalog.Course) error {
	if c.ID == "" {
		c.ID = newID()
	}
	query := `
		INSERT INTO courses (id, name, description, course_type, fee, commission_percent, center_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Description, c.CourseType, c.Fee, c.CommissionPercent, c.CenterID, c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*catalog.Course, error) {
	return r.findByID(ctx, r.db, id)
}

func (r *CourseRepository) FindByIDWithTx(ctx context.Context, tx pgx.Tx, id string) (*catalog.Course, error) {
	return r.findByID(ctx, tx, id)
}

func (r *CourseRepository) findByID(ctx context.Context, q querier, id string) (*catalog.Course, error) {
	var c catalog.Course
	err := q.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses c WHERE c.id = $1`, id).Scan(courseDest(&c)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return &c, nil
}

// FindWithCenter returns a course joined with its center.
func (r *CourseRepository) FindWithCenter(ctx context.Context, id string) (*catalog.CourseWithCenter, error) {
	query := `
		SELECT ` + courseColumns + `, ce.id, ce.name
		FROM courses c
		JOIN centers ce ON ce.id = c.center_id
		WHERE c.id = $1
	`
	var cw catalog.CourseWithCenter
	cw.Center = &catalog.CenterRef{}
	err := r.db.QueryRow(ctx, query, id).Scan(append(courseDest(&cw.Course), &cw.Center.ID, &cw.Center.Name)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return &cw, nil
}

// List returns courses with their center, newest first.
func (r *CourseRepository) List(ctx context.Context, f catalog.CourseFilter) ([]catalog.CourseWithCenter, error) {
	query := `
		SELECT ` + courseColumns + `, ce.id, ce.name
		FROM courses c
		JOIN centers ce ON ce.id = c.center_id
		WHERE ($1 = '' OR c.center_id = $1)
		  AND (NOT $2 OR c.is_active)
		ORDER BY c.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, f.CenterID, f.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []catalog.CourseWithCenter{}
	for rows.Next() {
		var cw catalog.CourseWithCenter
		cw.Center = &catalog.CenterRef{}
		if err := rows.Scan(append(courseDest(&cw.Course), &cw.Center.ID, &cw.Center.Name)...); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, cw)
	}
	return courses, rows.Err()
}

func (r *CourseRepository) Update(ctx context.Context, c *catalog.Course) error {
	query := `
		UPDATE courses
		SET name = $2, description = $3, course_type = $4, fee = $5, commission_percent = $6,
		    center_id = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Description, c.CourseType, c.Fee, c.CommissionPercent, c.CenterID, c.IsActive,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("course has leads: %w", xerrors.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return n, nil
}
