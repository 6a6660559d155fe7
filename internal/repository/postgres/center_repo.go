// internal/repository/postgres/center_repo.go
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

type CenterRepository struct {
	db *pgxpool.Pool
}

func NewCenterRepository(db *pgxpool.Pool) *CenterRepository {
	return &CenterRepository{db: db}
}

const centerColumns = `id, name, address, contact_person, phone, email, user_id, created_at, updated_at`

func scanCenter(row pgx.Row) (*catalog.Center, error) {
	var c catalog.Center
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.ContactPerson, &c.Phone, &c.Email, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CenterRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, c *catalog.Center) error {
	if c.ID == "" {
		c.ID = newID()
	}
	query := `
		INSERT INTO centers (id, name, address, contact_person, phone, email, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := tx.QueryRow(ctx, query, c.ID, c.Name, c.Address, c.ContactPerson, c.Phone, c.Email, c.UserID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create center: %w", err)
	}
	return nil
}

func (r *CenterRepository) FindByID(ctx context.Context, id string) (*catalog.Center, error) {
	c, err := scanCenter(r.db.QueryRow(ctx, `SELECT `+centerColumns+` FROM centers WHERE id = $1`, id))
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find center: %w", err)
	}
	return c, err
}

// FindByUserID returns the center owned by a CENTER user.
func (r *CenterRepository) FindByUserID(ctx context.Context, userID string) (*catalog.Center, error) {
	c, err := scanCenter(r.db.QueryRow(ctx, `SELECT `+centerColumns+` FROM centers WHERE user_id = $1`, userID))
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find center by user: %w", err)
	}
	return c, err
}

func (r *CenterRepository) List(ctx context.Context) ([]catalog.Center, error) {
	rows, err := r.db.Query(ctx, `SELECT `+centerColumns+` FROM centers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	defer rows.Close()

	centers := []catalog.Center{}
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan center: %w", err)
		}
		centers = append(centers, *c)
	}
	return centers, rows.Err()
}

func (r *CenterRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, c *catalog.Center) error {
	query := `
		UPDATE centers
		SET name = $2, address = $3, contact_person = $4, phone = $5, email = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, c.ID, c.Name, c.Address, c.ContactPerson, c.Phone, c.Email).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update center: %w", err)
	}
	return nil
}

func (r *CenterRepository) DeleteByUserIDWithTx(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx, `DELETE FROM centers WHERE user_id = $1`, userID)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("center has leads: %w", xerrors.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("failed to delete center: %w", err)
	}
	return nil
}

func (r *CenterRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM centers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count centers: %w", err)
	}
	return n, nil
}
