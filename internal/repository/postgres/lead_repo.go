// internal/repository/postgres/lead_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edman-service/internal/domain/lead"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	db *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `l.id, l.student_name, l.phone, l.email, l.course_id, l.agent_id, l.center_id,
	l.status, l.notes, l.follow_up_date, l.closed_at, l.created_at, l.updated_at`

func leadDest(l *lead.Lead) []any {
	return []any{
		&l.ID, &l.StudentName, &l.Phone, &l.Email, &l.CourseID, &l.AgentID, &l.CenterID,
		&l.Status, &l.Notes, &l.FollowUpDate, &l.ClosedAt, &l.CreatedAt, &l.UpdatedAt,
	}
}

// ========== Writes ==========

func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	if l.ID == "" {
		l.ID = newID()
	}
	if l.Status == "" {
		l.Status = lead.StatusNew
	}
	query := `
		INSERT INTO leads (id, student_name, phone, email, course_id, agent_id, center_id, status, notes, follow_up_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		l.ID, l.StudentName, l.Phone, l.Email, l.CourseID, l.AgentID, l.CenterID, l.Status, l.Notes, l.FollowUpDate,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// FindByIDForUpdate loads a lead and locks its row until tx ends.
func (r *LeadRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*lead.Lead, error) {
	var l lead.Lead
	err := tx.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads l WHERE l.id = $1 FOR UPDATE`, id).Scan(leadDest(&l)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock lead: %w", err)
	}
	return &l, nil
}

// UpdateWithTx writes the mutable fields of a lead.
func (r *LeadRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, l *lead.Lead) error {
	query := `
		UPDATE leads
		SET status = $2, notes = $3, follow_up_date = $4, closed_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, l.ID, l.Status, l.Notes, l.FollowUpDate, l.ClosedAt).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return nil
}

// ========== Reads ==========

const leadDetailQuery = `
	SELECT ` + leadColumns + `,
	       co.id, co.name, co.fee, co.commission_percent,
	       u.id, u.name, u.email, u.phone,
	       ce.id, ce.name
	FROM leads l
	LEFT JOIN courses co ON co.id = l.course_id
	LEFT JOIN users u ON u.id = l.agent_id
	LEFT JOIN centers ce ON ce.id = l.center_id
`

func scanLeadDetail(row pgx.Row) (*lead.Detail, error) {
	var (
		d                              lead.Detail
		courseID, courseName           *string
		courseFee, coursePercent       *float64
		agentID, agentName, agentEmail *string
		agentPhone                     *string
		centerID, centerName           *string
	)
	dest := append(leadDest(&d.Lead),
		&courseID, &courseName, &courseFee, &coursePercent,
		&agentID, &agentName, &agentEmail, &agentPhone,
		&centerID, &centerName,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if courseID != nil {
		d.Course = &lead.CourseRef{ID: *courseID, Name: deref(courseName), Fee: derefFloat(courseFee), CommissionPercent: derefFloat(coursePercent)}
	}
	if agentID != nil {
		d.Agent = &lead.AgentRef{ID: *agentID, Name: deref(agentName), Email: deref(agentEmail), Phone: agentPhone}
	}
	if centerID != nil {
		d.Center = &lead.CenterRef{ID: *centerID, Name: deref(centerName)}
	}
	return &d, nil
}

// FindDetail returns a lead joined with its course, agent and center.
func (r *LeadRepository) FindDetail(ctx context.Context, id string) (*lead.Detail, error) {
	d, err := scanLeadDetail(r.db.QueryRow(ctx, leadDetailQuery+` WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lead: %w", err)
	}
	return d, nil
}

// List returns leads newest first. Empty filter fields match everything.
func (r *LeadRepository) List(ctx context.Context, f lead.ListFilter) ([]lead.Detail, error) {
	query := leadDetailQuery + `
		WHERE ($1 = '' OR l.agent_id = $1)
		  AND ($2 = '' OR l.center_id = $2)
		  AND ($3 = '' OR l.status = $3)
		ORDER BY l.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, f.AgentID, f.CenterID, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := []lead.Detail{}
	for rows.Next() {
		d, err := scanLeadDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *d)
	}
	return leads, rows.Err()
}

// ========== Stats ==========

// CountByStatus counts leads per status within the filter.
func (r *LeadRepository) CountByStatus(ctx context.Context, f lead.ListFilter) (map[lead.Status]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM leads
		WHERE ($1 = '' OR agent_id = $1)
		  AND ($2 = '' OR center_id = $2)
		GROUP BY status
	`
	rows, err := r.db.Query(ctx, query, f.AgentID, f.CenterID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	defer rows.Close()

	counts := make(map[lead.Status]int)
	for rows.Next() {
		var s lead.Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, fmt.Errorf("failed to scan lead count: %w", err)
		}
		counts[s] = n
	}
	return counts, rows.Err()
}

// CountFollowUps counts a center's leads with a follow-up in [from, to).
func (r *LeadRepository) CountFollowUps(ctx context.Context, centerID string, from, to time.Time) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM leads WHERE center_id = $1 AND follow_up_date >= $2 AND follow_up_date < $3`
	if err := r.db.QueryRow(ctx, query, centerID, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count follow-ups: %w", err)
	}
	return n, nil
}

// DueFollowUps lists open leads with a follow-up in [from, to), with the
// user that owns each lead's center.
func (r *LeadRepository) DueFollowUps(ctx context.Context, from, to time.Time) ([]lead.FollowUp, error) {
	query := `
		SELECT l.id, l.student_name, l.center_id, ce.user_id
		FROM leads l
		JOIN centers ce ON ce.id = l.center_id
		WHERE l.follow_up_date >= $1 AND l.follow_up_date < $2
		  AND l.status NOT IN ('CLOSED', 'LOST')
		ORDER BY l.center_id, l.follow_up_date
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due follow-ups: %w", err)
	}
	defer rows.Close()

	var due []lead.FollowUp
	for rows.Next() {
		var f lead.FollowUp
		if err := rows.Scan(&f.LeadID, &f.StudentName, &f.CenterID, &f.CenterUserID); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		due = append(due, f)
	}
	return due, rows.Err()
}

// ClosedRevenue sums the course fees of closed leads.
func (r *LeadRepository) ClosedRevenue(ctx context.Context) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(co.fee), 0)::float8
		FROM leads l
		JOIN courses co ON co.id = l.course_id
		WHERE l.status = 'CLOSED'
	`
	if err := r.db.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}
