// internal/service/lead/lead.go
package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/lead"
	"edman-service/internal/domain/user"
	wstypes "edman-service/internal/domain/websocket"
	xerrors "edman-service/internal/pkg/errors"
	"edman-service/internal/service/access"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type LeadStore interface {
	Create(ctx context.Context, l *lead.Lead) error
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*lead.Lead, error)
	UpdateWithTx(ctx context.Context, tx pgx.Tx, l *lead.Lead) error
	FindDetail(ctx context.Context, id string) (*lead.Detail, error)
	List(ctx context.Context, f lead.ListFilter) ([]lead.Detail, error)
}

type CourseStore interface {
	FindByID(ctx context.Context, id string) (*catalog.Course, error)
	FindByIDWithTx(ctx context.Context, tx pgx.Tx, id string) (*catalog.Course, error)
}

type CommissionStore interface {
	ExistsForLeadWithTx(ctx context.Context, tx pgx.Tx, leadID string) (bool, error)
	CreateWithTx(ctx context.Context, tx pgx.Tx, c *commission.Commission) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Scoper interface {
	Resolve(ctx context.Context, p *user.Principal) (access.Scope, error)
}

// Notifier pushes realtime events. Delivery is best effort.
type Notifier interface {
	NotifyUser(userID string, event wstypes.EventType, data interface{})
}

type LeadService struct {
	db          TxBeginner
	leads       LeadStore
	courses     CourseStore
	commissions CommissionStore
	users       UserFinder
	scoper      Scoper
	notifier    Notifier
	logger      *zap.Logger
}

func NewLeadService(
	db TxBeginner,
	leads LeadStore,
	courses CourseStore,
	commissions CommissionStore,
	users UserFinder,
	scoper Scoper,
	notifier Notifier,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		db:          db,
		leads:       leads,
		courses:     courses,
		commissions: commissions,
		users:       users,
		scoper:      scoper,
		notifier:    notifier,
		logger:      logger,
	}
}

// ========== Creation ==========

// Create records a lead for the calling agent. The lead inherits the
// course's center.
func (s *LeadService) Create(ctx context.Context, p *user.Principal, req *lead.CreateLeadRequest) (*lead.Lead, error) {
	if !p.IsAgent() {
		return nil, fmt.Errorf("only agents can create leads: %w", xerrors.ErrUnauthorized)
	}
	if strings.TrimSpace(req.StudentName) == "" || strings.TrimSpace(req.Phone) == "" || req.CourseID == "" {
		return nil, fmt.Errorf("student name, phone and course are required: %w", xerrors.ErrInvalidInput)
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("invalid course: %w", xerrors.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	l := newLead(req.StudentName, req.Phone, req.Email, req.Notes, course, p.ID)
	if err := s.leads.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.logger.Info("lead created",
		zap.String("lead_id", l.ID),
		zap.String("agent_id", l.AgentID),
		zap.String("course_id", l.CourseID),
	)
	return l, nil
}

// SubmitPublic records a lead from an agent's referral link. No session is
// involved; the agent and course are taken from the request.
func (s *LeadService) SubmitPublic(ctx context.Context, req *lead.PublicLeadRequest) (*lead.PublicLeadResponse, error) {
	agent, err := s.users.FindByID(ctx, req.AgentID)
	if errors.Is(err, xerrors.ErrNotFound) || (err == nil && agent.Role != user.RoleAgent) {
		return nil, fmt.Errorf("invalid agent: %w", xerrors.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if errors.Is(err, xerrors.ErrNotFound) || (err == nil && !course.IsActive) {
		return nil, fmt.Errorf("invalid or inactive course: %w", xerrors.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	l := newLead(req.StudentName, req.Phone, req.Email, req.Notes, course, agent.ID)
	if err := s.leads.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.logger.Info("public lead submitted",
		zap.String("lead_id", l.ID),
		zap.String("agent_id", l.AgentID),
		zap.String("course_id", l.CourseID),
	)
	return &lead.PublicLeadResponse{ID: l.ID, StudentName: l.StudentName, Course: course.Name}, nil
}

func newLead(name, phone, email, notes string, course *catalog.Course, agentID string) *lead.Lead {
	return &lead.Lead{
		StudentName: strings.TrimSpace(name),
		Phone:       strings.TrimSpace(phone),
		Email:       optional(email),
		CourseID:    course.ID,
		AgentID:     agentID,
		CenterID:    course.CenterID,
		Status:      lead.StatusNew,
		Notes:       optional(notes),
	}
}

// ========== Transition ==========

// Transition updates a lead's status, notes and follow-up date. Moving a lead
// into CLOSED creates its commission, at most once per lead. The lead row is
// locked for the whole read-modify-write.
func (s *LeadService) Transition(ctx context.Context, p *user.Principal, leadID string, req *lead.TransitionRequest) (*lead.TransitionResult, error) {
	if p == nil || p.IsAgent() {
		return nil, fmt.Errorf("agents cannot update leads: %w", xerrors.ErrUnauthorized)
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("unknown lead status %q: %w", *req.Status, xerrors.ErrInvalidStatus)
	}

	scope, err := s.scoper.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if scope.Empty {
		return nil, fmt.Errorf("no center linked to this account: %w", xerrors.ErrUnauthorized)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	l, err := s.leads.FindByIDForUpdate(ctx, tx, leadID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("lead not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}
	if !scope.CanSeeLead(l) {
		return nil, fmt.Errorf("lead belongs to another center: %w", xerrors.ErrUnauthorized)
	}

	prev := l.Status
	if req.Status != nil {
		l.Status = *req.Status
	}
	if req.Notes != nil {
		notes := *req.Notes
		l.Notes = &notes
	}
	if req.FollowUpDate != nil {
		due := *req.FollowUpDate
		l.FollowUpDate = &due
	}

	result := &lead.TransitionResult{Lead: l}
	var created *commission.Commission

	if lead.Closes(prev, l.Status) {
		now := time.Now().UTC()
		l.ClosedAt = &now

		created, err = s.createCommission(ctx, tx, l)
		if err != nil {
			return nil, err
		}
		if created != nil {
			result.CommissionID = &created.ID
			result.CommissionCreated = true
		}
	}

	if err := s.leads.UpdateWithTx(ctx, tx, l); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit lead update: %w", err)
	}

	s.logger.Info("lead status updated",
		zap.String("lead_id", l.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(l.Status)),
		zap.String("by", p.ID),
	)

	if prev != l.Status {
		s.notifier.NotifyUser(l.AgentID, wstypes.EventLeadStatusChanged, wstypes.LeadStatusChangedData{
			LeadID:      l.ID,
			StudentName: l.StudentName,
			From:        string(prev),
			To:          string(l.Status),
		})
	}
	if created != nil {
		s.logger.Info("commission created",
			zap.String("commission_id", created.ID),
			zap.String("lead_id", l.ID),
			zap.String("agent_id", created.AgentID),
			zap.Float64("amount", created.Amount),
		)
		s.notifier.NotifyUser(created.AgentID, wstypes.EventCommissionCreated, wstypes.CommissionCreatedData{
			CommissionID: created.ID,
			LeadID:       l.ID,
			Amount:       created.Amount,
		})
	}
	return result, nil
}

// createCommission inserts the commission for a lead entering CLOSED. A lead
// that was closed before, reopened and closed again keeps its first
// commission and nil is returned.
func (s *LeadService) createCommission(ctx context.Context, tx pgx.Tx, l *lead.Lead) (*commission.Commission, error) {
	exists, err := s.commissions.ExistsForLeadWithTx(ctx, tx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check commission: %w", err)
	}
	if exists {
		return nil, nil
	}

	course, err := s.courses.FindByIDWithTx(ctx, tx, l.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course for commission: %w", err)
	}

	c := &commission.Commission{
		LeadID:  l.ID,
		AgentID: l.AgentID,
		Amount:  commission.Amount(course.Fee, course.CommissionPercent),
		Status:  commission.StatusPending,
	}
	if err := s.commissions.CreateWithTx(ctx, tx, c); err != nil {
		return nil, fmt.Errorf("failed to create commission: %w", err)
	}
	return c, nil
}

// ========== Queries ==========

func (s *LeadService) Get(ctx context.Context, p *user.Principal, id string) (*lead.Detail, error) {
	scope, err := s.scoper.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	d, err := s.leads.FindDetail(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("lead not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}
	if !scope.CanSeeLead(&d.Lead) {
		return nil, fmt.Errorf("not allowed to view this lead: %w", xerrors.ErrUnauthorized)
	}
	return d, nil
}

// List returns the leads in the caller's scope, newest first.
func (s *LeadService) List(ctx context.Context, p *user.Principal, q *lead.ListQuery) ([]lead.Detail, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("unknown lead status %q: %w", q.Status, xerrors.ErrInvalidStatus)
	}

	scope, err := s.scoper.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if scope.Empty {
		return []lead.Detail{}, nil
	}

	f := scope.LeadFilter()
	f.Status = q.Status
	leads, err := s.leads.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
