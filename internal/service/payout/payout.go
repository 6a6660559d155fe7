// internal/service/payout/payout.go
package payout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/payout"
	"edman-service/internal/domain/user"
	wstypes "edman-service/internal/domain/websocket"
	xerrors "edman-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type CommissionStore interface {
	LockPending(ctx context.Context, tx pgx.Tx, agentID string, ids []string) ([]commission.Commission, error)
	TransitionWithTx(ctx context.Context, tx pgx.Tx, ids []string, from, to commission.Status, paidAt *time.Time) (int64, error)
	FindByIDs(ctx context.Context, ids []string) ([]commission.Commission, error)
}

type PayoutStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, p *payout.Payout) error
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*payout.Payout, error)
	UpdateWithTx(ctx context.Context, tx pgx.Tx, p *payout.Payout) error
	FindByID(ctx context.Context, id string) (*payout.Detail, error)
	List(ctx context.Context, agentID string) ([]payout.Detail, error)
}

type Notifier interface {
	NotifyUser(userID string, event wstypes.EventType, data interface{})
	NotifyRole(role user.Role, event wstypes.EventType, data interface{})
}

type PayoutService struct {
	db          TxBeginner
	payouts     PayoutStore
	commissions CommissionStore
	notifier    Notifier
	logger      *zap.Logger
}

func NewPayoutService(db TxBeginner, payouts PayoutStore, commissions CommissionStore, notifier Notifier, logger *zap.Logger) *PayoutService {
	return &PayoutService{
		db:          db,
		payouts:     payouts,
		commissions: commissions,
		notifier:    notifier,
		logger:      logger,
	}
}

// ========== Request ==========

// Request batches the agent's PENDING commissions into a payout. Either every
// id is the agent's and PENDING and all of them move to APPROVED, or nothing
// changes.
func (s *PayoutService) Request(ctx context.Context, p *user.Principal, req *payout.RequestPayoutRequest) (*payout.Payout, error) {
	if !p.IsAgent() {
		return nil, fmt.Errorf("only agents can request payouts: %w", xerrors.ErrUnauthorized)
	}
	if len(req.CommissionIDs) == 0 {
		return nil, fmt.Errorf("at least one commission is required: %w", xerrors.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(req.CommissionIDs))
	for _, id := range req.CommissionIDs {
		if seen[id] {
			return nil, fmt.Errorf("commission %s listed twice: %w", id, xerrors.ErrInvalidSelection)
		}
		seen[id] = true
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.commissions.LockPending(ctx, tx, p.ID, req.CommissionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock commissions: %w", err)
	}
	if len(locked) != len(req.CommissionIDs) {
		return nil, fmt.Errorf("some commissions are not pending or not yours: %w", xerrors.ErrInvalidSelection)
	}

	var total float64
	for _, c := range locked {
		total += c.Amount
	}

	po := &payout.Payout{
		AgentID:       p.ID,
		TotalAmount:   total,
		CommissionIDs: pq.StringArray(req.CommissionIDs),
		Status:        payout.StatusRequested,
		RequestedAt:   time.Now().UTC(),
	}
	if err := s.payouts.CreateWithTx(ctx, tx, po); err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	n, err := s.commissions.TransitionWithTx(ctx, tx, req.CommissionIDs, commission.StatusPending, commission.StatusApproved, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to approve commissions: %w", err)
	}
	if n != int64(len(req.CommissionIDs)) {
		return nil, fmt.Errorf("commissions changed during request: %w", xerrors.ErrInvalidSelection)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payout request: %w", err)
	}

	s.logger.Info("payout requested",
		zap.String("payout_id", po.ID),
		zap.String("agent_id", po.AgentID),
		zap.Int("commissions", len(po.CommissionIDs)),
		zap.Float64("total_amount", po.TotalAmount),
	)
	s.notifier.NotifyRole(user.RoleAdmin, wstypes.EventPayoutRequested, payoutData(po))
	return po, nil
}

// ========== Resolve ==========

// Resolve applies an admin decision. REJECT returns the commissions to
// PENDING and MARK_PAID pays them. PAID and REJECTED payouts are final.
func (s *PayoutService) Resolve(ctx context.Context, p *user.Principal, id string, req *payout.ResolveRequest) (*payout.Payout, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("only admins can resolve payouts: %w", xerrors.ErrUnauthorized)
	}
	if !req.Action.Valid() {
		return nil, fmt.Errorf("unknown action %q: %w", req.Action, xerrors.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	po, err := s.payouts.FindByIDForUpdate(ctx, tx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("payout not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payout: %w", err)
	}
	if !payout.CanApply(po.Status, req.Action) {
		return nil, fmt.Errorf("cannot %s a %s payout: %w", req.Action, po.Status, xerrors.ErrInvalidStatus)
	}

	now := time.Now().UTC()
	ids := []string(po.CommissionIDs)
	switch req.Action {
	case payout.ActionApprove:
		po.ApprovedAt = &now
	case payout.ActionReject:
		if _, err := s.commissions.TransitionWithTx(ctx, tx, ids, commission.StatusApproved, commission.StatusPending, nil); err != nil {
			return nil, fmt.Errorf("failed to release commissions: %w", err)
		}
	case payout.ActionMarkPaid:
		po.PaidAt = &now
		if _, err := s.commissions.TransitionWithTx(ctx, tx, ids, commission.StatusApproved, commission.StatusPaid, &now); err != nil {
			return nil, fmt.Errorf("failed to pay commissions: %w", err)
		}
	}
	po.Status = req.Action.Target()
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		po.Notes = &notes
	}

	if err := s.payouts.UpdateWithTx(ctx, tx, po); err != nil {
		return nil, fmt.Errorf("failed to update payout: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payout resolution: %w", err)
	}

	s.logger.Info("payout resolved",
		zap.String("payout_id", po.ID),
		zap.String("action", string(req.Action)),
		zap.String("status", string(po.Status)),
		zap.String("admin_id", p.ID),
	)
	s.notifier.NotifyUser(po.AgentID, wstypes.EventPayoutResolved, payoutData(po))
	return po, nil
}

// ========== Queries ==========

func (s *PayoutService) List(ctx context.Context, p *user.Principal) ([]payout.Detail, error) {
	var agentID string
	switch {
	case p.IsAdmin():
	case p.IsAgent():
		agentID = p.ID
	default:
		return nil, fmt.Errorf("payouts are visible to admins and agents only: %w", xerrors.ErrUnauthorized)
	}

	list, err := s.payouts.List(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return list, nil
}

// Get returns a payout with the commissions it batches. Agents may only read
// their own.
func (s *PayoutService) Get(ctx context.Context, p *user.Principal, id string) (*payout.View, error) {
	if !p.IsAdmin() && !p.IsAgent() {
		return nil, fmt.Errorf("payouts are visible to admins and agents only: %w", xerrors.ErrUnauthorized)
	}

	d, err := s.payouts.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("payout not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payout: %w", err)
	}
	if p.IsAgent() && d.AgentID != p.ID {
		return nil, fmt.Errorf("not allowed to view this payout: %w", xerrors.ErrUnauthorized)
	}

	commissions, err := s.commissions.FindByIDs(ctx, d.CommissionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load payout commissions: %w", err)
	}
	return &payout.View{Detail: *d, Commissions: commissions}, nil
}

func payoutData(po *payout.Payout) wstypes.PayoutData {
	data := wstypes.PayoutData{
		PayoutID:    po.ID,
		AgentID:     po.AgentID,
		TotalAmount: po.TotalAmount,
		Status:      string(po.Status),
	}
	if po.Notes != nil {
		data.Notes = *po.Notes
	}
	return data
}
