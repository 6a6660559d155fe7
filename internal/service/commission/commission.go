// internal/service/commission/commission.go
package commission

import (
	"context"
	"fmt"

	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/user"
	xerrors "edman-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type CommissionStore interface {
	List(ctx context.Context, agentID string) ([]commission.Detail, error)
}

type CommissionService struct {
	commissions CommissionStore
	logger      *zap.Logger
}

func NewCommissionService(commissions CommissionStore, logger *zap.Logger) *CommissionService {
	return &CommissionService{commissions: commissions, logger: logger}
}

// List returns every commission for admins and the caller's own for agents,
// with totals recomputed from the returned rows.
func (s *CommissionService) List(ctx context.Context, p *user.Principal) (*commission.ListResponse, error) {
	var agentID string
	switch {
	case p.IsAdmin():
	case p.IsAgent():
		agentID = p.ID
	default:
		return nil, fmt.Errorf("commissions are visible to admins and agents only: %w", xerrors.ErrUnauthorized)
	}

	list, err := s.commissions.List(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}

	rows := make([]commission.Commission, len(list))
	for i := range list {
		rows[i] = list[i].Commission
	}
	return &commission.ListResponse{Commissions: list, Totals: commission.ComputeTotals(rows)}, nil
}
