// internal/domain/payout/dto.go
package payout

import "edman-service/internal/domain/commission"

type RequestPayoutRequest struct {
	CommissionIDs []string `json:"commission_ids" binding:"required"`
}

type ResolveRequest struct {
	Action Action `json:"action" binding:"required"`
	Notes  string `json:"notes"`
}

// View is a single payout together with the commissions it batches.
type View struct {
	Detail
	Commissions []commission.Commission `json:"commissions"`
}
