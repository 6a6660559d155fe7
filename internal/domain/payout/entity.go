// internal/domain/payout/entity.go
package payout

import (
	"time"

	"github.com/lib/pq"
)

type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusApproved  Status = "APPROVED"
	StatusPaid      Status = "PAID"
	StatusRejected  Status = "REJECTED"
)

func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusRejected
}

type Action string

const (
	ActionApprove  Action = "APPROVE"
	ActionReject   Action = "REJECT"
	ActionMarkPaid Action = "MARK_PAID"
)

func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionMarkPaid:
		return true
	}
	return false
}

// Target is the payout status an action leads to.
func (a Action) Target() Status {
	switch a {
	case ActionApprove:
		return StatusApproved
	case ActionReject:
		return StatusRejected
	case ActionMarkPaid:
		return StatusPaid
	}
	return ""
}

var transitions = map[Status][]Status{
	StatusRequested: {StatusApproved, StatusRejected, StatusPaid},
	StatusApproved:  {StatusRejected, StatusPaid},
}

// CanApply reports whether action a is allowed on a payout in status s.
func CanApply(s Status, a Action) bool {
	target := a.Target()
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

type Payout struct {
	ID            string         `json:"id" db:"id"`
	AgentID       string         `json:"agent_id" db:"agent_id"`
	TotalAmount   float64        `json:"total_amount" db:"total_amount"`
	CommissionIDs pq.StringArray `json:"commission_ids" db:"commission_ids"`
	Status        Status         `json:"status" db:"status"`
	RequestedAt   time.Time      `json:"requested_at" db:"requested_at"`
	ApprovedAt    *time.Time     `json:"approved_at,omitempty" db:"approved_at"`
	PaidAt        *time.Time     `json:"paid_at,omitempty" db:"paid_at"`
	Notes         *string        `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

type AgentRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Detail struct {
	Payout
	Agent *AgentRef `json:"agent"`
}
