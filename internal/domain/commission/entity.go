// internal/domain/commission/entity.go
package commission

import (
	"math"
	"time"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusPaid     Status = "PAID"
)

// Commission is the agent's earning for one closed lead. Amount is fixed
// when the row is created.
type Commission struct {
	ID        string     `json:"id" db:"id"`
	LeadID    string     `json:"lead_id" db:"lead_id"`
	AgentID   string     `json:"agent_id" db:"agent_id"`
	Amount    float64    `json:"amount" db:"amount"`
	Status    Status     `json:"status" db:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type LeadRef struct {
	ID          string `json:"id"`
	StudentName string `json:"student_name"`
	Status      string `json:"status"`
}

type CourseRef struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Fee  float64 `json:"fee"`
}

type Detail struct {
	Commission
	Lead   *LeadRef   `json:"lead"`
	Course *CourseRef `json:"course"`
}

type Totals struct {
	Total    float64 `json:"total"`
	Pending  float64 `json:"pending"`
	Approved float64 `json:"approved"`
	Paid     float64 `json:"paid"`
}

// ComputeTotals sums amounts overall and per status.
func ComputeTotals(list []Commission) Totals {
	var t Totals
	for _, c := range list {
		t.Total += c.Amount
		switch c.Status {
		case StatusPending:
			t.Pending += c.Amount
		case StatusApproved:
			t.Approved += c.Amount
		case StatusPaid:
			t.Paid += c.Amount
		}
	}
	return t
}

// Amount is fee * percent / 100, rounded to cents.
func Amount(fee, percent float64) float64 {
	return math.Round(fee*percent) / 100
}

type ListResponse struct {
	Commissions []Detail `json:"commissions"`
	Totals      Totals   `json:"totals"`
}
