// internal/domain/dashboard/entity.go
package dashboard

// LeadCounts is the number of leads per status within a scope.
type LeadCounts struct {
	Total      int `json:"total_leads"`
	New        int `json:"new_leads"`
	Contacted  int `json:"contacted_leads"`
	Interested int `json:"interested_leads"`
	Enrolled   int `json:"enrolled_leads"`
	Closed     int `json:"closed_leads"`
	Lost       int `json:"lost_leads"`
}

// ConversionRate is (enrolled + closed) / total as a percentage.
func (c LeadCounts) ConversionRate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Enrolled+c.Closed) / float64(c.Total) * 100
}

type AgentStats struct {
	LeadCounts
	TotalEarnings   float64 `json:"total_earnings"`
	PendingEarnings float64 `json:"pending_earnings"`
	PaidEarnings    float64 `json:"paid_earnings"`
}

type CenterStats struct {
	LeadCounts
	ConversionRate float64 `json:"conversion_rate"`
	TodayFollowUps int     `json:"today_follow_ups"`
}

type AdminStats struct {
	TotalLeads          int     `json:"total_leads"`
	TotalAgents         int     `json:"total_agents"`
	TotalCenters        int     `json:"total_centers"`
	TotalCourses        int     `json:"total_courses"`
	TotalRevenue        float64 `json:"total_revenue"`
	TotalCommissions    float64 `json:"total_commissions"`
	PendingPayouts      int     `json:"pending_payouts"`
	PendingPayoutAmount float64 `json:"pending_payout_amount"`
	ConversionRate      float64 `json:"conversion_rate"`
}

// Stats is the role-dependent payload of the dashboard endpoint. Exactly one
// of the pointers is set.
type Stats struct {
	Role   string       `json:"role"`
	Agent  *AgentStats  `json:"agent,omitempty"`
	Center *CenterStats `json:"center,omitempty"`
	Admin  *AdminStats  `json:"admin,omitempty"`
}
