// internal/domain/lead/entity.go
package lead

import "time"

type Status string

const (
	StatusNew        Status = "NEW"
	StatusContacted  Status = "CONTACTED"
	StatusInterested Status = "INTERESTED"
	StatusEnrolled   Status = "ENROLLED"
	StatusClosed     Status = "CLOSED"
	StatusLost       Status = "LOST"
)

// Statuses lists every lead status in pipeline order.
var Statuses = []Status{
	StatusNew, StatusContacted, StatusInterested, StatusEnrolled, StatusClosed, StatusLost,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Closes reports whether moving from prev to next is an edge into CLOSED,
// the only edge that settles a commission.
func Closes(prev, next Status) bool {
	return next == StatusClosed && prev != StatusClosed
}

type Lead struct {
	ID           string     `json:"id" db:"id"`
	StudentName  string     `json:"student_name" db:"student_name"`
	Phone        string     `json:"phone" db:"phone"`
	Email        *string    `json:"email,omitempty" db:"email"`
	CourseID     string     `json:"course_id" db:"course_id"`
	AgentID      string     `json:"agent_id" db:"agent_id"`
	CenterID     string     `json:"center_id" db:"center_id"`
	Status       Status     `json:"status" db:"status"`
	Notes        *string    `json:"notes,omitempty" db:"notes"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty" db:"follow_up_date"`
	ClosedAt     *time.Time `json:"closed_at,omitempty" db:"closed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type CourseRef struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Fee               float64 `json:"fee"`
	CommissionPercent float64 `json:"commission_percent"`
}

type AgentRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type CenterRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Detail is a lead joined with the rows it references.
type Detail struct {
	Lead
	Course *CourseRef `json:"course"`
	Agent  *AgentRef  `json:"agent,omitempty"`
	Center *CenterRef `json:"center,omitempty"`
}

// ListFilter narrows lead queries. Empty fields do not filter.
type ListFilter struct {
	AgentID  string
	CenterID string
	Status   Status
}

// FollowUp is a lead whose follow-up is due, with the center user to remind.
type FollowUp struct {
	LeadID       string `json:"lead_id"`
	StudentName  string `json:"student_name"`
	CenterID     string `json:"center_id"`
	CenterUserID string `json:"center_user_id"`
}
