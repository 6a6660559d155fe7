// internal/domain/lead/dto.go
package lead

import "time"

type CreateLeadRequest struct {
	StudentName string `json:"student_name" binding:"required,max=255"`
	Phone       string `json:"phone" binding:"required,max=32"`
	Email       string `json:"email" binding:"omitempty,email,max=255"`
	CourseID    string `json:"course_id" binding:"required"`
	Notes       string `json:"notes"`
}

type PublicLeadRequest struct {
	StudentName string `json:"student_name" binding:"required,max=255"`
	Phone       string `json:"phone" binding:"required,max=32"`
	Email       string `json:"email" binding:"omitempty,email,max=255"`
	CourseID    string `json:"course_id" binding:"required"`
	AgentID     string `json:"agent_id" binding:"required"`
	Notes       string `json:"notes"`
}

type PublicLeadResponse struct {
	ID          string `json:"id"`
	StudentName string `json:"student_name"`
	Course      string `json:"course"`
}

// TransitionRequest is the body of a lead update. Nil fields are left as is.
type TransitionRequest struct {
	Status       *Status    `json:"status" binding:"omitempty,leadstatus"`
	Notes        *string    `json:"notes"`
	FollowUpDate *time.Time `json:"follow_up_date"`
}

type ListQuery struct {
	Status Status `form:"status" binding:"omitempty,leadstatus"`
}

// TransitionResult reports what a lead update did.
type TransitionResult struct {
	Lead              *Lead   `json:"lead"`
	CommissionID      *string `json:"commission_id,omitempty"`
	CommissionCreated bool    `json:"commission_created"`
}
