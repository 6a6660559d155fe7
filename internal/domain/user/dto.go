// internal/domain/user/dto.go
package user

import "time"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,max=255"`
	Role     Role   `json:"role" binding:"required"`
	Phone    string `json:"phone" binding:"max=32"`
}

type LoginRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Role  Role    `json:"role"`
	Phone *string `json:"phone,omitempty"`
}

// Info strips u down to the fields that are safe to return.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Phone: u.Phone}
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,max=255"`
	Role     Role   `json:"role" binding:"required"`
	Phone    string `json:"phone" binding:"max=32"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
	Role     *Role   `json:"role"`
	Password *string `json:"password"`
}

type ListFilters struct {
	Role Role `form:"role"`
}
