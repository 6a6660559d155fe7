// internal/domain/user/entity.go
package user

import "time"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleAgent  Role = "AGENT"
	RoleCenter Role = "CENTER"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleCenter:
		return true
	}
	return false
}

// SelfRegistrable reports whether r may be chosen at public signup.
func (r Role) SelfRegistrable() bool {
	return r == RoleAgent || r == RoleCenter
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Principal is the identity recovered from a verified session credential.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (p *Principal) IsAdmin() bool  { return p != nil && p.Role == RoleAdmin }
func (p *Principal) IsAgent() bool  { return p != nil && p.Role == RoleAgent }
func (p *Principal) IsCenter() bool { return p != nil && p.Role == RoleCenter }

// Principal returns the session identity for u.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
