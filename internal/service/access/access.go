// internal/service/access/access.go
package access

import (
	"context"
	"errors"
	"fmt"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/lead"
	"edman-service/internal/domain/user"
	xerrors "edman-service/internal/pkg/errors"
)

type CenterFinder interface {
	FindByUserID(ctx context.Context, userID string) (*catalog.Center, error)
}

// Scope is the slice of data a caller may see.
type Scope struct {
	Role     user.Role
	UserID   string
	AgentID  string
	CenterID string
	// Empty is set for a CENTER user without a center row. Such a caller sees
	// nothing, which is not an error.
	Empty bool
}

func (s Scope) IsAdmin() bool  { return s.Role == user.RoleAdmin }
func (s Scope) IsAgent() bool  { return s.Role == user.RoleAgent }
func (s Scope) IsCenter() bool { return s.Role == user.RoleCenter }

// LeadFilter restricts lead queries to the scope.
func (s Scope) LeadFilter() lead.ListFilter {
	return lead.ListFilter{AgentID: s.AgentID, CenterID: s.CenterID}
}

// CourseFilter restricts course listings. Only admins and centers see
// inactive courses.
func (s Scope) CourseFilter() catalog.CourseFilter {
	switch s.Role {
	case user.RoleAdmin:
		return catalog.CourseFilter{}
	case user.RoleCenter:
		return catalog.CourseFilter{CenterID: s.CenterID}
	}
	return catalog.CourseFilter{ActiveOnly: true}
}

// CanSeeLead reports whether l is inside the scope.
func (s Scope) CanSeeLead(l *lead.Lead) bool {
	switch {
	case s.Empty:
		return false
	case s.IsAdmin():
		return true
	case s.IsAgent():
		return l.AgentID == s.AgentID
	case s.IsCenter():
		return l.CenterID == s.CenterID
	}
	return false
}

type Service struct {
	centers CenterFinder
}

func NewService(centers CenterFinder) *Service {
	return &Service{centers: centers}
}

// Resolve computes the scope of p. A nil principal is anonymous.
func (s *Service) Resolve(ctx context.Context, p *user.Principal) (Scope, error) {
	if p == nil {
		return Scope{}, nil
	}

	scope := Scope{Role: p.Role, UserID: p.ID}
	switch p.Role {
	case user.RoleAdmin:
	case user.RoleAgent:
		scope.AgentID = p.ID
	case user.RoleCenter:
		c, err := s.centers.FindByUserID(ctx, p.ID)
		if errors.Is(err, xerrors.ErrNotFound) {
			scope.Empty = true
			return scope, nil
		}
		if err != nil {
			return Scope{}, fmt.Errorf("failed to resolve center: %w", err)
		}
		scope.CenterID = c.ID
	default:
		return Scope{}, fmt.Errorf("unknown role %q: %w", p.Role, xerrors.ErrForbidden)
	}
	return scope, nil
}
