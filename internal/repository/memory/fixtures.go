// internal/repository/memory/fixtures.go
package memory

import (
	"context"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/user"
)

// World is a small populated store: one admin, one center with its user,
// two agents and one active course.
type World struct {
	Admin      *user.User
	CenterUser *user.User
	Center     *catalog.Center
	Agent      *user.User
	OtherAgent *user.User
	Course     *catalog.Course
}

func (w *World) AdminPrincipal() *user.Principal  { return w.Admin.Principal() }
func (w *World) CenterPrincipal() *user.Principal { return w.CenterUser.Principal() }
func (w *World) AgentPrincipal() *user.Principal  { return w.Agent.Principal() }

// Populate fills s with a World. Passwords are not hashed; the fixture is
// for service tests that never log in.
func (s *Store) Populate(ctx context.Context) (*World, error) {
	w := &World{
		Admin:      &user.User{Email: "admin@edman.test", Name: "Admin", Role: user.RoleAdmin},
		CenterUser: &user.User{Email: "center@edman.test", Name: "North Campus", Role: user.RoleCenter},
		Agent:      &user.User{Email: "agent@edman.test", Name: "Agent One", Role: user.RoleAgent},
		OtherAgent: &user.User{Email: "agent2@edman.test", Name: "Agent Two", Role: user.RoleAgent},
	}
	for _, u := range []*user.User{w.Admin, w.CenterUser, w.Agent, w.OtherAgent} {
		if err := s.Users().Create(ctx, u); err != nil {
			return nil, err
		}
	}

	w.Center = &catalog.Center{Name: w.CenterUser.Name, UserID: w.CenterUser.ID}
	if err := s.Centers().CreateWithTx(ctx, nil, w.Center); err != nil {
		return nil, err
	}

	w.Course = &catalog.Course{
		Name:              "Web Development Bootcamp",
		CourseType:        catalog.CourseTypeSkillCourse,
		Fee:               25000,
		CommissionPercent: 10,
		CenterID:          w.Center.ID,
		IsActive:          true,
	}
	if err := s.Courses().Create(ctx, w.Course); err != nil {
		return nil, err
	}
	return w, nil
}
