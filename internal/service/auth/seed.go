// internal/service/auth/seed.go
package auth

import (
	"context"
	"fmt"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/user"

	"go.uber.org/zap"
)

const (
	SeedAdminEmail  = "admin@edman.com"
	SeedCenterEmail = "center@edman.com"
	SeedAgentEmail  = "agent@edman.com"
	SeedCenterName  = "Main Training Center"
)

// EnsureSeedData creates the demo accounts, center and courses when no admin
// exists yet (called on startup).
func (s *AuthService) EnsureSeedData(ctx context.Context, password string) error {
	admins, err := s.users.CountByRole(ctx, user.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check admin existence: %w", err)
	}
	if admins > 0 {
		s.logger.Info("admin already exists, skipping seed")
		return nil
	}
	if password == "" {
		return fmt.Errorf("seed password must be provided")
	}

	s.logger.Info("seeding initial data", zap.String("admin_email", SeedAdminEmail))

	if _, err := s.CreateAccount(ctx, SeedAdminEmail, password, "Admin", user.RoleAdmin, ""); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	centerUser, err := s.CreateAccount(ctx, SeedCenterEmail, password, SeedCenterName, user.RoleCenter, "")
	if err != nil {
		return fmt.Errorf("failed to seed center user: %w", err)
	}
	if _, err := s.CreateAccount(ctx, SeedAgentEmail, password, "Demo Agent", user.RoleAgent, ""); err != nil {
		return fmt.Errorf("failed to seed agent: %w", err)
	}

	center, err := s.centers.FindByUserID(ctx, centerUser.ID)
	if err != nil {
		return fmt.Errorf("failed to load seeded center: %w", err)
	}

	courses := []catalog.Course{
		{
			Name:              "Web Development Bootcamp",
			Description:       "Full-stack web development with modern frameworks",
			CourseType:        catalog.CourseTypeSkillCourse,
			Fee:               25000,
			CommissionPercent: 10,
		},
		{
			Name:              "Data Science Fundamentals",
			Description:       "Statistics, Python and machine learning basics",
			CourseType:        catalog.CourseTypeOnlineDegree,
			Fee:               35000,
			CommissionPercent: 10,
		},
		{
			Name:              "Digital Marketing Mastery",
			Description:       "SEO, social media and paid advertising",
			CourseType:        catalog.CourseTypeVocational,
			Fee:               15000,
			CommissionPercent: 15,
		},
	}
	for i := range courses {
		c := &courses[i]
		c.CenterID = center.ID
		c.IsActive = true
		if err := s.courses.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to seed course %q: %w", c.Name, err)
		}
	}

	s.logger.Info("seed data created",
		zap.String("center_id", center.ID),
		zap.Int("courses", len(courses)),
	)
	return nil
}
