// internal/service/catalog/catalog.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/user"
	xerrors "edman-service/internal/pkg/errors"
	"edman-service/internal/service/access"

	"go.uber.org/zap"
)

type CourseStore interface {
	Create(ctx context.Context, c *catalog.Course) error
	FindByID(ctx context.Context, id string) (*catalog.Course, error)
	FindWithCenter(ctx context.Context, id string) (*catalog.CourseWithCenter, error)
	List(ctx context.Context, f catalog.CourseFilter) ([]catalog.CourseWithCenter, error)
	Update(ctx context.Context, c *catalog.Course) error
	Delete(ctx context.Context, id string) error
}

type CenterStore interface {
	FindByID(ctx context.Context, id string) (*catalog.Center, error)
	List(ctx context.Context) ([]catalog.Center, error)
}

type Scoper interface {
	Resolve(ctx context.Context, p *user.Principal) (access.Scope, error)
}

type CatalogService struct {
	courses CourseStore
	centers CenterStore
	scoper  Scoper
	logger  *zap.Logger
}

func NewCatalogService(courses CourseStore, centers CenterStore, scoper Scoper, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		courses: courses,
		centers: centers,
		scoper:  scoper,
		logger:  logger,
	}
}

// ========== Courses ==========

// ListCourses returns the courses visible to p. p may be nil for anonymous
// callers, who only see active courses.
func (s *CatalogService) ListCourses(ctx context.Context, p *user.Principal) ([]catalog.CourseWithCenter, error) {
	scope, err := s.scoper.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if scope.Empty {
		return []catalog.CourseWithCenter{}, nil
	}

	courses, err := s.courses.List(ctx, scope.CourseFilter())
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (*catalog.CourseWithCenter, error) {
	c, err := s.courses.FindWithCenter(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("course not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	return c, nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, req *catalog.CreateCourseRequest) (*catalog.CourseWithCenter, error) {
	if err := validatePricing(req.Fee, req.CommissionPercent); err != nil {
		return nil, err
	}
	if err := s.ensureCenter(ctx, req.CenterID); err != nil {
		return nil, err
	}

	c := &catalog.Course{
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		CourseType:        catalog.CourseTypeSkillCourse,
		Fee:               *req.Fee,
		CommissionPercent: *req.CommissionPercent,
		CenterID:          req.CenterID,
		IsActive:          true,
	}
	if req.CourseType != "" {
		c.CourseType = req.CourseType
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.courses.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("course created",
		zap.String("course_id", c.ID),
		zap.String("center_id", c.CenterID),
		zap.Float64("fee", c.Fee),
		zap.Float64("commission_percent", c.CommissionPercent),
	)
	return s.GetCourse(ctx, c.ID)
}

// UpdateCourse applies a partial update. Commissions already created keep
// their amounts.
func (s *CatalogService) UpdateCourse(ctx context.Context, id string, req *catalog.UpdateCourseRequest) (*catalog.CourseWithCenter, error) {
	c, err := s.courses.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("course not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.CourseType != nil {
		if !req.CourseType.Valid() {
			return nil, fmt.Errorf("unknown course type %q: %w", *req.CourseType, xerrors.ErrInvalidInput)
		}
		c.CourseType = *req.CourseType
	}
	if req.Fee != nil {
		c.Fee = *req.Fee
	}
	if req.CommissionPercent != nil {
		c.CommissionPercent = *req.CommissionPercent
	}
	if err := validatePricing(&c.Fee, &c.CommissionPercent); err != nil {
		return nil, err
	}
	if req.CenterID != nil && *req.CenterID != c.CenterID {
		if err := s.ensureCenter(ctx, *req.CenterID); err != nil {
			return nil, err
		}
		c.CenterID = *req.CenterID
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.courses.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info("course updated", zap.String("course_id", c.ID))
	return s.GetCourse(ctx, c.ID)
}

func (s *CatalogService) DeleteCourse(ctx context.Context, id string) error {
	err := s.courses.Delete(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return fmt.Errorf("course not found: %w", xerrors.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

// ========== Centers ==========

func (s *CatalogService) ListCenters(ctx context.Context) ([]catalog.Center, error) {
	centers, err := s.centers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	return centers, nil
}

func (s *CatalogService) ensureCenter(ctx context.Context, id string) error {
	_, err := s.centers.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return fmt.Errorf("center not found: %w", xerrors.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("failed to load center: %w", err)
	}
	return nil
}

func validatePricing(fee, percent *float64) error {
	if fee == nil || *fee < 0 {
		return fmt.Errorf("fee must not be negative: %w", xerrors.ErrInvalidInput)
	}
	if percent == nil || *percent < 0 || *percent > 100 {
		return fmt.Errorf("commission percent must be between 0 and 100: %w", xerrors.ErrInvalidInput)
	}
	return nil
}
