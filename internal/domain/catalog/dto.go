// internal/domain/catalog/dto.go
package catalog

type CreateCourseRequest struct {
	Name              string     `json:"name" binding:"required,max=255"`
	Description       string     `json:"description"`
	CourseType        CourseType `json:"course_type" binding:"omitempty,coursetype"`
	Fee               *float64   `json:"fee" binding:"required"`
	CommissionPercent *float64   `json:"commission_percent" binding:"required"`
	CenterID          string     `json:"center_id" binding:"required"`
	IsActive          *bool      `json:"is_active"`
}

type UpdateCourseRequest struct {
	Name              *string     `json:"name" binding:"omitempty,max=255"`
	Description       *string     `json:"description"`
	CourseType        *CourseType `json:"course_type" binding:"omitempty,coursetype"`
	Fee               *float64    `json:"fee"`
	CommissionPercent *float64    `json:"commission_percent"`
	CenterID          *string     `json:"center_id"`
	IsActive          *bool       `json:"is_active"`
}
