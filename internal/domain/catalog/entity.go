// internal/domain/catalog/entity.go
package catalog

import "time"

type CourseType string

const (
	CourseTypeOnlineDegree   CourseType = "online_degree"
	CourseTypeCreditTransfer CourseType = "credit_transfer"
	CourseTypeSkillCourse    CourseType = "skill_course"
	CourseTypeVocational     CourseType = "vocational"
)

func (t CourseType) Valid() bool {
	switch t {
	case CourseTypeOnlineDegree, CourseTypeCreditTransfer, CourseTypeSkillCourse, CourseTypeVocational:
		return true
	}
	return false
}

// Center is a training provider. Every center is owned by one CENTER user.
type Center struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Address       *string   `json:"address,omitempty" db:"address"`
	ContactPerson *string   `json:"contact_person,omitempty" db:"contact_person"`
	Phone         *string   `json:"phone,omitempty" db:"phone"`
	Email         *string   `json:"email,omitempty" db:"email"`
	UserID        string    `json:"user_id" db:"user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type Course struct {
	ID                string     `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	Description       string     `json:"description" db:"description"`
	CourseType        CourseType `json:"course_type" db:"course_type"`
	Fee               float64    `json:"fee" db:"fee"`
	CommissionPercent float64    `json:"commission_percent" db:"commission_percent"`
	CenterID          string     `json:"center_id" db:"center_id"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

type CenterRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CourseWithCenter struct {
	Course
	Center *CenterRef `json:"center"`
}

// CourseFilter narrows course listings. Empty fields do not filter.
type CourseFilter struct {
	CenterID   string
	ActiveOnly bool
}
