// internal/pkg/validation/validation.go
package validation

import (
	"fmt"
	"sync"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/lead"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	once    sync.Once
	initErr error
)

// Register installs the custom binding tags on gin's validator. Safe to call
// more than once.
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			initErr = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		initErr = RegisterOn(v)
	})
	return initErr
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("leadstatus", func(fl validator.FieldLevel) bool {
		return lead.Status(fl.Field().String()).Valid()
	}); err != nil {
		return fmt.Errorf("register leadstatus: %w", err)
	}
	if err := v.RegisterValidation("coursetype", func(fl validator.FieldLevel) bool {
		return catalog.CourseType(fl.Field().String()).Valid()
	}); err != nil {
		return fmt.Errorf("register coursetype: %w", err)
	}
	return nil
}
