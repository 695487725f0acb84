// Package validator registers booking-domain validation rules with gin's
// binding engine.
package validator

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustom installs the custom rules. Must run before the router
// starts binding requests.
func RegisterCustom() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	// clock12 accepts 12-hour wall-clock strings like "9:30 AM", the format
	// availability slots are rendered in.
	return v.RegisterValidation("clock12", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("3:04 PM", fl.Field().String())
		return err == nil
	})
}
