package dto

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"alertdesk.app/intake/internal/model"
	"alertdesk.app/intake/internal/transform"
)

var registerOnce sync.Once

// RegisterValidators adds the intake binding tags to gin's validator. Safe to
// call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = registerOn(v)
	})
	return err
}

func registerOn(v *validator.Validate) error {
	validators := map[string]validator.Func{
		"fieldpath":  validateFieldPath,
		"operator":   stringEnum(func(s string) bool { return model.Operator(s).IsValid() }),
		"filtertype": stringEnum(func(s string) bool { return model.FilterType(s).IsValid() }),
		"ticketfield": stringEnum(func(s string) bool {
			return model.TicketField(s).IsValid()
		}),
		"transform": stringEnum(func(s string) bool { return transform.IsKnown(transform.Name(s)) }),
		"priority":  stringEnum(func(s string) bool { return model.Priority(s).IsValid() }),
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validateFieldPath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return false
		}
	}
	return true
}

func stringEnum(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}
