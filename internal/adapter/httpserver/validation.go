package httpserver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/domain"
)

// maxRecordIDLen bounds record ids accepted from callers.
const maxRecordIDLen = 64

var recordIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
		_ = vld.RegisterValidation("recordid", func(fl validator.FieldLevel) bool {
			return recordIDPattern.MatchString(fl.Field().String())
		})
	})
	return vld
}

// validateRequest runs struct validation and returns field -> tag details.
func validateRequest(v any) (map[string]string, error) {
	err := getValidator().Struct(v)
	if err == nil {
		return nil, nil
	}
	details := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return details, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument)
}

// ValidRecordID reports whether id is usable as a record id.
func ValidRecordID(id string) bool {
	return id != "" && len(id) <= maxRecordIDLen && recordIDPattern.MatchString(id)
}
