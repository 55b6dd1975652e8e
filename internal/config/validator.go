package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	duerrors "github.com/duautomation/diagrunner/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// Device, module and operation identifiers as the service accepts them.
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	// Result file prefixes end up in report file names; keep them path-safe.
	filePrefixPattern = regexp.MustCompile(`^[a-z0-9._-]+$`)
)

// validatorInstance configures and returns the shared validator used across
// the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("file_prefix", func(fl validator.FieldLevel) bool {
			return filePrefixPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("https_url", func(fl validator.FieldLevel) bool {
			parsed, err := url.Parse(fl.Field().String())
			if err != nil {
				return false
			}
			return strings.EqualFold(parsed.Scheme, "https") && parsed.Host != ""
		})

		validateInst = v
	})

	return validateInst
}

// convertValidationError normalizes validator errors into typed validation errors.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return duerrors.NewValidationError(field, msg, err)
	}

	return duerrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	lowered := make([]string, 0, len(parts))
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}
