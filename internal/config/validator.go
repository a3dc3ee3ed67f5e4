package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers Tableside-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	// abs_path: validates an absolute filesystem path.
	if err := v.RegisterValidation("abs_path", validateAbsPath); err != nil {
		return fmt.Errorf("failed to register abs_path validator: %w", err)
	}
	return nil
}

// validateAbsPath validates that the field is an absolute path.
func validateAbsPath(fl validator.FieldLevel) bool {
	return filepath.IsAbs(fl.Field().String())
}

// Validate validates the Config using struct tags.
// Returns an error with actionable messages on failure.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors turns validator errors into actionable messages.
func formatValidationErrors(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var msgs []string
	for _, fe := range verrs {
		key := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required (set it in tableside.yaml or via TABLESIDE_ env var)", key))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL, got %q", key, fe.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value()))
		case "abs_path":
			msgs = append(msgs, fmt.Sprintf("%s must be an absolute path, got %q", key, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", key, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(msgs, "\n  - "))
}
