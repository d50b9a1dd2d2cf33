package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	icingaerrors "github.com/console-cowboy/icingactl/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	stepIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("step_id", func(fl validator.FieldLevel) bool {
			return stepIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on a state document.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return icingaerrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	stepIndex := make(map[string]struct{}, len(cfg.Steps))

	for i, step := range cfg.Steps {
		if _, exists := stepIndex[step.ID]; exists {
			return icingaerrors.NewValidationError(fieldForStep(i, "id"), fmt.Sprintf("duplicate step id %q", step.ID), nil)
		}

		if err := ValidateStep(step); err != nil {
			return err
		}

		stepIndex[step.ID] = struct{}{}
	}

	return nil
}

// ValidateStep validates a single step independent of other configuration properties.
func ValidateStep(step Step) error {
	v := validatorInstance()
	if err := v.Struct(step); err != nil {
		return convertValidationError(err)
	}

	switch step.Type {
	case TypeGenerateTicket:
		if step.Ticket == nil {
			return icingaerrors.NewValidationError(step.ID, "ticket configuration is required", nil)
		}
		if err := v.Struct(step.Ticket); err != nil {
			return convertValidationError(err)
		}
	case TypeGenerateCert:
		// Subject is the only input.
	case TypeSaveCert:
		if step.SaveCert == nil {
			return icingaerrors.NewValidationError(step.ID, "save_cert configuration is required", nil)
		}
		if err := v.Struct(step.SaveCert); err != nil {
			return convertValidationError(err)
		}
	case TypeRequestCert:
		if step.RequestCert == nil {
			return icingaerrors.NewValidationError(step.ID, "request_cert configuration is required", nil)
		}
		if err := v.Struct(step.RequestCert); err != nil {
			return convertValidationError(err)
		}
	case TypeNodeSetup:
		if step.NodeSetup == nil {
			return icingaerrors.NewValidationError(step.ID, "node_setup configuration is required", nil)
		}
		if err := v.Struct(step.NodeSetup); err != nil {
			return convertValidationError(err)
		}
	}

	return nil
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
		return icingaerrors.NewValidationError(field, msg, err)
	}

	return icingaerrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForStep(index int, field string) string {
	return fmt.Sprintf("steps[%d].%s", index, field)
}
