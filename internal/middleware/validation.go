package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apierrors "hpicpulse/internal/errors"
)

// ValidationMiddleware checks bound request structs against their validate
// tags. Handlers bind query parameters into a contract struct and call
// ValidateStruct before doing any work.
type ValidationMiddleware struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewValidationMiddleware builds the validator with the dashboard's custom
// tags registered: iso8601 for date parameters and dataset for export and
// timeline dataset names.
func NewValidationMiddleware(logger *slog.Logger) *ValidationMiddleware {
	v := validator.New()

	v.RegisterValidation("iso8601", isISO8601)
	v.RegisterValidation("dataset", isValidDataset)

	// Report fields by their JSON name so messages match the query parameter
	// the client actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator: v,
		logger:    logger.With(slog.String("component", "validation_middleware")),
	}
}

// ValidateStruct runs tag validation and converts any failures into the
// package's ValidationError list.
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatFieldError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatFieldError renders a failure as a client-facing message. Only the
// tags the contract structs use get bespoke wording.
func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "iso8601":
		return fmt.Sprintf("%s must be a valid ISO8601 date (YYYY-MM-DD)", field)
	case "dataset":
		return fmt.Sprintf("%s must be a known dataset name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// isISO8601 accepts YYYY-MM-DD dates.
func isISO8601(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// isValidDataset accepts the two snapshot dataset names.
func isValidDataset(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "membership", "revenue":
		return true
	}
	return false
}
