package middleware

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/zenstudio/internal/logger"
	"github.com/bilgisen/zenstudio/internal/models"
)

// Validator wraps validator.Validate with the domain rules registered.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the "platform" rule for platform keys, the "clock"
// rule for HH:MM times and the "fileid" rule for ids that name files.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return models.Platform(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return models.ValidClock(fl.Field().String())
	})
	_ = v.RegisterValidation("fileid", func(fl validator.FieldLevel) bool {
		return models.ValidID(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Validate validates a struct; slices are validated through a field tagged "dive".
func (v *Validator) Validate(s any) error {
	if err := v.validate.Struct(s); err != nil {
		return &ValidationError{err: err}
	}
	return nil
}

// ValidationError reports the failing fields of a request body.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string { return e.err.Error() }

func (e *ValidationError) Unwrap() error { return e.err }

// Fields maps each failing field to the rule it broke.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(e.err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}

// BodyParser parses the request body into out and validates it.
func (v *Validator) BodyParser(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return v.Validate(out)
}

func statusFor(err error) int {
	var fe *fiber.Error
	var ve *ValidationError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrExportPrecondition), errors.Is(err, models.ErrInvalidID):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler maps domain errors to status codes and renders them as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)

	if code >= fiber.StatusInternalServerError {
		logger.Get().Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", code).
			Msg("HTTP error")
	}

	body := fiber.Map{"error": http.StatusText(code)}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		body["error"] = "Validation failed"
		body["fields"] = ve.Fields()
	case code < fiber.StatusInternalServerError:
		body["msg"] = err.Error()
	}
	return c.Status(code).JSON(body)
}
