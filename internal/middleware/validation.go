package middleware

import (
	"lesson-byte/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// LocalSessionID is the Locals key holding the validated session id.
const LocalSessionID = "validated_session_id"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware(validator *validation.Validator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: validator}
}

// ValidateSessionID rejects requests whose :id path parameter is not a ULID.
func (vm *ValidationMiddleware) ValidateSessionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.CopyString(c.Params("id"))
		if errors := vm.validator.ValidateSessionID(id); len(errors) > 0 {
			return errors
		}
		c.Locals(LocalSessionID, id)
		return c.Next()
	}
}
