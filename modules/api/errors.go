package api

import (
	"log"
	"strings"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps a domain error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case domain.CodeDuplicateEmail, domain.CodeProductInUse:
		return fiber.StatusConflict
	case domain.CodeCustomerNotFound, domain.CodeProductNotFound, domain.CodeOrderNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadRequest
	}
}

// writeError renders err. Domain errors keep their message; anything else
// is logged and hidden behind a generic 500.
func writeError(c *fiber.Ctx, err error) error {
	code, ok := domain.CodeOf(err)
	if !ok {
		log.Printf("[api] %s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
	return c.Status(statusFor(code)).JSON(ErrorResponse{
		Error:   strings.ToLower(code),
		Message: err.Error(),
	})
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}
