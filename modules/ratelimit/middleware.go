package ratelimit

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler returns Fiber middleware that limits each client IP. Mutating
// requests draw from the write budget, everything else from the read budget.
// Redis failures let the request through.
func (m *Module) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "Unable to determine client IP address",
			})
		}

		limiter := m.readLimiter
		if isWrite(c.Method()) {
			limiter = m.writeLimiter
		}

		decision, err := limiter.Allow(c.UserContext(), ip)
		if err != nil {
			log.Printf("[ratelimit] Allowing %s %s from %s: %v", c.Method(), c.Path(), ip, err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
			})
		}
		return c.Next()
	}
}

func isWrite(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}
