package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	headerCorrelationID = "X-Correlation-ID"
	headerRequestID     = "X-Request-ID"
	localsCorrelationID = "correlation_id"
)

type ctxKeyCorrelation struct{}

// CorrelationID tags each request with a stable identifier. An inbound
// X-Correlation-ID (or X-Request-ID) is honoured so the ID survives proxy
// hops; otherwise a fresh UUID is minted. The ID is echoed back in the
// response and bound to both fiber locals and the user context.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(headerCorrelationID))
		if id == "" {
			id = strings.TrimSpace(c.Get(headerRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(localsCorrelationID, id)
		c.Set(headerCorrelationID, id)
		c.SetUserContext(context.WithValue(c.Context(), ctxKeyCorrelation{}, id))

		return c.Next()
	}
}

// CorrelationIDFromContext reads the identifier bound by CorrelationID.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKeyCorrelation{}).(string)
	return id
}

// GetCorrelationID reads the identifier for the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(localsCorrelationID).(string); ok && id != "" {
		return id
	}
	return CorrelationIDFromContext(c.Context())
}
