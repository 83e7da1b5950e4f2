package identity

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/ticket-engine/internal/domain"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

const identityKey = "caller_identity"

// Middleware extracts the caller identity from bearer tokens.
type Middleware struct {
	tokens *TokenParser
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenParser) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	caller, err := m.tokens.Parse(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	c.Locals(identityKey, caller)
	return c.Next()
}

// FromContext retrieves the authenticated caller.
func FromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	caller, ok := val.(*Identity)
	return caller, ok
}

// RequireStaff ensures the caller holds a staff role.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := FromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("identity required")
		}
		if !caller.IsAgent() {
			return apperrors.NewForbidden("staff role required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller holds the admin staff role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := FromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("identity required")
		}
		if caller.StaffRole != domain.StaffRoleAdmin || !caller.IsStaff {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
