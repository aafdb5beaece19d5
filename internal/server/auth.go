package server

import (
	"context"
	"strings"

	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// bearerToken reads the token from the Authorization header, falling back to the
// token query parameter that browser websocket clients must use.
func bearerToken(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// AuthRequired returns the authentication middleware. It stores the parsed claims,
// the caller session and the user id in the request locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.auth.ParseToken(c.UserContext(), raw)
		if err != nil {
			return fail(c, err)
		}
		sess, err := claims.Session()
		if err != nil {
			return fail(c, err)
		}

		c.Locals("claims", claims)
		c.Locals("session", sess)
		c.Locals("userID", sess.UserID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, sess.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// claimsFrom returns the token claims stored by AuthRequired.
func claimsFrom(c *fiber.Ctx) *service.TokenClaims {
	claims, _ := c.Locals("claims").(*service.TokenClaims)
	return claims
}
