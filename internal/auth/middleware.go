package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTMiddleware validates bearer tokens and stores user_id in locals.
// The token is read from the auth cookie first, then from the
// Authorization header. A missing token is 401, a present but
// invalid or expired token is 403.
func JWTMiddleware(secret, cookieName string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
		}

		userID, err := verifyToken(token, secretBytes)
		if err != nil {
			return fiber.NewError(fiber.StatusForbidden, "invalid or expired token")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// OptionalJWTMiddleware attaches user_id when a valid token is present
// and lets the request through anonymously otherwise. Used on read
// paths that personalize their response (e.g. isSaved on a listing).
func OptionalJWTMiddleware(secret, cookieName string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			return c.Next()
		}
		if userID, err := verifyToken(token, secretBytes); err == nil {
			c.Locals("user_id", userID)
		}
		return c.Next()
	}
}

// UserID returns the authenticated subject set by the middleware, or ""
// for anonymous requests.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

func verifyToken(token string, secret []byte) (string, error) {
	parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.UserID, nil
}

func tokenFromRequest(c *fiber.Ctx, cookieName string) string {
	if token := c.Cookies(cookieName); token != "" {
		return token
	}
	return bearerFromHeader(c.Get("Authorization"))
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
