package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// Locals keys populated by the authentication middlewares.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
	LocalUser     = "user"
)

// JWTProtected returns a middleware that validates HMAC-signed bearer tokens
// and stores the subject in the request locals.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID, err := subjectFromClaims(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}
		c.Locals(LocalUserID, userID)

		return c.Next()
	}
}

// IssueToken signs a token for userID. It is used by tooling and tests.
func IssueToken(secret string, userID uint, claims jwt.MapClaims) (string, error) {
	all := jwt.MapClaims{"sub": strconv.FormatUint(uint64(userID), 10)}
	for key, value := range claims {
		all[key] = value
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, all).SignedString([]byte(secret))
}

func subjectFromClaims(claims jwt.MapClaims) (uint, error) {
	for _, key := range []string{"sub", "user_id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v <= 0 {
				return 0, fmt.Errorf("invalid subject")
			}
			return uint(v), nil
		case string:
			parsed, err := strconv.ParseUint(v, 10, 64)
			if err != nil || parsed == 0 {
				return 0, fmt.Errorf("invalid subject")
			}
			return uint(parsed), nil
		default:
			return 0, fmt.Errorf("unsupported subject type")
		}
	}
	return 0, fmt.Errorf("subject missing")
}
