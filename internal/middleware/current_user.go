package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// ErrNoCurrentUser is returned when a request lacks a resolved user.
var ErrNoCurrentUser = errors.New("no current user")

// UserResolver loads the account behind an authenticated subject.
type UserResolver interface {
	Resolve(ctx context.Context, id uint) (models.User, error)
}

// CurrentUser resolves the token subject into a user. The role always comes
// from the stored account, never from the token.
func CurrentUser(resolver UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(LocalUserID).(uint)
		if !ok || userID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		user, err := resolver.Resolve(c.UserContext(), userID)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "unknown user")
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalUserRole, user.Role)
		return c.Next()
	}
}

// UserFrom returns the user resolved by CurrentUser.
func UserFrom(c *fiber.Ctx) (models.User, error) {
	user, ok := c.Locals(LocalUser).(models.User)
	if !ok {
		return models.User{}, ErrNoCurrentUser
	}
	return user, nil
}
