package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

const testSecret = "test-secret"

type stubResolver map[uint]models.User

func (s stubResolver) Resolve(_ context.Context, id uint) (models.User, error) {
	user, ok := s[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func authApp() *fiber.App {
	resolver := stubResolver{
		7: {ID: 7, Name: "alice", Role: models.RoleStudent},
		9: {ID: 9, Name: "root", Role: models.RoleAdmin},
	}

	app := fiber.New()
	app.Use(JWTProtected(testSecret), CurrentUser(resolver))
	app.Get("/me", func(c *fiber.Ctx) error {
		user, err := UserFrom(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": user.ID, "role": c.Locals(LocalUserRole)})
	})
	app.Get("/admin", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTAndCurrentUser(t *testing.T) {
	app := authApp()

	token, err := IssueToken(testSecret, 7, jwt.MapClaims{"role": "admin"})
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, request(t, app, "/me", token).StatusCode)

	// the role claim is ignored in favour of the stored role
	require.Equal(t, fiber.StatusForbidden, request(t, app, "/admin", token).StatusCode)

	admin, err := IssueToken(testSecret, 9, nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, request(t, app, "/admin", admin).StatusCode)
}

func TestJWTRejectsBadTokens(t *testing.T) {
	app := authApp()

	require.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", "").StatusCode)

	forged, err := IssueToken("other-secret", 7, nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", forged).StatusCode)

	expired, err := IssueToken(testSecret, 7, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", expired).StatusCode)

	unknown, err := IssueToken(testSecret, 8, nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", unknown).StatusCode)
}

func TestSubjectFromClaims(t *testing.T) {
	id, err := subjectFromClaims(jwt.MapClaims{"sub": "12"})
	require.NoError(t, err)
	require.Equal(t, uint(12), id)

	id, err = subjectFromClaims(jwt.MapClaims{"user_id": float64(3)})
	require.NoError(t, err)
	require.Equal(t, uint(3), id)

	_, err = subjectFromClaims(jwt.MapClaims{"sub": "0"})
	require.Error(t, err)
	_, err = subjectFromClaims(jwt.MapClaims{})
	require.Error(t, err)
}
