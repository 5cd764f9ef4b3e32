package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/credit-ledger/pkg/util"
)

func middlewareApp(t *testing.T, tm *TokenManager) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code}})
		},
	})
	mw := NewSessionMiddleware(tm)
	app.Get("/protected", mw.Handle, func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"subject_id": sess.SubjectID})
	})
	return app
}

func TestSessionMiddleware_RejectsMissingHeader(t *testing.T) {
	app := middlewareApp(t, NewTokenManager("test-secret", 60))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionMiddleware_RejectsMalformedHeader(t *testing.T) {
	app := middlewareApp(t, NewTokenManager("test-secret", 60))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionMiddleware_RejectsForeignToken(t *testing.T) {
	app := middlewareApp(t, NewTokenManager("test-secret", 60))

	issued, err := NewTokenManager("other-secret", 60).GenerateToken("u1", "a@b.com", true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionMiddleware_LoadsSession(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	app := middlewareApp(t, tm)

	issued, err := tm.GenerateToken("u1", "a@b.com", true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
