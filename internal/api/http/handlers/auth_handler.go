package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/credit-ledger/internal/api/dto"
	"github.com/spec-kit/credit-ledger/internal/domain"
	"github.com/spec-kit/credit-ledger/internal/identity"
	"github.com/spec-kit/credit-ledger/internal/session"
)

// AuthHandler exposes sign-up, sign-in, and sign-out against the identity
// provider. The session observer reacts to the resulting session changes;
// these endpoints never touch the profile store directly.
type AuthHandler struct {
	provider identity.Provider
	observer *session.Observer
}

// NewAuthHandler constructs handler.
func NewAuthHandler(provider identity.Provider, observer *session.Observer) *AuthHandler {
	return &AuthHandler{provider: provider, observer: observer}
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	sess, err := h.provider.SignUp(c.Context(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"session": sessionResponse(sess)},
	})
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	sess, err := h.provider.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"session": sessionResponse(sess)},
	})
}

// SignOut handles POST /auth/signout.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	if err := h.provider.SignOut(c.Context()); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"signed_out": true}})
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sess, err := h.provider.GetSession(c.Context())
	if err != nil {
		// Provider errors on session fetch are treated as signed out.
		sess = nil
	}

	payload := fiber.Map{"state": string(h.observer.State())}
	if sess != nil {
		payload["session"] = sessionResponse(sess)
	}
	return c.JSON(fiber.Map{"data": payload})
}

func sessionResponse(s *domain.Session) dto.SessionResponse {
	return dto.SessionResponse{
		AccessToken: s.Token,
		SubjectID:   s.SubjectID,
		Email:       s.Email,
		IssuedAt:    s.IssuedAt,
		ExpiresAt:   s.ExpiresAt,
		Confirmed:   s.Confirmed,
	}
}
