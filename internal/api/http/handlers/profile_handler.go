package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/credit-ledger/internal/api/dto"
	"github.com/spec-kit/credit-ledger/internal/state"
	apperrors "github.com/spec-kit/credit-ledger/pkg/util"
)

// ProfileHandler reads the shared profile state.
type ProfileHandler struct {
	profiles *state.ProfileState
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles *state.ProfileState) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	profile := h.profiles.Get()
	if profile == nil {
		return apperrors.NewNotFound("profile", nil)
	}
	return c.JSON(fiber.Map{"data": dto.FromProfile(profile)})
}
