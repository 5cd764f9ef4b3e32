package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/credit-ledger/internal/analysis"
	"github.com/spec-kit/credit-ledger/internal/api/dto"
	"github.com/spec-kit/credit-ledger/internal/gate"
	apperrors "github.com/spec-kit/credit-ledger/pkg/util"
)

// AnalysisHandler exposes the paid analysis operations. Every endpoint runs
// through its feature gate; the handler never touches the balance itself.
type AnalysisHandler struct {
	gates   *gate.Gates
	backend *analysis.Client
}

// NewAnalysisHandler constructs handler.
func NewAnalysisHandler(gates *gate.Gates, backend *analysis.Client) *AnalysisHandler {
	return &AnalysisHandler{gates: gates, backend: backend}
}

// AnalyzeFile handles POST /analysis/file (multipart: file, approach).
func (h *AnalysisHandler) AnalyzeFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "file required")
	}

	approach := analysis.Approach(c.FormValue("approach", string(analysis.ApproachClassical)))
	if !approach.Valid() {
		return fiber.NewError(http.StatusBadRequest, "approach must be classical, quantum, or hybrid")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close() //nolint:errcheck

	result, profile, err := h.gates.FileAnalysis.Run(c.Context(), func(ctx context.Context) (any, error) {
		return h.backend.AnalyzeFile(ctx, fileHeader.Filename, file, approach)
	})
	if err != nil {
		return upstreamError(err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"result":  result,
		"profile": dto.FromProfile(profile),
	}})
}

// GenerateIsomers handles POST /analysis/isomers.
func (h *AnalysisHandler) GenerateIsomers(c *fiber.Ctx) error {
	smiles, err := parseSmiles(c)
	if err != nil {
		return err
	}

	result, profile, err := h.gates.IsomerGeneration.Run(c.Context(), func(ctx context.Context) (any, error) {
		return h.backend.GenerateIsomers(ctx, smiles)
	})
	if err != nil {
		return upstreamError(err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"result":  result,
		"profile": dto.FromProfile(profile),
	}})
}

// Render2D handles POST /analysis/render/2d.
func (h *AnalysisHandler) Render2D(c *fiber.Ctx) error {
	return h.render(c, h.gates.Render2D, h.backend.Render2D)
}

// Render3D handles POST /analysis/render/3d.
func (h *AnalysisHandler) Render3D(c *fiber.Ctx) error {
	return h.render(c, h.gates.Render3D, h.backend.Render3D)
}

func (h *AnalysisHandler) render(c *fiber.Ctx, g *gate.Gate, call func(context.Context, string) (*analysis.RenderResult, error)) error {
	smiles, err := parseSmiles(c)
	if err != nil {
		return err
	}

	result, profile, err := g.Run(c.Context(), func(ctx context.Context) (any, error) {
		return call(ctx, smiles)
	})
	if err != nil {
		return upstreamError(err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"result":  result,
		"profile": dto.FromProfile(profile),
	}})
}

func parseSmiles(c *fiber.Ctx) (string, error) {
	var req dto.SmilesRequest
	if err := c.BodyParser(&req); err != nil {
		return "", fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.SMILES == "" {
		return "", fiber.NewError(http.StatusBadRequest, "smiles required")
	}
	return req.SMILES, nil
}

// upstreamError passes gate refusals through untouched and renders backend
// failures as a readable bad-gateway error instead of a bare 500.
func upstreamError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return err
	}
	return apperrors.NewDomainError("ANALYSIS_FAILED", err.Error(), http.StatusBadGateway, nil)
}
