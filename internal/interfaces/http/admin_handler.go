package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Leadius-api/internal/application/dto"
	"github.com/jhoicas/Leadius-api/internal/application/ingestion"
	"github.com/jhoicas/Leadius-api/internal/application/usecase"
)

// Ingester dispara una ingesta manual. Lo implementa *ingestion.Scanner.
type Ingester interface {
	IngestNow(ctx context.Context) (*ingestion.Result, error)
}

// AdminHandler operaciones reservadas al rol Admin.
type AdminHandler struct {
	accounts *usecase.AccountUseCase
	leads    *usecase.LeadUseCase
	ingester Ingester
}

// NewAdminHandler construye el handler de administración.
func NewAdminHandler(accounts *usecase.AccountUseCase, leads *usecase.LeadUseCase, ingester Ingester) *AdminHandler {
	return &AdminHandler{accounts: accounts, leads: leads, ingester: ingester}
}

// TopUp godoc
// @Summary      Recargar créditos de una cuenta
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.TopUpRequest  true  "cuenta, créditos y pago opcional"
// @Success      200   {object}  dto.TopUpResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/credits [post]
func (h *AdminHandler) TopUp(c *fiber.Ctx) error {
	var in dto.TopUpRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.accounts.TopUp(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Ingest godoc
// @Summary      Ejecutar la ingesta de hojas de cálculo ahora
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ingestion.Result
// @Router       /api/admin/ingest [post]
func (h *AdminHandler) Ingest(c *fiber.Ctx) error {
	res, err := h.ingester.IngestNow(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Supply godoc
// @Summary      Estado del stock global de leads
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SupplyResponse
// @Router       /api/admin/supply [get]
func (h *AdminHandler) Supply(c *fiber.Ctx) error {
	out, err := h.leads.Supply(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Account godoc
// @Summary      Detalle de una cuenta con movimientos y pagos
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "ID de la cuenta"
// @Success      200  {object}  dto.AccountDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/accounts/{id} [get]
func (h *AdminHandler) Account(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return invalidID(c)
	}
	out, err := h.accounts.GetDetail(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
