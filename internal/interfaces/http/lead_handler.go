package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Leadius-api/internal/application/allocation"
	"github.com/jhoicas/Leadius-api/internal/application/dto"
	"github.com/jhoicas/Leadius-api/internal/application/usecase"
)

// Allocator contrato del motor de asignación que usa el handler. Lo implementa *allocation.UseCase.
type Allocator interface {
	Allocate(ctx context.Context, accountID int64, count int) (*allocation.Result, error)
}

// LeadHandler espacio de trabajo de leads de la cuenta autenticada.
type LeadHandler struct {
	allocator Allocator
	uc        *usecase.LeadUseCase
}

// NewLeadHandler construye el handler de leads.
func NewLeadHandler(allocator Allocator, uc *usecase.LeadUseCase) *LeadHandler {
	return &LeadHandler{allocator: allocator, uc: uc}
}

// Allocate godoc
// @Summary      Reclamar leads a cambio de créditos
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AllocateRequest  true  "cantidad"
// @Success      200   {object}  dto.AllocateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      402   {object}  dto.ErrorWithCounts
// @Failure      409   {object}  dto.ErrorWithCounts
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/leads/allocate [post]
func (h *LeadHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Count < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "count debe ser >= 1"})
	}
	res, err := h.allocator.Allocate(c.UserContext(), GetAccountID(c), in.Count)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AllocateResponse{
		LeadIDs:          res.LeadIDs,
		Count:            len(res.LeadIDs),
		CreditsRemaining: res.CreditsRemaining,
		LockedUntil:      res.LockedUntil,
	})
}

// List godoc
// @Summary      Listar mis leads
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "New | Contacted | Converted | Removed"
// @Success      200  {array}   dto.LeadResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/leads [get]
func (h *LeadHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetAccountID(c), c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de un lead propio
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "ID del lead"
// @Success      200  {object}  dto.LeadResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/leads/{id} [get]
func (h *LeadHandler) Get(c *fiber.Ctx) error {
	id, ok := leadID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Get(c.UserContext(), GetAccountID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar el estado de un lead propio
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                      true  "ID del lead"
// @Param        body  body  dto.UpdateStatusRequest  true  "estado"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/leads/{id}/status [patch]
func (h *LeadHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := leadID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	status, err := h.uc.UpdateStatus(c.UserContext(), GetAccountID(c), id, in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "status": status})
}

// Stats godoc
// @Summary      Estadísticas de mis leads
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.LeadStatsResponse
// @Router       /api/leads/stats [get]
func (h *LeadHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext(), GetAccountID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Descargar mis leads en PDF
// @Tags         leads
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /api/leads/export.pdf [get]
func (h *LeadHandler) Export(c *fiber.Ctx) error {
	doc, filename, err := h.uc.ExportPDF(c.UserContext(), GetAccountID(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}

func leadID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
}
