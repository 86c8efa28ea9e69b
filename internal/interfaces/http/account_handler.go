package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Leadius-api/internal/application/usecase"
)

// AccountHandler cuenta autenticada y precios.
type AccountHandler struct {
	uc *usecase.AccountUseCase
}

// NewAccountHandler construye el handler de cuenta.
func NewAccountHandler(uc *usecase.AccountUseCase) *AccountHandler {
	return &AccountHandler{uc: uc}
}

// Me godoc
// @Summary      Mi cuenta y saldo de créditos
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/account [get]
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.GetAccount(c.UserContext(), GetAccountID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Pricing godoc
// @Summary      Precio por lead y compra mínima
// @Tags         account
// @Produce      json
// @Success      200  {object}  dto.PricingResponse
// @Router       /api/pricing [get]
func (h *AccountHandler) Pricing(c *fiber.Ctx) error {
	return c.JSON(h.uc.Pricing())
}
