package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/application/saldos"
	"github.com/kontia/kontia-api/internal/domain"
)

// SaldoHandler maneja saldos a favor de ISR e IVA.
type SaldoHandler struct {
	uc *saldos.UseCase
}

// NewSaldoHandler construye el handler.
func NewSaldoHandler(uc *saldos.UseCase) *SaldoHandler {
	return &SaldoHandler{uc: uc}
}

// Crear godoc
// @Summary      Registrar saldo a favor
// @Tags         saldos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearSaldoRequest  true  "Saldo"
// @Success      201   {object}  dto.SaldoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/saldos [post]
func (h *SaldoHandler) Crear(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	var in dto.CrearSaldoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Crear(clienteID, in)
	if err != nil {
		return h.error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar saldos activos
// @Tags         saldos
// @Security     Bearer
// @Produce      json
// @Param        tipo  query  string  false  "isr o iva; vacío = ambos"
// @Success      200  {array}  dto.SaldoResponse
// @Router       /api/saldos [get]
func (h *SaldoHandler) List(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.uc.List(clienteID, c.Query("tipo"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Disponible godoc
// @Summary      Saldo disponible de un tipo hasta un periodo
// @Tags         saldos
// @Security     Bearer
// @Produce      json
// @Param        tipo       query  string  true  "isr o iva"
// @Param        ejercicio  query  int     true  "Ejercicio límite"
// @Param        mes        query  int     true  "Mes límite"
// @Success      200  {object}  dto.DisponibleResponse
// @Router       /api/saldos/disponible [get]
func (h *SaldoHandler) Disponible(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.uc.Disponible(clienteID, c.Query("tipo"), c.QueryInt("ejercicio"), c.QueryInt("mes"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Aplicar godoc
// @Summary      Aplicar parte de un saldo contra una declaración
// @Tags         saldos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del saldo"
// @Param        body  body  dto.AplicarSaldoRequest  true  "Monto"
// @Success      200   {object}  dto.SaldoResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/saldos/{id}/aplicar [post]
func (h *SaldoHandler) Aplicar(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	var in dto.AplicarSaldoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Aplicar(clienteID, c.Params("id"), in)
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Eliminar godoc
// @Summary      Eliminar saldo a favor
// @Tags         saldos
// @Security     Bearer
// @Param        id  path  string  true  "ID del saldo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/saldos/{id} [delete]
func (h *SaldoHandler) Eliminar(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	if err := h.uc.Eliminar(clienteID, c.Params("id")); err != nil {
		return h.error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SaldoHandler) error(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "saldo no encontrado"})
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida"})
	case domain.ErrSaldoInsuficiente:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SALDO_INSUFICIENTE", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
