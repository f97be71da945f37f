package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kontia/kontia-api/internal/application/activos"
	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain"
)

// ActivoHandler maneja activos fijos y su depreciación.
type ActivoHandler struct {
	uc *activos.UseCase
}

// NewActivoHandler construye el handler.
func NewActivoHandler(uc *activos.UseCase) *ActivoHandler {
	return &ActivoHandler{uc: uc}
}

// Crear godoc
// @Summary      Registrar activo fijo
// @Tags         activos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearActivoRequest  true  "Activo"
// @Success      201   {object}  dto.ActivoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/activos [post]
func (h *ActivoHandler) Crear(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	var in dto.CrearActivoRequest
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
// @Summary      Listar activos del cliente
// @Tags         activos
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {array}  dto.ActivoResponse
// @Router       /api/activos [get]
func (h *ActivoHandler) List(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.uc.List(clienteID, c.QueryInt("limit", 50), c.QueryInt("offset"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Calendario godoc
// @Summary      Calendario de depreciación del activo
// @Tags         activos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del activo"
// @Success      200  {array}  dto.PeriodoDepreciacionDTO
// @Router       /api/activos/{id}/calendario [get]
func (h *ActivoHandler) Calendario(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.uc.Calendario(clienteID, c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// RegistrarPeriodo godoc
// @Summary      Registrar el siguiente periodo de depreciación
// @Tags         activos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del activo"
// @Success      200  {object}  dto.PeriodoDepreciacionDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/activos/{id}/depreciar [post]
func (h *ActivoHandler) RegistrarPeriodo(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.uc.RegistrarPeriodo(clienteID, c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Disponer godoc
// @Summary      Dar de baja o vender un activo
// @Tags         activos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del activo"
// @Param        body  body  dto.DisponerActivoRequest  true  "Estado destino"
// @Success      200   {object}  dto.ActivoResponse
// @Router       /api/activos/{id}/disponer [post]
func (h *ActivoHandler) Disponer(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	var in dto.DisponerActivoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Disponer(clienteID, c.Params("id"), in.Estado)
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

func (h *ActivoHandler) error(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "activo no encontrado"})
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida"})
	case domain.ErrConflict, domain.ErrDuplicate:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
