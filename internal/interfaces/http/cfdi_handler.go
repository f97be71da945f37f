package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kontia/kontia-api/internal/application/cfdis"
	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain"
)

// CFDIHandler maneja carga, listado y clasificación de comprobantes.
type CFDIHandler struct {
	uc *cfdis.UseCase
}

// NewCFDIHandler construye el handler.
func NewCFDIHandler(uc *cfdis.UseCase) *CFDIHandler {
	return &CFDIHandler{uc: uc}
}

// Cargar godoc
// @Summary      Cargar lote de XML
// @Tags         cfdis
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CargarCFDIRequest  true  "Archivos XML"
// @Success      200   {object}  dto.CargarCFDIResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cfdis/cargar [post]
func (h *CFDIHandler) Cargar(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	var in dto.CargarCFDIRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Archivos) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "archivos es requerido"})
	}
	out, err := h.uc.Cargar(clienteID, in)
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar comprobantes del cliente
// @Tags         cfdis
// @Security     Bearer
// @Produce      json
// @Param        ejercicio  query  int  false  "Filtrar por ejercicio"
// @Param        limit      query  int  false  "Límite"   default(50)
// @Param        offset     query  int  false  "Offset"   default(0)
// @Success      200  {array}  dto.CFDIResponse
// @Router       /api/cfdis [get]
func (h *CFDIHandler) List(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.uc.List(clienteID, c.QueryInt("ejercicio"), c.QueryInt("limit", 50), c.QueryInt("offset"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Clasificar godoc
// @Summary      Editar clasificación fiscal
// @Tags         cfdis
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del CFDI"
// @Param        body  body  dto.ClasificarCFDIRequest  true  "Cambios"
// @Success      200   {object}  dto.CFDIResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cfdis/{id}/clasificar [patch]
func (h *CFDIHandler) Clasificar(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	var in dto.ClasificarCFDIRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Clasificar(clienteID, c.Params("id"), in)
	if err != nil {
		switch err {
		case domain.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cfdi no encontrado"})
		case domain.ErrCFDIBloqueado:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BLOQUEADO", Message: "el comprobante está bloqueado"})
		case domain.ErrInvalidInput:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clasificación inválida"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// MarcarCancelado godoc
// @Summary      Marcar o desmarcar cancelación manual
// @Tags         cfdis
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del CFDI"
// @Param        body  body  dto.MarcarCanceladoRequest  true  "Estado"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cfdis/{id}/cancelado [put]
func (h *CFDIHandler) MarcarCancelado(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	var in dto.MarcarCanceladoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.MarcarCancelado(clienteID, c.Params("id"), in.Cancelado); err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cfdi no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Eliminar godoc
// @Summary      Eliminar comprobante (solo admin)
// @Tags         cfdis
// @Security     Bearer
// @Param        id  path  string  true  "ID del CFDI"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cfdis/{id} [delete]
func (h *CFDIHandler) Eliminar(c *fiber.Ctx) error {
	if err := h.uc.Eliminar(c.Params("id")); err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cfdi no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
