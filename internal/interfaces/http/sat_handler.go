package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/application/sat"
	"github.com/kontia/kontia-api/internal/domain"
)

// SATHandler expone la verificación de CFDI y la sincronización con el SAT.
type SATHandler struct {
	verificacion *sat.VerificacionUseCase
	sync         *sat.SyncUseCase
}

// NewSATHandler construye el handler.
func NewSATHandler(verificacion *sat.VerificacionUseCase, sync *sat.SyncUseCase) *SATHandler {
	return &SATHandler{verificacion: verificacion, sync: sync}
}

// Verificar godoc
// @Summary      Verificar vigencia de un CFDI ante el SAT
// @Tags         sat
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del CFDI"
// @Success      200  {object}  dto.VerificarCFDIResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sat/cfdis/{id}/verificar [post]
func (h *SATHandler) Verificar(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.verificacion.Verificar(c.Context(), clienteID, c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Solicitar godoc
// @Summary      Solicitar descarga masiva al SAT
// @Tags         sat
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SolicitarSyncRequest  true  "Dirección"
// @Success      202   {object}  dto.SolicitudSATResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sat/sync [post]
func (h *SATHandler) Solicitar(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	var in dto.SolicitarSyncRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.sync.Solicitar(c.Context(), clienteID, in)
	if err != nil {
		return h.error(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// Procesar godoc
// @Summary      Consultar y procesar una solicitud de descarga
// @Tags         sat
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.SolicitudSATResponse
// @Router       /api/sat/sync/{id}/procesar [post]
func (h *SATHandler) Procesar(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.sync.Procesar(c.Context(), c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Solicitudes godoc
// @Summary      Listar solicitudes de descarga del cliente
// @Tags         sat
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {array}  dto.SolicitudSATResponse
// @Router       /api/sat/sync [get]
func (h *SATHandler) Solicitudes(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 50), Offset: c.QueryInt("offset")}
	out, err := h.sync.Solicitudes(clienteID, page)
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

func (h *SATHandler) error(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida"})
	case domain.ErrSolicitudEnCurso:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SOLICITUD_EN_CURSO", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
