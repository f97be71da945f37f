package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/application/fiscal"
	"github.com/kontia/kontia-api/internal/domain"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

// GeneradorAcuse produce el PDF de acuse de una declaración.
type GeneradorAcuse interface {
	GenerarAcuse(ctx context.Context, d *entity.Declaracion, cliente *entity.Cliente) ([]byte, error)
}

// FiscalHandler expone resúmenes y declaraciones.
type FiscalHandler struct {
	uc              *fiscal.UseCase
	declaracionRepo repository.DeclaracionRepository
	clienteRepo     repository.ClienteRepository
	acuse           GeneradorAcuse
}

// NewFiscalHandler construye el handler.
func NewFiscalHandler(uc *fiscal.UseCase, declaracionRepo repository.DeclaracionRepository, clienteRepo repository.ClienteRepository, acuse GeneradorAcuse) *FiscalHandler {
	return &FiscalHandler{uc: uc, declaracionRepo: declaracionRepo, clienteRepo: clienteRepo, acuse: acuse}
}

// ResumenAnual godoc
// @Summary      Resumen fiscal del ejercicio
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        ejercicio  path  int  true  "Ejercicio"
// @Success      200  {object}  fiscal.ResumenAnual
// @Router       /api/fiscal/resumen/{ejercicio} [get]
func (h *FiscalHandler) ResumenAnual(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	ejercicio, err := c.ParamsInt("ejercicio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ejercicio inválido"})
	}
	out, err := h.uc.ResumenAnual(clienteID, ejercicio)
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// ResumenMensual godoc
// @Summary      Resumen fiscal de un mes
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        ejercicio  path  int  true  "Ejercicio"
// @Param        mes        path  int  true  "Mes 1-12"
// @Success      200  {object}  fiscal.ResumenMensual
// @Router       /api/fiscal/resumen/{ejercicio}/{mes} [get]
func (h *FiscalHandler) ResumenMensual(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	ejercicio, err1 := c.ParamsInt("ejercicio")
	mes, err2 := c.ParamsInt("mes")
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "periodo inválido"})
	}
	out, err := h.uc.ResumenMensual(clienteID, ejercicio, mes)
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Acumulado godoc
// @Summary      Cifras acumuladas de enero al mes indicado
// @Tags         fiscal
// @Security     Bearer
// @Produce      json
// @Param        ejercicio  path  int  true  "Ejercicio"
// @Param        mes        path  int  true  "Mes 1-12"
// @Success      200  {object}  fiscal.Acumulado
// @Router       /api/fiscal/acumulado/{ejercicio}/{mes} [get]
func (h *FiscalHandler) Acumulado(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	ejercicio, err1 := c.ParamsInt("ejercicio")
	mes, err2 := c.ParamsInt("mes")
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "periodo inválido"})
	}
	out, err := h.uc.Acumulado(clienteID, ejercicio, mes)
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// CalcularDeclaracion godoc
// @Summary      Calcular borrador de pago provisional
// @Tags         declaraciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CalcularDeclaracionRequest  true  "Periodo"
// @Success      200   {object}  dto.DeclaracionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/declaraciones/calcular [post]
func (h *FiscalHandler) CalcularDeclaracion(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	var in dto.CalcularDeclaracionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CalcularDeclaracion(clienteID, in)
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Presentar godoc
// @Summary      Marcar declaración como presentada
// @Tags         declaraciones
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la declaración"
// @Success      200  {object}  dto.DeclaracionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/declaraciones/{id}/presentar [post]
func (h *FiscalHandler) Presentar(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.uc.Presentar(clienteID, c.Params("id"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// ListDeclaraciones godoc
// @Summary      Listar declaraciones del ejercicio
// @Tags         declaraciones
// @Security     Bearer
// @Produce      json
// @Param        ejercicio  query  int  true  "Ejercicio"
// @Success      200  {array}  dto.DeclaracionResponse
// @Router       /api/declaraciones [get]
func (h *FiscalHandler) ListDeclaraciones(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	out, err := h.uc.ListDeclaraciones(clienteID, c.QueryInt("ejercicio"))
	if err != nil {
		return h.error(c, err)
	}
	return c.JSON(out)
}

// Acuse godoc
// @Summary      Descargar acuse PDF de una declaración
// @Tags         declaraciones
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la declaración"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/declaraciones/{id}/acuse [get]
func (h *FiscalHandler) Acuse(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	d, err := h.declaracionRepo.GetByID(c.Params("id"))
	if err != nil || d.ClienteID != clienteID {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "declaración no encontrada"})
	}
	cliente, err := h.clienteRepo.GetByID(clienteID)
	if err != nil {
		return h.error(c, err)
	}
	pdf, err := h.acuse.GenerarAcuse(c.Context(), d, cliente)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="acuse_%d_%02d.pdf"`, d.Ejercicio, d.Mes))
	return c.Send(pdf)
}

func (h *FiscalHandler) error(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida"})
	case domain.ErrConflict:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case domain.ErrSaldoInsuficiente:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SALDO_INSUFICIENTE", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
