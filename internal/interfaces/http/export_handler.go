package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/kontia/kontia-api/internal/application/dto"
	appfiscal "github.com/kontia/kontia-api/internal/application/fiscal"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/fiscal"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportadorExcel genera los libros XLSX de listado y resumen.
type ExportadorExcel interface {
	ExportarCFDIs(cfdis []*entity.CFDI) ([]byte, error)
	ExportarResumen(r *fiscal.ResumenAnual) ([]byte, error)
}

// ExportHandler descarga de reportes en Excel.
type ExportHandler struct {
	cfdiRepo repository.CFDIRepository
	fiscalUC *appfiscal.UseCase
	exporter ExportadorExcel
}

// NewExportHandler construye el handler.
func NewExportHandler(cfdiRepo repository.CFDIRepository, fiscalUC *appfiscal.UseCase, exporter ExportadorExcel) *ExportHandler {
	return &ExportHandler{cfdiRepo: cfdiRepo, fiscalUC: fiscalUC, exporter: exporter}
}

// CFDIs godoc
// @Summary      Exportar CFDI del ejercicio a Excel
// @Tags         export
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        ejercicio  path  int  true  "Ejercicio"
// @Success      200  {file}  binary
// @Router       /api/export/cfdis/{ejercicio} [get]
func (h *ExportHandler) CFDIs(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	ejercicio, err := c.ParamsInt("ejercicio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ejercicio inválido"})
	}
	cfdis, err := h.cfdiRepo.ListByClienteEjercicio(clienteID, ejercicio)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	libro, err := h.exporter.ExportarCFDIs(cfdis)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, contentTypeXLSX)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="cfdis_%d.xlsx"`, ejercicio))
	return c.Send(libro)
}

// Resumen godoc
// @Summary      Exportar resumen fiscal del ejercicio a Excel
// @Tags         export
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        ejercicio  path  int  true  "Ejercicio"
// @Success      200  {file}  binary
// @Router       /api/export/resumen/{ejercicio} [get]
func (h *ExportHandler) Resumen(c *fiber.Ctx) error {
	clienteID := GetClienteID(c)
	if clienteID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "cliente_id requerido"})
	}
	ejercicio, err := c.ParamsInt("ejercicio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ejercicio inválido"})
	}
	resumen, err := h.fiscalUC.ResumenAnual(clienteID, ejercicio)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	libro, err := h.exporter.ExportarResumen(resumen)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, contentTypeXLSX)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="resumen_%d.xlsx"`, ejercicio))
	return c.Send(libro)
}
