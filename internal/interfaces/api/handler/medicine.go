package handler

import (
	"net/http"

	"medreminder/internal/application/dto"
	"medreminder/internal/application/service"
	"medreminder/internal/domain/entity"
	"medreminder/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MedicineHandler handles medicine CRUD requests.
type MedicineHandler struct {
	medicines service.MedicineService
	log       logger.Logger
}

// NewMedicineHandler creates a new MedicineHandler.
func NewMedicineHandler(medicines service.MedicineService, log logger.Logger) *MedicineHandler {
	return &MedicineHandler{medicines: medicines, log: log}
}

// Create handles POST /api/v1/medicines.
func (h *MedicineHandler) Create(c echo.Context) error {
	var req dto.MedicineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.medicines.CreateMedicine(c.Request().Context(), req)
	if err != nil && resp == nil {
		return writeError(c, err)
	}
	// resp.Warning carries a scheduling failure after the medicine was created.
	return c.JSON(http.StatusCreated, resp)
}

// Update handles PUT /api/v1/medicines/:id.
func (h *MedicineHandler) Update(c echo.Context) error {
	id, ok := entity.ParseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	var req dto.MedicineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.medicines.UpdateMedicine(c.Request().Context(), id, req)
	if err != nil && resp == nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/v1/medicines/:id.
func (h *MedicineHandler) Get(c echo.Context) error {
	id, ok := entity.ParseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	resp, err := h.medicines.GetMedicine(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /api/v1/medicines/:id.
func (h *MedicineHandler) Delete(c echo.Context) error {
	id, ok := entity.ParseID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medicine id")
	}
	if err := h.medicines.DeleteMedicine(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
