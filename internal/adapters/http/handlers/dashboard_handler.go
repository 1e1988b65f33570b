package handlers

import (
	"clinicq/internal/core/services"
	"clinicq/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetHospitalDashboard returns hospital-wide dashboard data
// @Summary Hospital Dashboard
// @Description Get the hospital overview: live queue load, today's outcomes, department and doctor breakdowns (Admin only)
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Hospital ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/hospitals/{id}/dashboard [get]
func (h *DashboardHandler) GetHospitalDashboard(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid hospital ID")
	}

	data, err := h.dashboardService.GetHospitalDashboard(c.Context(), hospitalID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get hospital dashboard")
	}

	return response.Success(c, "Hospital dashboard retrieved successfully", data)
}

// GetDoctorDashboard returns one doctor's console dashboard
// @Summary Doctor Dashboard
// @Description Get a doctor's live queue counts, today's throughput and today's appointments
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /queue/doctors/{id}/dashboard [get]
func (h *DashboardHandler) GetDoctorDashboard(c *fiber.Ctx) error {
	doctorID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid doctor ID")
	}

	data, err := h.dashboardService.GetDoctorDashboard(c.Context(), doctorID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get doctor dashboard")
	}

	return response.Success(c, "Doctor dashboard retrieved successfully", data)
}
