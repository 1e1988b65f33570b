package handlers

import (
	"clinicq/internal/core/services"
	"clinicq/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AppointmentHandler handles booking endpoints
type AppointmentHandler struct {
	appointmentService *services.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointmentService *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
	}
}

// ============================================================
// POST /api/v1/hospitals/:id/appointments — book a slot
// ============================================================
func (h *AppointmentHandler) Book(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.PatientID == 0 || input.ScheduledAt.IsZero() {
		return response.BadRequest(c, "patient_id and scheduled_at are required")
	}

	appointment, err := h.appointmentService.Book(hospitalID, &input)
	if err != nil {
		return domainError(c, err)
	}
	return response.Created(c, "Appointment booked", appointment)
}

// ============================================================
// GET /api/v1/appointments/:id
// ============================================================
func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	appointment, err := h.appointmentService.Get(id)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Appointment retrieved", appointment)
}

// ============================================================
// POST /api/v1/appointments/:id/confirm
// ============================================================
func (h *AppointmentHandler) Confirm(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	appointment, err := h.appointmentService.Confirm(id)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Appointment confirmed", appointment)
}

// ============================================================
// POST /api/v1/appointments/:id/cancel
// ============================================================
func (h *AppointmentHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	appointment, err := h.appointmentService.Cancel(id)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Appointment cancelled", appointment)
}

// ============================================================
// GET /api/v1/patients/:id/appointments
// ============================================================
func (h *AppointmentHandler) ListByPatient(c *fiber.Ctx) error {
	patientID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	appointments, err := h.appointmentService.ListByPatient(patientID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Appointments retrieved", appointments)
}
