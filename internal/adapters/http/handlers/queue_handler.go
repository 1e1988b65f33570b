package handlers

import (
	"clinicq/internal/core/services"
	"clinicq/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// QueueHandler handles the reception- and doctor-facing queue endpoints
type QueueHandler struct {
	queueService *services.QueueService
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queueService *services.QueueService) *QueueHandler {
	return &QueueHandler{
		queueService: queueService,
	}
}

// ============================================================
// POST /api/v1/queue/check-in — walk-in or appointment arrival
// ============================================================
func (h *QueueHandler) CheckIn(c *fiber.Ctx) error {
	var input services.CheckInInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.PatientID == 0 || input.DepartmentID == 0 {
		return response.BadRequest(c, "patient_id and department_id are required")
	}

	visit, err := h.queueService.CheckIn(&input)
	if err != nil {
		return domainError(c, err)
	}
	return response.Created(c, "Checked in", visit)
}

// ============================================================
// POST /api/v1/queue/doctors/:id/call-next — call the queue head
// ============================================================
func (h *QueueHandler) CallNext(c *fiber.Ctx) error {
	doctorID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	visit, err := h.queueService.CallNext(doctorID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Next patient called", visit)
}

// ============================================================
// POST /api/v1/queue/doctors/:id/delay — hold the in-progress visit
// ============================================================
func (h *QueueHandler) DelayDoctor(c *fiber.Ctx) error {
	doctorID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	visit, err := h.queueService.DelayDoctor(doctorID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Consultation delayed", visit)
}

// ============================================================
// GET /api/v1/queue/doctors/:id — the doctor's ordered queue
// ============================================================
func (h *QueueHandler) GetDoctorQueue(c *fiber.Ctx) error {
	doctorID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	snapshot, err := h.queueService.CurrentQueue(doctorID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Queue retrieved", snapshot)
}

// ============================================================
// GET /api/v1/queue/departments/:id — the department's ordered queue
// ============================================================
func (h *QueueHandler) GetDepartmentQueue(c *fiber.Ctx) error {
	departmentID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	snapshot, err := h.queueService.CurrentDepartmentQueue(departmentID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Queue retrieved", snapshot)
}

// ============================================================
// Visit actions: complete / skip / hold / resume / cancel / no-show
// ============================================================

type completeInput struct {
	Notes string `json:"notes"`
}

// POST /api/v1/queue/visits/:id/complete
func (h *QueueHandler) Complete(c *fiber.Ctx) error {
	visitID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input completeInput
	_ = c.BodyParser(&input) // body is optional

	visit, err := h.queueService.Complete(visitID, input.Notes)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Visit completed", visit)
}

// POST /api/v1/queue/visits/:id/skip
func (h *QueueHandler) Skip(c *fiber.Ctx) error {
	visitID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	visit, err := h.queueService.Skip(visitID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Visit skipped and re-queued", visit)
}

// POST /api/v1/queue/visits/:id/hold
func (h *QueueHandler) Hold(c *fiber.Ctx) error {
	visitID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	visit, err := h.queueService.HoldVisit(visitID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Visit on hold", visit)
}

// POST /api/v1/queue/visits/:id/resume
func (h *QueueHandler) Resume(c *fiber.Ctx) error {
	visitID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	visit, err := h.queueService.Resume(visitID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Visit resumed", visit)
}

// POST /api/v1/queue/visits/:id/cancel
func (h *QueueHandler) Cancel(c *fiber.Ctx) error {
	visitID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	visit, err := h.queueService.Cancel(visitID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Visit cancelled", visit)
}

// POST /api/v1/queue/visits/:id/no-show
func (h *QueueHandler) NoShow(c *fiber.Ctx) error {
	visitID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	visit, err := h.queueService.NoShow(visitID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Visit marked no-show", visit)
}

// ============================================================
// POST /api/v1/queue/visits/:id/reassign — move to another doctor
// ============================================================

type reassignInput struct {
	DoctorID uint `json:"doctor_id"`
}

func (h *QueueHandler) Reassign(c *fiber.Ctx) error {
	visitID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input reassignInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.DoctorID == 0 {
		return response.BadRequest(c, "doctor_id is required")
	}

	visit, err := h.queueService.Reassign(visitID, input.DoctorID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Visit reassigned", visit)
}

// ============================================================
// GET /api/v1/queue/track/:hospital_id/:token_code — public tracking
// ============================================================
func (h *QueueHandler) TrackToken(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "hospital_id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	tokenCode := c.Params("token_code")
	if tokenCode == "" {
		return response.BadRequest(c, "Token code is required")
	}

	result, err := h.queueService.TrackToken(hospitalID, tokenCode)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Token tracked", result)
}
