package handlers

import (
	"time"

	"clinicq/internal/core/services"
	"clinicq/internal/pkg/pagination"
	"clinicq/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// QueueAdminHandler handles the admin endpoints: configuration, doctor
// availability, history reporting and manual maintenance triggers
type QueueAdminHandler struct {
	queueService   *services.QueueService
	configService  *services.ConfigService
	historyService *services.HistoryService
	policyService  *services.PolicyService
}

// NewQueueAdminHandler creates a new queue admin handler
func NewQueueAdminHandler(
	queueService *services.QueueService,
	configService *services.ConfigService,
	historyService *services.HistoryService,
	policyService *services.PolicyService,
) *QueueAdminHandler {
	return &QueueAdminHandler{
		queueService:   queueService,
		configService:  configService,
		historyService: historyService,
		policyService:  policyService,
	}
}

// ============================================================
// Configuration
// ============================================================

// GET /api/v1/admin/hospitals/:id/config — stored hospital config
func (h *QueueAdminHandler) GetHospitalConfig(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	cfg, err := h.configService.GetHospitalConfig(hospitalID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Hospital config retrieved", cfg)
}

// PUT /api/v1/admin/hospitals/:id/config — update hospital config
func (h *QueueAdminHandler) UpdateHospitalConfig(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input services.HospitalConfigInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	cfg, err := h.configService.UpdateHospitalConfig(hospitalID, &input)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Hospital config updated", cfg)
}

// GET /api/v1/admin/hospitals/:id/departments/:dept_id/policy — the merged
// effective policy a queue action would see right now
func (h *QueueAdminHandler) GetEffectivePolicy(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	departmentID, err := parseIDParam(c, "dept_id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	policy, err := h.policyService.Resolve(hospitalID, departmentID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Effective policy resolved", policy)
}

// PUT /api/v1/admin/hospitals/:id/departments/:dept_id/config — department overrides
func (h *QueueAdminHandler) UpsertDepartmentConfig(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	departmentID, err := parseIDParam(c, "dept_id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input services.DepartmentConfigInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	override, err := h.configService.UpsertDepartmentConfig(hospitalID, departmentID, &input)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Department config updated", override)
}

// ============================================================
// Doctor availability
// ============================================================

type doctorStatusInput struct {
	Status string `json:"status"`
}

// PUT /api/v1/admin/doctors/:id/status — ACTIVE / ON_LEAVE / INACTIVE
func (h *QueueAdminHandler) SetDoctorStatus(c *fiber.Ctx) error {
	doctorID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input doctorStatusInput
	if err := c.BodyParser(&input); err != nil || input.Status == "" {
		return response.BadRequest(c, "status is required")
	}

	doctor, err := h.configService.SetDoctorStatus(doctorID, input.Status)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Doctor status updated", doctor)
}

type doctorLeaveInput struct {
	SubstituteID uint `json:"substitute_id"`
}

// POST /api/v1/admin/doctors/:id/leave — put on leave, optionally moving
// open visits to a substitute when the hospital enables auto-reassign
func (h *QueueAdminHandler) DoctorLeave(c *fiber.Ctx) error {
	doctorID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input doctorLeaveInput
	_ = c.BodyParser(&input) // substitute is optional

	moved, err := h.queueService.HandleDoctorLeave(doctorID, input.SubstituteID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Doctor on leave", fiber.Map{"reassigned_visits": moved})
}

// ============================================================
// Maintenance & reporting
// ============================================================

// POST /api/v1/admin/hospitals/:id/carryover — manual end-of-day trigger
func (h *QueueAdminHandler) TriggerCarryover(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	carried, err := h.queueService.CarryOverDay(hospitalID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "Carryover completed", fiber.Map{"carried_over": carried})
}

// GET /api/v1/admin/hospitals/:id/history — archived visits
//   ?doctor_id=  ?from=RFC3339  ?to=RFC3339  ?page=  ?limit=
func (h *QueueAdminHandler) GetHistory(c *fiber.Ctx) error {
	hospitalID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var doctorID *uint
	if id := uint(c.QueryInt("doctor_id", 0)); id != 0 {
		doctorID = &id
	}

	from := time.Time{}
	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "Invalid 'from' timestamp")
		}
	}
	to := time.Now()
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "Invalid 'to' timestamp")
		}
	}

	params := pagination.GetParams(c)
	records, total, err := h.historyService.List(hospitalID, doctorID, from, to, params.Page, params.Limit)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "History retrieved", pagination.NewResponse(records, params, total))
}
