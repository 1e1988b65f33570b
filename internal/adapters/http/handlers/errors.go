package handlers

import (
	"errors"

	"clinicq/internal/core/domain"
	"clinicq/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// domainError maps a service error to the standard HTTP response. Handlers
// call it after their input validation, so anything unrecognized is a 500.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrBusy):
		return response.Error(c, fiber.StatusServiceUnavailable, "Queue is busy, please retry")
	case errors.Is(err, domain.ErrHospitalNotFound),
		errors.Is(err, domain.ErrDepartmentNotFound),
		errors.Is(err, domain.ErrDoctorNotFound),
		errors.Is(err, domain.ErrPatientNotFound),
		errors.Is(err, domain.ErrVisitNotFound),
		errors.Is(err, domain.ErrAppointmentNotFound),
		errors.Is(err, domain.ErrConfigNotFound),
		errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateActiveVisit),
		errors.Is(err, domain.ErrDoctorBusy),
		errors.Is(err, domain.ErrSlotTaken),
		errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrEmptyQueue),
		errors.Is(err, domain.ErrQueueFull),
		errors.Is(err, domain.ErrWalkInClosed),
		errors.Is(err, domain.ErrHospitalClosed),
		errors.Is(err, domain.ErrGracePeriodActive),
		errors.Is(err, domain.ErrArrivalTooEarly),
		errors.Is(err, domain.ErrAppointmentClosed),
		errors.Is(err, domain.ErrTargetDoctorInactive),
		errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Internal server error")
	}
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}
