package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Configuration errors
var (
	ErrConfigNotFound     = errors.New("hospital configuration not found")
	ErrHospitalNotFound   = errors.New("hospital not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDoctorNotFound     = errors.New("doctor not found")
	ErrPatientNotFound    = errors.New("patient not found")
)

// Visit / queue errors
var (
	ErrVisitNotFound        = errors.New("visit not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrDuplicateActiveVisit = errors.New("patient already has an active visit with this doctor")
	ErrEmptyQueue           = errors.New("no waiting visits in queue")
	ErrDoctorBusy           = errors.New("doctor already has a visit in progress")
	ErrTargetDoctorInactive = errors.New("target doctor is not active")
	ErrQueueFull            = errors.New("queue has reached its maximum length")
	ErrWalkInClosed         = errors.New("walk-in check-in is not allowed by booking mode")
	ErrHospitalClosed       = errors.New("hospital is closed at this time")
	ErrGracePeriodActive    = errors.New("no-show grace period has not elapsed")
	ErrBusy                 = errors.New("queue is busy, please retry")
)

// Appointment errors
var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentClosed   = errors.New("appointment is not open for this action")
	ErrArrivalTooEarly     = errors.New("arrived before the allowed arrival window")
	ErrSlotTaken           = errors.New("the requested slot is already booked")
)
