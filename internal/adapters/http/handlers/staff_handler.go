package handlers

import (
	"errors"
	"strconv"

	"clinicq/internal/core/services"
	"clinicq/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StaffHandler handles staff account management endpoints (Admin only)
type StaffHandler struct {
	staffService *services.StaffService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staffService *services.StaffService) *StaffHandler {
	return &StaffHandler{
		staffService: staffService,
	}
}

// CreateStaffRequest represents create staff request body
type CreateStaffRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	DoctorID *uint  `json:"doctor_id"`
}

// CreateStaff handles creating a staff account (Admin only)
// @Summary Create staff account
// @Description Create a new staff account in the admin's hospital (Admin only)
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateStaffRequest true "Staff data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/staff [post]
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}
	if len(req.Password) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	// Staff accounts always belong to the admin's own hospital
	hospitalID, _ := c.Locals("hospitalID").(uint)

	input := &services.CreateStaffInput{
		HospitalID: hospitalID,
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		DoctorID:   req.DoctorID,
	}

	staff, err := h.staffService.CreateStaff(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStaffExists):
			return response.Conflict(c, "Username or email already exists")
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Role must be RECEPTION, DOCTOR, or ADMIN")
		default:
			return response.InternalServerError(c, "Failed to create staff account")
		}
	}

	return response.Created(c, "Staff account created successfully", fiber.Map{
		"staff": staff,
	})
}

// ListStaff handles listing staff accounts (Admin only)
// @Summary List staff accounts
// @Description Get a paginated list of the admin's hospital staff (Admin only)
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /admin/staff [get]
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	hospitalID, _ := c.Locals("hospitalID").(uint)

	input := &services.ListStaffInput{
		HospitalID: hospitalID,
		Page:       page,
		Limit:      limit,
	}

	result, err := h.staffService.ListStaff(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list staff")
	}

	return response.Success(c, "Staff retrieved successfully", result)
}

// GetStaff handles getting a staff account by ID (Admin only)
// @Summary Get staff account
// @Description Get a specific staff account by ID (Admin only)
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/staff/{id} [get]
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid staff ID")
	}

	staff, err := h.staffService.GetStaffByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			return response.NotFound(c, "Staff account not found")
		}
		return response.InternalServerError(c, "Failed to get staff account")
	}

	return response.Success(c, "Staff retrieved successfully", fiber.Map{
		"staff": staff,
	})
}

// UpdateStaffRequest represents update staff request body
type UpdateStaffRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	DoctorID *uint   `json:"doctor_id"`
	IsActive *bool   `json:"is_active"`
}

// UpdateStaff handles updating a staff account (Admin only)
// @Summary Update staff account
// @Description Update a staff account's details, role, or active flag (Admin only)
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param body body UpdateStaffRequest true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/staff/{id} [put]
func (h *StaffHandler) UpdateStaff(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid staff ID")
	}

	var req UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminID, _ := c.Locals("staffID").(uint)

	input := &services.UpdateStaffByAdminInput{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		DoctorID: req.DoctorID,
		IsActive: req.IsActive,
	}

	staff, err := h.staffService.UpdateStaffByAdmin(c.Context(), uint(id), adminID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStaffNotFound):
			return response.NotFound(c, "Staff account not found")
		case errors.Is(err, services.ErrStaffExists):
			return response.Conflict(c, "Email already exists")
		case errors.Is(err, services.ErrCannotChangeOwnRole):
			return response.BadRequest(c, "Cannot change your own role")
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Role must be RECEPTION, DOCTOR, or ADMIN")
		default:
			return response.InternalServerError(c, "Failed to update staff account")
		}
	}

	return response.Success(c, "Staff updated successfully", fiber.Map{
		"staff": staff,
	})
}

// DeleteStaff handles deleting a staff account (Admin only)
// @Summary Delete staff account
// @Description Delete a staff account (soft delete) (Admin only)
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/staff/{id} [delete]
func (h *StaffHandler) DeleteStaff(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid staff ID")
	}

	adminID, _ := c.Locals("staffID").(uint)

	if err := h.staffService.DeleteStaff(c.Context(), uint(id), adminID); err != nil {
		switch {
		case errors.Is(err, services.ErrStaffNotFound):
			return response.NotFound(c, "Staff account not found")
		case errors.Is(err, services.ErrCannotDeleteSelf):
			return response.BadRequest(c, "Cannot delete your own account")
		default:
			return response.InternalServerError(c, "Failed to delete staff account")
		}
	}

	return response.Success(c, "Staff deleted successfully", nil)
}
