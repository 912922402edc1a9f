package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mdt-app-server/internal/models"
	"mdt-app-server/internal/utils"
)

// UserHandler handles user-related requests (typically admin operations).
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// CreateUserRequest represents the request body for creating a user by an admin.
type CreateUserRequest struct {
	Username     string `json:"username" binding:"required,min=1,max=50,lowercase,alphanum"`
	Email        string `json:"email" binding:"required,email"`
	FirstName    string `json:"firstName" binding:"required,max=64"`
	LastName     string `json:"lastName" binding:"required,max=64"`
	Password     string `json:"password" binding:"required,min=8"`
	Initials     string `json:"initials" binding:"max=10"`
	IsConfirmed  bool   `json:"isConfirmed"`
	IsConsultant bool   `json:"isConsultant"`
	IsAdmin      bool   `json:"isAdmin"`
}

// CreateUser handles creating a new user (admin). Unlike registration,
// an admin may create accounts that are already confirmed.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.IsConsultant && req.Initials == "" {
		utils.BadRequest(c, "Initials are required for consultants")
		return
	}

	var existingUser models.User
	if err := h.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this username or email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Initials:     req.Initials,
		IsConfirmed:  req.IsConfirmed,
		IsConsultant: req.IsConsultant,
		IsAdmin:      req.IsAdmin,
	}
	user.Normalize()
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers handles fetching all users (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("username asc").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitizedUsers := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitizedUsers[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitizedUsers)
}

// GetConsultants returns the users eligible to own a case, ordered by
// username. Available to every confirmed user for the case forms.
func (h *UserHandler) GetConsultants(c *gin.Context) {
	var consultants []models.User
	if err := h.DB.Where("is_consultant = ?", true).Order("username asc").Find(&consultants).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch consultants: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(consultants))
	for i, u := range consultants {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Consultants fetched successfully", sanitized)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an admin.
// Pointer fields distinguish "leave unchanged" from "set to false".
type UpdateUserRequest struct {
	Email        string `json:"email" binding:"omitempty,email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Initials     string `json:"initials" binding:"max=10"`
	IsConfirmed  *bool  `json:"isConfirmed"`
	IsConsultant *bool  `json:"isConsultant"`
	IsAdmin      *bool  `json:"isAdmin"`
}

// UpdateUser handles updating a user by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.Email != "" {
		var clash models.User
		if err := h.DB.Where("email = ? AND id <> ?", req.Email, user.ID).First(&clash).Error; err == nil {
			utils.BadRequest(c, "Another user already has this email")
			return
		}
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Initials != "" {
		user.Initials = req.Initials
	}
	if req.IsConfirmed != nil {
		user.IsConfirmed = *req.IsConfirmed
	}
	if req.IsConsultant != nil {
		user.IsConsultant = *req.IsConsultant
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	user.Normalize()

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// ConfirmUser activates a registered account (admin).
func (h *UserHandler) ConfirmUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if user.IsConfirmed {
		utils.Success(c, "User is already confirmed", user.Sanitize())
		return
	}

	user.IsConfirmed = true
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to confirm user: "+err.Error())
		return
	}

	utils.Success(c, "User confirmed successfully", user.Sanitize())
}

// DeleteUser handles deleting a user by ID (admin). Accounts referenced
// by cases or actions should be left in place; this exists for removing
// spam registrations.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	var assigned int64
	if err := h.DB.Model(&models.Action{}).Where("assigned_to_id = ?", userID).Count(&assigned).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	var owned int64
	if err := h.DB.Model(&models.Case{}).
		Where("consultant_id = ? OR created_by_id = ?", userID, userID).
		Count(&owned).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if assigned > 0 || owned > 0 {
		utils.BadRequest(c, "User has cases or actions and cannot be deleted")
		return
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	utils.Success(c, "User deleted successfully", nil)
}
