package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mdt-app-server/internal/models"
	"mdt-app-server/internal/utils"
	"mdt-app-server/internal/workflow"
)

// ActionHandler handles follow-up actions. Every mutation re-derives the
// owning case's status, so completing, editing or deleting an action can
// never leave the case status stale.
type ActionHandler struct {
	DB *gorm.DB
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(db *gorm.DB) *ActionHandler {
	return &ActionHandler{DB: db}
}

// GetActions lists actions, optionally filtered by assignee. Incomplete
// actions come first, newest first within each group.
func (h *ActionHandler) GetActions(c *gin.Context) {
	query := h.DB.Preload("AssignedTo").Order("is_completed asc, created_at desc")

	if assigneeID := c.Query("assignedTo"); assigneeID != "" {
		query = query.Where("assigned_to_id = ?", assigneeID)
	}

	var actions []models.Action
	if err := query.Find(&actions).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch actions: "+err.Error())
		return
	}
	utils.Success(c, "Actions fetched successfully", actions)
}

// CompleteAction marks an action complete and re-derives the case
// status: when it was the last open action the case becomes COMP.
func (h *ActionHandler) CompleteAction(c *gin.Context) {
	actionID := c.Param("id")

	var action models.Action
	if err := h.DB.First(&action, "id = ?", actionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Action not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var status models.CaseStatus
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&action).Update("is_completed", true).Error; err != nil {
			return err
		}
		var err error
		status, err = workflow.RefreshCaseStatus(tx, action.CaseID)
		return err
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to complete action: "+err.Error())
		return
	}

	utils.Success(c, "Action completed", gin.H{
		"action":     action,
		"caseStatus": status,
	})
}

// UpdateActionRequest represents the request body for editing an action.
type UpdateActionRequest struct {
	Description  string `json:"description" binding:"required,max=255"`
	AssignedToID string `json:"assignedToId" binding:"required,uuid"`
	IsCompleted  bool   `json:"isCompleted"`
}

// UpdateAction edits an action and re-derives the case status.
func (h *ActionHandler) UpdateAction(c *gin.Context) {
	actionID := c.Param("id")

	var req UpdateActionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var action models.Action
	if err := h.DB.First(&action, "id = ?", actionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Action not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var assignee models.User
	if err := h.DB.First(&assignee, "id = ?", req.AssignedToID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Assignee not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var status models.CaseStatus
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		action.Description = req.Description
		action.AssignedToID = req.AssignedToID
		action.IsCompleted = req.IsCompleted
		if err := tx.Save(&action).Error; err != nil {
			return err
		}
		var err error
		status, err = workflow.RefreshCaseStatus(tx, action.CaseID)
		return err
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update action: "+err.Error())
		return
	}

	utils.Success(c, "Action edited ("+action.Description+")", gin.H{
		"action":     action,
		"caseStatus": status,
	})
}

// DeleteAction removes an action and re-derives the case status: a COMP
// case whose last completed action is removed drops back to DISC.
func (h *ActionHandler) DeleteAction(c *gin.Context) {
	actionID := c.Param("id")

	var action models.Action
	if err := h.DB.First(&action, "id = ?", actionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Action not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var status models.CaseStatus
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&action).Error; err != nil {
			return err
		}
		var err error
		status, err = workflow.RefreshCaseStatus(tx, action.CaseID)
		return err
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete action: "+err.Error())
		return
	}

	utils.Success(c, "Action '"+action.Description+"' deleted", gin.H{
		"caseStatus": status,
	})
}
