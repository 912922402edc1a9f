package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mdt-app-server/internal/middleware"
	"mdt-app-server/internal/models"
	"mdt-app-server/internal/utils"
	"mdt-app-server/internal/workflow"
)

// CaseHandler handles the case lifecycle: filing a patient for
// discussion at a meeting, recording the discussion outcome and follow-up
// actions, and deriving the case status.
type CaseHandler struct {
	DB *gorm.DB
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(db *gorm.DB) *CaseHandler {
	return &CaseHandler{DB: db}
}

// CreateCaseRequest represents the request body for filing a new case.
// The meeting is either selected (MeetingID) or created on the fly
// (NewMeetingDate); supplying both or neither is a validation failure.
type CreateCaseRequest struct {
	PatientID      string `json:"patientId" binding:"required,uuid"`
	ConsultantID   string `json:"consultantId" binding:"required,uuid"`
	MeetingID      string `json:"meetingId" binding:"omitempty,uuid"`
	NewMeetingDate string `json:"newMeetingDate" binding:"omitempty,datetime=2006-01-02"`
	CaseType       string `json:"caseType" binding:"omitempty,oneof=MDT VCMG"`
	MedicalHistory string `json:"medicalHistory"`
	Question       string `json:"question"`
	ClinicCode     string `json:"clinicCode" binding:"max=20"`
	PlannedSurgery string `json:"plannedSurgery" binding:"max=255"`
	SurgeryDate    string `json:"surgeryDate" binding:"omitempty,datetime=2006-01-02"`
	NextOpa        string `json:"nextOpa" binding:"omitempty,datetime=2006-01-02"`
}

// CaseResponse carries a case plus any notices produced while saving it
// (e.g. a meeting created on the fly).
type CaseResponse struct {
	Case    models.Case `json:"case"`
	Notices []string    `json:"notices,omitempty"`
}

// CreateCase files a patient for discussion. New cases always start as
// TBD; discussion and actions are recorded through UpdateCase.
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	consultant, ok := h.loadConsultant(c, req.ConsultantID)
	if !ok {
		return
	}

	schedule := workflow.CaseSchedule{
		PatientID: req.PatientID,
		MeetingID: req.MeetingID,
	}
	if req.NewMeetingDate != "" {
		d, _ := time.Parse("2006-01-02", req.NewMeetingDate)
		schedule.NewMeetingDate = &d
	}

	meeting, verrs, err := workflow.ValidateCaseSchedule(h.DB, schedule)
	if errors.Is(err, workflow.ErrNotFound) {
		utils.NotFound(c, "Meeting not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if len(verrs) > 0 {
		utils.ValidationFailed(c, verrs)
		return
	}

	caseType := models.CaseType(req.CaseType)
	if caseType == "" {
		caseType = models.CaseTypeMDT
	}

	newCase := models.Case{
		PatientID:      patient.ID,
		ConsultantID:   consultant.ID,
		CreatedByID:    userID,
		CaseType:       caseType,
		MedicalHistory: strings.TrimSpace(req.MedicalHistory),
		Question:       strings.TrimSpace(req.Question),
		ClinicCode:     req.ClinicCode,
		PlannedSurgery: req.PlannedSurgery,
		SurgeryDate:    parseOptionalDate(req.SurgeryDate),
		NextOpa:        parseOptionalDate(req.NextOpa),
		Status:         models.StatusTBD,
	}

	var notices []string
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if meeting == nil {
			created := models.Meeting{Date: *schedule.NewMeetingDate}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			notices = append(notices, "MDT meeting added for "+created.DateDisplay())
			meeting = &created
		}
		newCase.MeetingID = meeting.ID
		return tx.Create(&newCase).Error
	})
	if err != nil {
		if workflow.IsDuplicateKey(err) {
			utils.Conflict(c, "Patient already has a case on this meeting")
		} else {
			utils.InternalServerError(c, "Failed to create case: "+err.Error())
		}
		return
	}

	msg := fmt.Sprintf("New case added for %s %s", patient.FirstName, patient.LastName)
	utils.Created(c, msg, CaseResponse{Case: newCase, Notices: notices})
}

// UpdateCaseRequest represents the request body for editing a case. On
// top of the create fields it carries the discussion outcome, the
// no-actions flag and a single pending action slot.
type UpdateCaseRequest struct {
	ConsultantID   string `json:"consultantId" binding:"required,uuid"`
	MeetingID      string `json:"meetingId" binding:"omitempty,uuid"`
	NewMeetingDate string `json:"newMeetingDate" binding:"omitempty,datetime=2006-01-02"`
	CaseType       string `json:"caseType" binding:"omitempty,oneof=MDT VCMG"`
	MedicalHistory string `json:"medicalHistory"`
	Question       string `json:"question"`
	ClinicCode     string `json:"clinicCode" binding:"max=20"`
	PlannedSurgery string `json:"plannedSurgery" binding:"max=255"`
	SurgeryDate    string `json:"surgeryDate" binding:"omitempty,datetime=2006-01-02"`
	NextOpa        string `json:"nextOpa" binding:"omitempty,datetime=2006-01-02"`

	Discussion        string `json:"discussion"`
	NoActionsRequired bool   `json:"noActionsRequired"`
	ActionDescription string `json:"actionDescription" binding:"max=255"`
	ActionAssigneeID  string `json:"actionAssigneeId" binding:"omitempty,uuid"`
}

// UpdateCase records the outcome of a case's discussion: the meeting can
// be moved, the clinical fields and discussion updated, and one new
// action added per submission. The case status is re-derived from
// scratch after the save.
func (h *CaseHandler) UpdateCase(c *gin.Context) {
	caseID := c.Param("id")

	var req UpdateCaseRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Case
	if err := h.DB.Preload("Patient").First(&existing, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Case not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	consultant, ok := h.loadConsultant(c, req.ConsultantID)
	if !ok {
		return
	}

	schedule := workflow.CaseSchedule{
		CaseID:    existing.ID,
		PatientID: existing.PatientID,
		MeetingID: req.MeetingID,
	}
	if req.NewMeetingDate != "" {
		d, _ := time.Parse("2006-01-02", req.NewMeetingDate)
		schedule.NewMeetingDate = &d
	}

	meeting, verrs, err := workflow.ValidateCaseSchedule(h.DB, schedule)
	if errors.Is(err, workflow.ErrNotFound) {
		utils.NotFound(c, "Meeting not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	actionInput := workflow.CaseActionInput{
		CaseID:            existing.ID,
		Discussion:        req.Discussion,
		NoActionsRequired: req.NoActionsRequired,
		ActionDescription: req.ActionDescription,
		ActionAssigneeID:  req.ActionAssigneeID,
	}
	aerrs, err := workflow.ValidateCaseActions(h.DB, actionInput)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	// All validation runs before any write; the caller gets every broken
	// rule back in one response.
	verrs = append(verrs, aerrs...)
	if len(verrs) > 0 {
		utils.ValidationFailed(c, verrs)
		return
	}

	var notices []string
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if meeting == nil {
			created := models.Meeting{Date: *schedule.NewMeetingDate}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			notices = append(notices, "MDT meeting added for "+created.DateDisplay())
			meeting = &created
		}

		caseType := models.CaseType(req.CaseType)
		if caseType == "" {
			caseType = models.CaseTypeMDT
		}

		existing.MeetingID = meeting.ID
		existing.ConsultantID = consultant.ID
		existing.CaseType = caseType
		existing.MedicalHistory = strings.TrimSpace(req.MedicalHistory)
		existing.Question = strings.TrimSpace(req.Question)
		existing.Discussion = strings.TrimSpace(req.Discussion)
		existing.ClinicCode = req.ClinicCode
		existing.PlannedSurgery = req.PlannedSurgery
		existing.SurgeryDate = parseOptionalDate(req.SurgeryDate)
		existing.NextOpa = parseOptionalDate(req.NextOpa)
		existing.NoActionsRequired = req.NoActionsRequired

		if req.ActionDescription != "" {
			action := models.Action{
				CaseID:       existing.ID,
				Description:  req.ActionDescription,
				AssignedToID: req.ActionAssigneeID,
			}
			if err := tx.Create(&action).Error; err != nil {
				return err
			}
		}

		actions, err := workflow.ActionsForCase(tx, existing.ID)
		if err != nil {
			return err
		}
		existing.Status = workflow.DeriveStatus(&existing, actions)

		return tx.Save(&existing).Error
	})
	if err != nil {
		if workflow.IsDuplicateKey(err) {
			utils.Conflict(c, "Patient already has a case on this meeting")
		} else {
			utils.InternalServerError(c, "Failed to update case: "+err.Error())
		}
		return
	}

	msg := fmt.Sprintf("Case updated for %s %s", existing.Patient.FirstName, existing.Patient.LastName)
	utils.Success(c, msg, CaseResponse{Case: existing, Notices: notices})
}

// GetCases lists cases, optionally filtered by meeting or patient,
// ordered by meeting date (newest first) then by creation time.
func (h *CaseHandler) GetCases(c *gin.Context) {
	query := h.DB.Preload("Patient").Preload("Meeting").
		Joins("JOIN meetings ON meetings.id = cases.meeting_id").
		Order("meetings.date desc, cases.created_at asc")

	if meetingID := c.Query("meeting"); meetingID != "" {
		query = query.Where("cases.meeting_id = ?", meetingID)
	}
	if patientID := c.Query("patient"); patientID != "" {
		query = query.Where("cases.patient_id = ?", patientID)
	}

	var cases []models.Case
	if err := query.Find(&cases).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch cases: "+err.Error())
		return
	}
	utils.Success(c, "Cases fetched successfully", cases)
}

// GetCaseByID fetches a single case with its actions.
func (h *CaseHandler) GetCaseByID(c *gin.Context) {
	caseID := c.Param("id")

	var kase models.Case
	if err := h.DB.Preload("Patient").Preload("Meeting").First(&kase, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Case not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actions, err := workflow.ActionsForCase(h.DB, kase.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch actions: "+err.Error())
		return
	}

	utils.Success(c, "Case fetched successfully", gin.H{
		"case":    kase,
		"actions": actions,
	})
}

// DeleteCase removes a case and its actions.
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	caseID := c.Param("id")

	var kase models.Case
	if err := h.DB.First(&kase, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Case not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("case_id = ?", kase.ID).Delete(&models.Action{}).Error; err != nil {
			return err
		}
		return tx.Delete(&kase).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete case: "+err.Error())
		return
	}

	utils.Success(c, "Case deleted successfully", nil)
}

// loadConsultant fetches a user and checks the consultant flag,
// responding with the appropriate error itself when the check fails.
func (h *CaseHandler) loadConsultant(c *gin.Context, consultantID string) (*models.User, bool) {
	var consultant models.User
	if err := h.DB.First(&consultant, "id = ?", consultantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Consultant not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	if !consultant.IsConsultant {
		utils.BadRequest(c, "Selected user is not a consultant")
		return nil, false
	}
	return &consultant, true
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &d
}
