package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mdt-app-server/internal/models"
	"mdt-app-server/internal/utils"
	"mdt-app-server/internal/workflow"
)

// PatientHandler handles patient registration and lookup.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// PatientRequest is the request body for creating or editing a patient.
type PatientRequest struct {
	HospitalNumber string `json:"hospitalNumber" binding:"required,min=8,max=20"`
	FirstName      string `json:"firstName" binding:"required,min=2,max=255"`
	LastName       string `json:"lastName" binding:"required,min=2,max=255"`
	DateOfBirth    string `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	Sex            string `json:"sex" binding:"required,oneof=M F m f"`
}

func (r *PatientRequest) toModel() models.Patient {
	dob, _ := time.Parse("2006-01-02", r.DateOfBirth) // validated by binding tag
	p := models.Patient{
		HospitalNumber: r.HospitalNumber,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		DateOfBirth:    dob,
		Sex:            r.Sex,
	}
	p.Normalize()
	return p
}

// CreatePatient registers a new patient.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := req.toModel()

	errs, err := workflow.ValidatePatient(h.DB, &patient)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if len(errs) > 0 {
		utils.ValidationFailed(c, errs)
		return
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		if workflow.IsDuplicateKey(err) {
			utils.Conflict(c, "Patient already exists")
		} else {
			utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		}
		return
	}

	utils.Created(c, "New patient added ("+patient.DisplayName()+")", patient)
}

// GetPatients lists all patients, newest first.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	var patients []models.Patient
	if err := h.DB.Order("created_at desc").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID fetches a single patient.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patientID := c.Param("id")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatient edits a patient record. Keeping the patient's own
// hospital number is not a conflict.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	patientID := c.Param("id")

	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	candidate := req.toModel()
	candidate.ID = patient.ID

	errs, err := workflow.ValidatePatient(h.DB, &candidate)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if len(errs) > 0 {
		utils.ValidationFailed(c, errs)
		return
	}

	patient.HospitalNumber = candidate.HospitalNumber
	patient.FirstName = candidate.FirstName
	patient.LastName = candidate.LastName
	patient.DateOfBirth = candidate.DateOfBirth
	patient.Sex = candidate.Sex

	if err := h.DB.Save(&patient).Error; err != nil {
		if workflow.IsDuplicateKey(err) {
			utils.Conflict(c, "Patient already exists")
		} else {
			utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		}
		return
	}

	utils.Success(c, "Patient edited ("+patient.DisplayName()+")", patient)
}
