package models

import (
	"time"
)

// CaseStatus represents the workflow state of a case.
type CaseStatus string

const (
	// StatusTBD marks a case that has not been discussed yet.
	StatusTBD CaseStatus = "TBD"
	// StatusDISC marks a discussed case with open follow-up work.
	StatusDISC CaseStatus = "DISC"
	// StatusCOMP marks a completed case.
	StatusCOMP CaseStatus = "COMP"
)

// CaseType distinguishes the meeting track a case is discussed in.
type CaseType string

const (
	CaseTypeMDT  CaseType = "MDT"
	CaseTypeVCMG CaseType = "VCMG"
)

// Case is one patient's discussion item for one meeting. A patient can
// have at most one case per meeting. Status is always derived from the
// discussion field, the no-actions flag and the case's actions, never
// set directly by callers (see workflow.DeriveStatus).
type Case struct {
	BaseModel
	PatientID    string `gorm:"size:36;not null;uniqueIndex:idx_patient_meeting" json:"patientId"`
	MeetingID    string `gorm:"size:36;not null;uniqueIndex:idx_patient_meeting" json:"meetingId"`
	ConsultantID string `gorm:"size:36;not null" json:"consultantId"`
	CreatedByID  string `gorm:"size:36" json:"createdById"`

	CaseType       CaseType   `gorm:"size:10;default:'MDT'" json:"caseType"`
	MedicalHistory string     `gorm:"type:text" json:"medicalHistory"`
	Question       string     `gorm:"type:text" json:"question"`
	Discussion     string     `gorm:"type:text" json:"discussion"`
	ClinicCode     string     `gorm:"size:20" json:"clinicCode"`
	PlannedSurgery string     `gorm:"size:255" json:"plannedSurgery"`
	SurgeryDate    *time.Time `gorm:"type:date" json:"surgeryDate,omitempty"`
	NextOpa        *time.Time `gorm:"type:date" json:"nextOpa,omitempty"` // next outpatient appointment

	NoActionsRequired bool       `gorm:"default:false" json:"noActionsRequired"`
	Status            CaseStatus `gorm:"size:10;not null;default:'TBD'" json:"status"`

	Patient    Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Meeting    Meeting `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	Consultant User    `gorm:"foreignKey:ConsultantID" json:"-"`
	CreatedBy  User    `gorm:"foreignKey:CreatedByID" json:"-"`
}

// Action is a follow-up task tied to exactly one case and assigned to
// exactly one user. Actions survive their case being moved to another
// meeting.
type Action struct {
	BaseModel
	CaseID       string `gorm:"size:36;not null;index" json:"caseId"`
	Description  string `gorm:"size:255;not null" json:"description"`
	AssignedToID string `gorm:"size:36;not null;index" json:"assignedToId"`
	IsCompleted  bool   `gorm:"default:false" json:"isCompleted"`

	Case       Case `gorm:"foreignKey:CaseID" json:"-"`
	AssignedTo User `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
}
