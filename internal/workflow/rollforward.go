package workflow

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mdt-app-server/internal/models"
)

// RollForwardNotice reports the outcome for a single case considered by
// a roll-forward run.
type RollForwardNotice struct {
	CaseID      string `json:"caseId"`
	PatientName string `json:"patientName"`
	Moved       bool   `json:"moved"`
	Message     string `json:"message"`
}

// RollForwardReport summarizes one roll-forward invocation.
type RollForwardReport struct {
	SourceMeetingID string              `json:"sourceMeetingId"`
	TargetMeetingID string              `json:"targetMeetingId"`
	TargetDate      string              `json:"targetDate"`
	Moved           int                 `json:"moved"`
	Skipped         int                 `json:"skipped"`
	Notices         []RollForwardNotice `json:"notices"`
}

// RollForward moves every undiscussed (TBD) case of the given meeting to
// the nearest strictly-later non-cancelled meeting. Cases whose patient
// is already booked at the target are skipped with a warning; DISC and
// COMP cases are never auto-migrated. The whole run executes inside one
// transaction, so a failure partway through leaves nothing reassigned.
//
// Returns ErrNotFound when the meeting does not exist and
// ErrNoNextMeeting when there is nothing to move cases to; in both
// situations no mutation happens.
func RollForward(db *gorm.DB, meetingID string) (*RollForwardReport, error) {
	var source models.Meeting
	if err := db.First(&source, "id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	target, err := NextMeetingAfter(db, source.Date)
	if err != nil {
		return nil, err
	}

	report := &RollForwardReport{
		SourceMeetingID: source.ID,
		TargetMeetingID: target.ID,
		TargetDate:      target.DateDisplay(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var pending []models.Case
		if err := tx.Preload("Patient").
			Where("meeting_id = ? AND status = ?", source.ID, models.StatusTBD).
			Find(&pending).Error; err != nil {
			return err
		}

		// Patients already booked at the target meeting; never create a
		// second case for the same (patient, meeting) pair.
		var bookedIDs []string
		if err := tx.Model(&models.Case{}).
			Where("meeting_id = ?", target.ID).
			Pluck("patient_id", &bookedIDs).Error; err != nil {
			return err
		}
		booked := make(map[string]bool, len(bookedIDs))
		for _, id := range bookedIDs {
			booked[id] = true
		}

		for _, c := range pending {
			name := fmt.Sprintf("%s %s", c.Patient.FirstName, c.Patient.LastName)
			if booked[c.PatientID] {
				report.Skipped++
				report.Notices = append(report.Notices, RollForwardNotice{
					CaseID:      c.ID,
					PatientName: name,
					Moved:       false,
					Message: fmt.Sprintf("case for patient %s was not moved as patient also has a case on %s",
						name, target.DateDisplay()),
				})
				continue
			}
			if err := tx.Model(&models.Case{}).
				Where("id = ?", c.ID).
				Update("meeting_id", target.ID).Error; err != nil {
				return err
			}
			booked[c.PatientID] = true
			report.Moved++
			report.Notices = append(report.Notices, RollForwardNotice{
				CaseID:      c.ID,
				PatientName: name,
				Moved:       true,
				Message: fmt.Sprintf("case for patient %s was moved from %s to %s",
					name, source.DateDisplay(), target.DateDisplay()),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}
