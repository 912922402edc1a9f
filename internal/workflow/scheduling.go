package workflow

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"mdt-app-server/internal/models"
)

// CaseSchedule is the scheduling slice of a candidate case: which
// patient it is for, which meeting it should land on, and - when the
// candidate is an edit - the id of the case being edited, so the
// record's own booking is not reported as a conflict with itself.
type CaseSchedule struct {
	CaseID         string // empty when creating
	PatientID      string
	MeetingID      string     // an existing meeting was selected
	NewMeetingDate *time.Time // a brand-new meeting date was supplied
}

// ValidateCaseSchedule enforces the scheduling rules before a case is
// created or its meeting changed:
//
//   - exactly one of an existing meeting or a new meeting date must be
//     supplied (AmbiguousMeeting),
//   - the selected meeting must not be cancelled (CancelledMeeting),
//   - a new meeting date must not collide with an existing meeting
//     (DuplicateMeeting),
//   - the patient must not end up with two cases on one meeting date
//     (DuplicateCaseForPatient).
//
// On success it returns the selected meeting, or nil when a new meeting
// is to be created from NewMeetingDate.
func ValidateCaseSchedule(db *gorm.DB, s CaseSchedule) (*models.Meeting, ValidationErrors, error) {
	hasMeeting := s.MeetingID != ""
	hasNewDate := s.NewMeetingDate != nil

	if hasMeeting == hasNewDate {
		return nil, ValidationErrors{{
			Field:   "meeting",
			Code:    CodeAmbiguousMeeting,
			Message: "select an existing meeting or enter a new meeting date, not both or neither",
		}}, nil
	}

	if hasNewDate {
		taken, err := meetingDateTaken(db, "", *s.NewMeetingDate)
		if err != nil {
			return nil, nil, err
		}
		if taken {
			return nil, ValidationErrors{{
				Field:   "newMeetingDate",
				Code:    CodeDuplicateMeeting,
				Message: "a meeting on this date already exists",
			}}, nil
		}
		return nil, nil, nil
	}

	var meeting models.Meeting
	if err := db.First(&meeting, "id = ?", s.MeetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	// A cancelled meeting is a logical deletion; cases landing there
	// would be stranded after its roll-forward has already run.
	if meeting.IsCancelled {
		return nil, ValidationErrors{{
			Field:   "meeting",
			Code:    CodeCancelledMeeting,
			Message: "this meeting has been cancelled",
		}}, nil
	}

	var count int64
	err := db.Model(&models.Case{}).
		Where("patient_id = ? AND meeting_id = ? AND id <> ?", s.PatientID, meeting.ID, s.CaseID).
		Count(&count).Error
	if err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, ValidationErrors{{
			Field:   "meeting",
			Code:    CodeDuplicateCaseForPatient,
			Message: "patient already has a case on this meeting date",
		}}, nil
	}

	return &meeting, nil, nil
}

// ValidateMeetingDate checks that no other meeting occupies the given
// date. meetingID is the record being edited ("" on create); its own
// date never conflicts with itself.
func ValidateMeetingDate(db *gorm.DB, meetingID string, date time.Time) (ValidationErrors, error) {
	taken, err := meetingDateTaken(db, meetingID, date)
	if err != nil {
		return nil, err
	}
	if taken {
		return ValidationErrors{{
			Field:   "date",
			Code:    CodeDuplicateMeeting,
			Message: "a meeting on this date already exists",
		}}, nil
	}
	return nil, nil
}

// ValidatePatient checks the patient identity constraints, excluding the
// record itself when editing: the hospital number must be unique, and no
// other patient may share first name, last name and date of birth.
func ValidatePatient(db *gorm.DB, p *models.Patient) (ValidationErrors, error) {
	var errs ValidationErrors

	var count int64
	err := db.Model(&models.Patient{}).
		Where("hospital_number = ? AND id <> ?", p.HospitalNumber, p.ID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		errs = append(errs, FieldError{
			Field:   "hospitalNumber",
			Code:    CodeDuplicateHospitalNumber,
			Message: "patient with this hospital number already exists",
		})
	}

	err = db.Model(&models.Patient{}).
		Where("first_name = ? AND last_name = ? AND date_of_birth = ? AND id <> ?",
			p.FirstName, p.LastName, p.DateOfBirth, p.ID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		errs = append(errs, FieldError{
			Field:   "dateOfBirth",
			Code:    CodeDuplicatePatientIdentity,
			Message: "patient with this name and date of birth already exists",
		})
	}

	return errs, nil
}

func meetingDateTaken(db *gorm.DB, excludeID string, date time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.Meeting{}).
		Where("date = ? AND id <> ?", date, excludeID).
		Count(&count).Error
	return count > 0, err
}
