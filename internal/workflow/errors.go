package workflow

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Field error codes, one per workflow rule. Handlers surface these
// verbatim so clients can key messages off a stable identifier.
const (
	CodeAmbiguousMeeting           = "AmbiguousMeeting"
	CodeCancelledMeeting           = "CancelledMeeting"
	CodeDuplicateMeeting           = "DuplicateMeeting"
	CodeDuplicateCaseForPatient    = "DuplicateCaseForPatient"
	CodeActionsAlreadyExist        = "ActionsAlreadyExist"
	CodeIncompleteActionAssignment = "IncompleteActionAssignment"
	CodeMissingDiscussion          = "MissingDiscussion"
	CodeDuplicateHospitalNumber    = "DuplicateHospitalNumber"
	CodeDuplicatePatientIdentity   = "DuplicatePatientIdentity"
)

// ErrNoNextMeeting is returned by RollForward when no non-cancelled
// meeting exists after the source meeting. The operation is a no-op in
// that case.
var ErrNoNextMeeting = errors.New("no meeting exists after this one")

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// FieldError is a recoverable validation failure tied to a single field
// of the submitted record.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every rule the candidate record broke.
// Validation always runs to completion before any write, so a caller
// either persists or gets the full list back.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// IsDuplicateKey reports whether err is a persistence-layer uniqueness
// violation, i.e. a conflicting row slipped in between the validation
// check and the write.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || // MySQL
		strings.Contains(msg, "UNIQUE constraint failed") // SQLite
}
