package workflow

import (
	"strings"

	"gorm.io/gorm"
)

// CaseActionInput is the action-related slice of a case edit submission:
// the discussion text, the no-actions flag, and the single pending
// action slot (description plus assignee).
type CaseActionInput struct {
	CaseID            string // empty when creating
	Discussion        string
	NoActionsRequired bool
	ActionDescription string
	ActionAssigneeID  string
}

// ValidateCaseActions enforces the action rules of a case submission:
//
//   - "no actions required" may only be set while the case has no saved
//     actions and none is being entered in the same submission
//     (ActionsAlreadyExist),
//   - an action description and its assignee come together or not at all
//     (IncompleteActionAssignment),
//   - an action without a discussion is invalid (MissingDiscussion).
func ValidateCaseActions(db *gorm.DB, in CaseActionInput) (ValidationErrors, error) {
	var errs ValidationErrors

	hasDescription := strings.TrimSpace(in.ActionDescription) != ""
	hasAssignee := in.ActionAssigneeID != ""
	hasDiscussion := strings.TrimSpace(in.Discussion) != ""

	if in.NoActionsRequired {
		saved := int64(0)
		if in.CaseID != "" {
			if err := db.Table("actions").Where("case_id = ?", in.CaseID).Count(&saved).Error; err != nil {
				return nil, err
			}
		}
		if saved > 0 || hasDescription || hasAssignee {
			errs = append(errs, FieldError{
				Field:   "noActionsRequired",
				Code:    CodeActionsAlreadyExist,
				Message: "cannot mark no actions required while actions exist or are being added",
			})
		}
	}

	if hasDescription != hasAssignee {
		errs = append(errs, FieldError{
			Field:   "action",
			Code:    CodeIncompleteActionAssignment,
			Message: "an action needs both a description and an assignee",
		})
	}

	if hasDescription && !hasDiscussion {
		errs = append(errs, FieldError{
			Field:   "action",
			Code:    CodeMissingDiscussion,
			Message: "an action cannot be added before the discussion is recorded",
		})
	}

	return errs, nil
}
