package workflow

import (
	"testing"

	"mdt-app-server/internal/models"
)

func TestValidateCaseActions(t *testing.T) {
	db := newTestDB(t)
	consultant := seedUser(t, db, "consult", true)
	assignee := seedUser(t, db, "reg1", false)
	patient := seedPatient(t, db, "A1234567", "Jo", "Tibbles")
	meeting := seedMeeting(t, db, date(2050, 10, 16), false)
	caseWithAction := seedCase(t, db, patient, meeting, consultant, models.StatusDISC)
	seedAction(t, db, caseWithAction, assignee, false)

	tests := []struct {
		name     string
		in       CaseActionInput
		wantCode string
	}{
		{
			name: "empty submission is fine",
			in:   CaseActionInput{},
		},
		{
			name: "discussion with full action slot is fine",
			in: CaseActionInput{
				Discussion:        "discussed",
				ActionDescription: "book scan",
				ActionAssigneeID:  assignee.ID,
			},
		},
		{
			name: "no actions required on a clean case is fine",
			in:   CaseActionInput{NoActionsRequired: true},
		},
		{
			name: "no actions required with saved actions",
			in: CaseActionInput{
				CaseID:            caseWithAction.ID,
				NoActionsRequired: true,
			},
			wantCode: CodeActionsAlreadyExist,
		},
		{
			name: "no actions required while adding an action",
			in: CaseActionInput{
				Discussion:        "discussed",
				NoActionsRequired: true,
				ActionDescription: "book scan",
				ActionAssigneeID:  assignee.ID,
			},
			wantCode: CodeActionsAlreadyExist,
		},
		{
			name: "description without assignee",
			in: CaseActionInput{
				Discussion:        "discussed",
				ActionDescription: "book scan",
			},
			wantCode: CodeIncompleteActionAssignment,
		},
		{
			name: "assignee without description",
			in: CaseActionInput{
				Discussion:       "discussed",
				ActionAssigneeID: assignee.ID,
			},
			wantCode: CodeIncompleteActionAssignment,
		},
		{
			name: "action without discussion",
			in: CaseActionInput{
				ActionDescription: "book scan",
				ActionAssigneeID:  assignee.ID,
			},
			wantCode: CodeMissingDiscussion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := ValidateCaseActions(db, tt.in)
			if err != nil {
				t.Fatalf("ValidateCaseActions: %v", err)
			}
			if tt.wantCode == "" {
				if len(errs) > 0 {
					t.Fatalf("want no errors, got %v", errs)
				}
				return
			}
			if !hasCode(errs, tt.wantCode) {
				t.Fatalf("want %s, got %v", tt.wantCode, errs)
			}
		})
	}
}
