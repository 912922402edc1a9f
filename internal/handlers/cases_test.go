package handlers

import (
	"net/http"
	"testing"
	"time"

	"mdt-app-server/internal/models"
	"mdt-app-server/internal/workflow"
)

func TestCreateCase(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "clerk", false)
	consultant := seedUser(t, db, "drsmith", true)
	patient := seedPatient(t, db, "ABC1234567", "Mary", "Smith")
	meeting := seedMeeting(t, db, date(2030, time.June, 14), false)
	r := newTestRouter(db, user)

	code, resp := doJSON(t, r, http.MethodPost, "/cases", CreateCaseRequest{
		PatientID:    patient.ID,
		ConsultantID: consultant.ID,
		MeetingID:    meeting.ID,
		Question:     "suitable for surgery?",
	})
	if code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (error: %s)", code, resp.Error)
	}

	var created CaseResponse
	decodeData(t, resp, &created)
	if created.Case.Status != models.StatusTBD {
		t.Errorf("Status = %s, new cases start as TBD", created.Case.Status)
	}
	if created.Case.MeetingID != meeting.ID {
		t.Errorf("MeetingID = %s", created.Case.MeetingID)
	}
	if created.Case.CreatedByID != user.ID {
		t.Errorf("CreatedByID = %s, want acting user", created.Case.CreatedByID)
	}
	if len(created.Notices) != 0 {
		t.Errorf("unexpected notices: %v", created.Notices)
	}
}

func TestCreateCaseWithNewMeetingDate(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "clerk", false)
	consultant := seedUser(t, db, "drsmith", true)
	patient := seedPatient(t, db, "ABC1234567", "Mary", "Smith")
	r := newTestRouter(db, user)

	code, resp := doJSON(t, r, http.MethodPost, "/cases", CreateCaseRequest{
		PatientID:      patient.ID,
		ConsultantID:   consultant.ID,
		NewMeetingDate: "2030-06-14",
	})
	if code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (error: %s)", code, resp.Error)
	}

	var created CaseResponse
	decodeData(t, resp, &created)
	if len(created.Notices) != 1 {
		t.Fatalf("Notices = %v, want the meeting-created notice", created.Notices)
	}

	var meeting models.Meeting
	if err := db.First(&meeting, "id = ?", created.Case.MeetingID).Error; err != nil {
		t.Fatalf("meeting was not created: %v", err)
	}
	if !meeting.Date.Equal(date(2030, time.June, 14)) {
		t.Errorf("meeting Date = %s", meeting.Date)
	}
}

func TestCreateCaseAmbiguousMeeting(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "clerk", false)
	consultant := seedUser(t, db, "drsmith", true)
	patient := seedPatient(t, db, "ABC1234567", "Mary", "Smith")
	meeting := seedMeeting(t, db, date(2030, time.June, 14), false)
	r := newTestRouter(db, user)

	// Both a selected meeting and a new date.
	code, resp := doJSON(t, r, http.MethodPost, "/cases", CreateCaseRequest{
		PatientID:      patient.ID,
		ConsultantID:   consultant.ID,
		MeetingID:      meeting.ID,
		NewMeetingDate: "2030-06-21",
	})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", code)
	}
	if !hasFieldCode(resp, workflow.CodeAmbiguousMeeting) {
		t.Errorf("missing %s in %+v", workflow.CodeAmbiguousMeeting, resp.Fields)
	}

	// Neither.
	code, resp = doJSON(t, r, http.MethodPost, "/cases", CreateCaseRequest{
		PatientID:    patient.ID,
		ConsultantID: consultant.ID,
	})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", code)
	}
	if !hasFieldCode(resp, workflow.CodeAmbiguousMeeting) {
		t.Errorf("missing %s in %+v", workflow.CodeAmbiguousMeeting, resp.Fields)
	}
}

func TestCreateCaseDuplicateForPatient(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "clerk", false)
	consultant := seedUser(t, db, "drsmith", true)
	patient := seedPatient(t, db, "ABC1234567", "Mary", "Smith")
	meeting := seedMeeting(t, db, date(2030, time.June, 14), false)
	seedCase(t, db, patient, meeting, consultant, models.StatusTBD)
	r := newTestRouter(db, user)

	code, resp := doJSON(t, r, http.MethodPost, "/cases", CreateCaseRequest{
		PatientID:    patient.ID,
		ConsultantID: consultant.ID,
		MeetingID:    meeting.ID,
	})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", code)
	}
	if !hasFieldCode(resp, workflow.CodeDuplicateCaseForPatient) {
		t.Errorf("missing %s in %+v", workflow.CodeDuplicateCaseForPatient, resp.Fields)
	}
}

func TestCreateCaseRejectsNonConsultant(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "clerk", false)
	notConsultant := seedUser(t, db, "nurse", false)
	patient := seedPatient(t, db, "ABC1234567", "Mary", "Smith")
	meeting := seedMeeting(t, db, date(2030, time.June, 14), false)
	r := newTestRouter(db, user)

	code, _ := doJSON(t, r, http.MethodPost, "/cases", CreateCaseRequest{
		PatientID:    patient.ID,
		ConsultantID: notConsultant.ID,
		MeetingID:    meeting.ID,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestUpdateCaseRecordsDiscussion(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "clerk", false)
	consultant := seedUser(t, db, "drsmith", true)
	patient := seedPatient(t, db, "ABC1234567", "Mary", "Smith")
	meeting := seedMeeting(t, db, date(2030, time.June, 14), false)
	kase := seedCase(t, db, patient, meeting, consultant, models.StatusTBD)
	r := newTestRouter(db, user)

	code, resp := doJSON(t, r, http.MethodPut, "/cases/"+kase.ID, UpdateCaseRequest{
		ConsultantID:      consultant.ID,
		MeetingID:         meeting.ID,
		Discussion:        "proceed to surgery",
		ActionDescription: "book theatre slot",
		ActionAssigneeID:  consultant.ID,
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (error: %s)", code, resp.Error)
	}

	var updated CaseResponse
	decodeData(t, resp, &updated)
	if updated.Case.Status != models.StatusDISC {
		t.Errorf("Status = %s, want DISC with an open action", updated.Case.Status)
	}

	var actions []models.Action
	if err := db.Where("case_id = ?", kase.ID).Find(&actions).Error; err != nil {
		t.Fatalf("failed to load actions: %v", err)
	}
	if len(actions) != 1 || actions[0].Description != "book theatre slot" {
		t.Errorf("actions = %+v", actions)
	}
}

func TestUpdateCaseNoActionsRequiredCompletes(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "clerk", false)
	consultant := seedUser(t, db, "drsmith", true)
	patient := seedPatient(t, db, "ABC1234567", "Mary", "Smith")
	meeting := seedMeeting(t, db, date(2030, time.June, 14), false)
	kase := seedCase(t, db, patient, meeting, consultant, models.StatusTBD)
	r := newTestRouter(db, user)

	code, resp := doJSON(t, r, http.MethodPut, "/cases/"+kase.ID, UpdateCaseRequest{
		ConsultantID:      consultant.ID,
		MeetingID:         meeting.ID,
		Discussion:        "no further treatment indicated",
		NoActionsRequired: true,
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (error: %s)", code, resp.Error)
	}

	var updated CaseResponse
	decodeData(t, resp, &updated)
	if updated.Case.Status != models.StatusCOMP {
		t.Errorf("Status = %s, want COMP", updated.Case.Status)
	}
}

func TestUpdateCaseValidationRunsBeforeWrites(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "clerk", false)
	consultant := seedUser(t, db, "drsmith", true)
	patient := seedPatient(t, db, "ABC1234567", "Mary", "Smith")
	meeting := seedMeeting(t, db, date(2030, time.June, 14), false)
	kase := seedCase(t, db, patient, meeting, consultant, models.StatusTBD)
	r := newTestRouter(db, user)

	// Action without an assignee, and no discussion recorded.
	code, resp := doJSON(t, r, http.MethodPut, "/cases/"+kase.ID, UpdateCaseRequest{
		ConsultantID:      consultant.ID,
		MeetingID:         meeting.ID,
		ActionDescription: "book theatre slot",
	})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", code)
	}
	if !hasFieldCode(resp, workflow.CodeIncompleteActionAssignment) {
		t.Errorf("missing %s in %+v", workflow.CodeIncompleteActionAssignment, resp.Fields)
	}
	if !hasFieldCode(resp, workflow.CodeMissingDiscussion) {
		t.Errorf("missing %s in %+v", workflow.CodeMissingDiscussion, resp.Fields)
	}

	// Nothing was persisted.
	var count int64
	if err := db.Model(&models.Action{}).Where("case_id = ?", kase.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count actions: %v", err)
	}
	if count != 0 {
		t.Errorf("action count = %d, want 0", count)
	}
}

func TestDeleteCaseRemovesActions(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "clerk", false)
	consultant := seedUser(t, db, "drsmith", true)
	patient := seedPatient(t, db, "ABC1234567", "Mary", "Smith")
	meeting := seedMeeting(t, db, date(2030, time.June, 14), false)
	kase := seedCase(t, db, patient, meeting, consultant, models.StatusDISC)
	action := models.Action{CaseID: kase.ID, Description: "chase histology", AssignedToID: consultant.ID}
	if err := db.Create(&action).Error; err != nil {
		t.Fatalf("failed to seed action: %v", err)
	}
	r := newTestRouter(db, user)

	code, resp := doJSON(t, r, http.MethodDelete, "/cases/"+kase.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (error: %s)", code, resp.Error)
	}

	var count int64
	if err := db.Model(&models.Action{}).Where("case_id = ?", kase.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count actions: %v", err)
	}
	if count != 0 {
		t.Errorf("orphaned actions left behind: %d", count)
	}
}
