package workflow

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mdt-app-server/internal/models"
)

// newTestDB opens a fresh in-memory database per test. The named shared
// cache keeps gorm's pooled connections pointed at the same memory DB.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedUser(t *testing.T, db *gorm.DB, username string, consultant bool) models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.org",
		IsConfirmed:  true,
		IsConsultant: consultant,
	}
	if err := u.SetPassword("correct-horse"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return u
}

func seedPatient(t *testing.T, db *gorm.DB, hospitalNumber, first, last string) models.Patient {
	t.Helper()
	p := models.Patient{
		HospitalNumber: hospitalNumber,
		FirstName:      first,
		LastName:       last,
		DateOfBirth:    date(1960, 4, 12),
		Sex:            "F",
	}
	p.Normalize()
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed patient %s: %v", hospitalNumber, err)
	}
	return p
}

func seedMeeting(t *testing.T, db *gorm.DB, on time.Time, cancelled bool) models.Meeting {
	t.Helper()
	m := models.Meeting{Date: on, IsCancelled: cancelled}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("failed to seed meeting %s: %v", on, err)
	}
	return m
}

func seedCase(t *testing.T, db *gorm.DB, patient models.Patient, meeting models.Meeting, consultant models.User, status models.CaseStatus) models.Case {
	t.Helper()
	c := models.Case{
		PatientID:    patient.ID,
		MeetingID:    meeting.ID,
		ConsultantID: consultant.ID,
		Question:     "suitable for surgery?",
		Status:       status,
	}
	if status != models.StatusTBD {
		c.Discussion = "discussed at meeting"
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}
	return c
}

func seedAction(t *testing.T, db *gorm.DB, kase models.Case, assignee models.User, completed bool) models.Action {
	t.Helper()
	a := models.Action{
		CaseID:       kase.ID,
		Description:  "chase histology",
		AssignedToID: assignee.ID,
		IsCompleted:  completed,
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("failed to seed action: %v", err)
	}
	return a
}

func hasCode(errs ValidationErrors, code string) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}
