package workflow

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"mdt-app-server/internal/models"
)

// Candidate meetings offered for case scheduling reach back a short
// window so a case can still be filed against a very recent meeting.
const (
	candidateLookbackDays = 14
	candidateLimit        = 20
)

// ActionsForCase returns all actions belonging to a case, oldest first.
// It is the only way case actions are read; cases carry no reverse
// collection that could be mutated through traversal.
func ActionsForCase(db *gorm.DB, caseID string) ([]models.Action, error) {
	var actions []models.Action
	err := db.Where("case_id = ?", caseID).
		Order("created_at asc").
		Find(&actions).Error
	return actions, err
}

// CandidateMeetings returns the non-cancelled meetings a case may be
// scheduled into: dated from 14 days ago onward, ascending, capped to
// keep the choice set small.
func CandidateMeetings(db *gorm.DB) ([]models.Meeting, error) {
	cutoff := today().AddDate(0, 0, -candidateLookbackDays)
	var meetings []models.Meeting
	err := db.Where("date >= ? AND is_cancelled = ?", cutoff, false).
		Order("date asc").
		Limit(candidateLimit).
		Find(&meetings).Error
	return meetings, err
}

// NextMeetingAfter returns the non-cancelled meeting with the smallest
// date strictly greater than the given date, or ErrNoNextMeeting.
func NextMeetingAfter(db *gorm.DB, date time.Time) (*models.Meeting, error) {
	var next models.Meeting
	err := db.Where("date > ? AND is_cancelled = ?", date, false).
		Order("date asc").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoNextMeeting
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
