package models

import (
	"time"
)

// DateDisplayFormat is the human-readable date layout used in notices.
const DateDisplayFormat = "02-Jan-2006"

// Meeting is a dated MDT meeting. At most one meeting may exist per
// calendar date. A cancelled meeting is a logical deletion marker: its
// undiscussed cases have to be rolled forward to the next meeting, never
// silently dropped.
type Meeting struct {
	BaseModel
	Date        time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	Comment     string    `gorm:"size:255" json:"comment"`
	IsCancelled bool      `gorm:"default:false" json:"isCancelled"`
}

// DateDisplay renders the meeting date as e.g. "16-Oct-2050".
func (m *Meeting) DateDisplay() string {
	return m.Date.Format(DateDisplayFormat)
}

// Attendee records a user's presence at a meeting.
type Attendee struct {
	BaseModel
	MeetingID string `gorm:"size:36;not null;uniqueIndex:idx_meeting_user" json:"meetingId"`
	UserID    string `gorm:"size:36;not null;uniqueIndex:idx_meeting_user" json:"userId"`

	Meeting Meeting `gorm:"foreignKey:MeetingID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"user"`
}
