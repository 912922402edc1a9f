package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mdt-app-server/internal/models"
	"mdt-app-server/internal/utils"
	"mdt-app-server/internal/workflow"
)

// MeetingHandler handles meeting scheduling, cancellation and attendance.
type MeetingHandler struct {
	DB *gorm.DB
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(db *gorm.DB) *MeetingHandler {
	return &MeetingHandler{DB: db}
}

// MeetingRequest is the request body for creating or editing a meeting.
type MeetingRequest struct {
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Comment     string `json:"comment" binding:"max=255"`
	IsCancelled bool   `json:"isCancelled"`
}

// MeetingUpdateResponse carries the edited meeting plus, when the edit
// cancelled it, the roll-forward report for its undiscussed cases.
type MeetingUpdateResponse struct {
	Meeting     models.Meeting              `json:"meeting"`
	RollForward *workflow.RollForwardReport `json:"rollForward,omitempty"`
	Warnings    []string                    `json:"warnings,omitempty"`
}

// CreateMeeting schedules a new meeting. At most one meeting can exist
// per calendar date.
func (h *MeetingHandler) CreateMeeting(c *gin.Context) {
	var req MeetingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	errs, err := workflow.ValidateMeetingDate(h.DB, "", date)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if len(errs) > 0 {
		utils.ValidationFailed(c, errs)
		return
	}

	meeting := models.Meeting{
		Date:        date,
		Comment:     req.Comment,
		IsCancelled: req.IsCancelled,
	}
	if err := h.DB.Create(&meeting).Error; err != nil {
		if workflow.IsDuplicateKey(err) {
			utils.Conflict(c, "Meeting on this date already exists")
		} else {
			utils.InternalServerError(c, "Failed to create meeting: "+err.Error())
		}
		return
	}

	utils.Created(c, "New meeting added for "+meeting.DateDisplay(), meeting)
}

// GetMeetings lists all meetings, newest date first.
func (h *MeetingHandler) GetMeetings(c *gin.Context) {
	var meetings []models.Meeting
	if err := h.DB.Order("date desc").Find(&meetings).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch meetings: "+err.Error())
		return
	}
	utils.Success(c, "Meetings fetched successfully", meetings)
}

// GetCandidateMeetings lists the meetings a case may be scheduled into.
func (h *MeetingHandler) GetCandidateMeetings(c *gin.Context) {
	meetings, err := workflow.CandidateMeetings(h.DB)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch meetings: "+err.Error())
		return
	}
	utils.Success(c, "Candidate meetings fetched successfully", meetings)
}

// GetMeetingByID fetches a single meeting.
func (h *MeetingHandler) GetMeetingByID(c *gin.Context) {
	meetingID := c.Param("id")

	var meeting models.Meeting
	if err := h.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Meeting not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Meeting fetched successfully", meeting)
}

// UpdateMeeting edits a meeting. Setting IsCancelled pushes the
// meeting's undiscussed cases to the next meeting; when no later meeting
// exists the cancellation still goes through but the cases stay put, and
// the response says so.
func (h *MeetingHandler) UpdateMeeting(c *gin.Context) {
	meetingID := c.Param("id")

	var req MeetingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	var meeting models.Meeting
	if err := h.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Meeting not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	errs, err := workflow.ValidateMeetingDate(h.DB, meeting.ID, date)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if len(errs) > 0 {
		utils.ValidationFailed(c, errs)
		return
	}

	becameCancelled := req.IsCancelled && !meeting.IsCancelled

	meeting.Date = date
	meeting.Comment = req.Comment
	meeting.IsCancelled = req.IsCancelled
	if err := h.DB.Save(&meeting).Error; err != nil {
		if workflow.IsDuplicateKey(err) {
			utils.Conflict(c, "Meeting on this date already exists")
		} else {
			utils.InternalServerError(c, "Failed to update meeting: "+err.Error())
		}
		return
	}

	resp := MeetingUpdateResponse{Meeting: meeting}
	if becameCancelled {
		report, err := workflow.RollForward(h.DB, meeting.ID)
		switch {
		case errors.Is(err, workflow.ErrNoNextMeeting):
			resp.Warnings = append(resp.Warnings,
				"Cases could not be pushed to next meeting, no meetings exist after this one")
		case err != nil:
			utils.InternalServerError(c, "Failed to push cases to next meeting: "+err.Error())
			return
		default:
			resp.RollForward = report
		}
	}

	utils.Success(c, "Meeting for "+meeting.DateDisplay()+" has been edited", resp)
}

// PushCases explicitly moves all undiscussed cases of a meeting to the
// next non-cancelled meeting.
func (h *MeetingHandler) PushCases(c *gin.Context) {
	meetingID := c.Param("id")

	report, err := workflow.RollForward(h.DB, meetingID)
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		utils.NotFound(c, "Meeting not found")
		return
	case errors.Is(err, workflow.ErrNoNextMeeting):
		utils.Success(c, "Cases could not be pushed to next meeting, no meetings exist after this one",
			MeetingUpdateResponse{Warnings: []string{workflow.ErrNoNextMeeting.Error()}})
		return
	case err != nil:
		utils.InternalServerError(c, "Failed to push cases: "+err.Error())
		return
	}

	utils.Success(c, "Cases pushed to next meeting", report)
}

// MeetingProgress summarizes the state of a meeting's cases.
type MeetingProgress struct {
	Total            int64 `json:"total"`
	TBD              int64 `json:"tbd"`
	Discussed        int64 `json:"discussed"`
	Completed        int64 `json:"completed"`
	PercentDiscussed int   `json:"percentDiscussed"`
}

// GetProgress returns per-status counts for a meeting and the percentage
// of its cases that have been discussed (DISC and COMP both count: a
// completed case was necessarily discussed).
func (h *MeetingHandler) GetProgress(c *gin.Context) {
	meetingID := c.Param("id")

	var meeting models.Meeting
	if err := h.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Meeting not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var progress MeetingProgress
	counts := map[models.CaseStatus]*int64{
		models.StatusTBD:  &progress.TBD,
		models.StatusDISC: &progress.Discussed,
		models.StatusCOMP: &progress.Completed,
	}
	for status, dest := range counts {
		if err := h.DB.Model(&models.Case{}).
			Where("meeting_id = ? AND status = ?", meeting.ID, status).
			Count(dest).Error; err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
	}
	progress.Total = progress.TBD + progress.Discussed + progress.Completed
	if progress.Total > 0 {
		progress.PercentDiscussed = int(100 * (progress.Discussed + progress.Completed) / progress.Total)
	}

	utils.Success(c, "Meeting progress fetched successfully", progress)
}

// SetAttendeesRequest replaces a meeting's attendee list and comment.
type SetAttendeesRequest struct {
	UserIDs []string `json:"userIds" binding:"required,dive,uuid"`
	Comment string   `json:"comment" binding:"max=255"`
}

// SetAttendees syncs the attendee set for a meeting: users missing from
// the submitted list are removed, new ones are added, and the meeting
// comment is updated, all in one transaction.
func (h *MeetingHandler) SetAttendees(c *gin.Context) {
	meetingID := c.Param("id")

	var req SetAttendeesRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var meeting models.Meeting
	if err := h.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Meeting not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	wanted := make(map[string]bool, len(req.UserIDs))
	for _, id := range req.UserIDs {
		wanted[id] = true
	}

	var known int64
	if len(wanted) > 0 {
		if err := h.DB.Model(&models.User{}).Where("id IN ?", req.UserIDs).
			Distinct("id").Count(&known).Error; err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
	}
	if known != int64(len(wanted)) {
		utils.BadRequest(c, "One or more attendees do not exist")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var current []models.Attendee
		if err := tx.Where("meeting_id = ?", meeting.ID).Find(&current).Error; err != nil {
			return err
		}

		present := make(map[string]bool, len(current))
		for _, a := range current {
			present[a.UserID] = true
			if !wanted[a.UserID] {
				if err := tx.Delete(&models.Attendee{}, "id = ?", a.ID).Error; err != nil {
					return err
				}
			}
		}
		for _, userID := range req.UserIDs {
			if !present[userID] {
				attendee := models.Attendee{MeetingID: meeting.ID, UserID: userID}
				if err := tx.Create(&attendee).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&meeting).Update("comment", req.Comment).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update attendees: "+err.Error())
		return
	}

	var attendees []models.Attendee
	if err := h.DB.Preload("User").Where("meeting_id = ?", meeting.ID).Find(&attendees).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch attendees: "+err.Error())
		return
	}

	utils.Success(c, "Attendees updated successfully", attendees)
}

// GetAttendees lists who attended a meeting.
func (h *MeetingHandler) GetAttendees(c *gin.Context) {
	meetingID := c.Param("id")

	var attendees []models.Attendee
	if err := h.DB.Preload("User").Where("meeting_id = ?", meetingID).Find(&attendees).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch attendees: "+err.Error())
		return
	}
	utils.Success(c, "Attendees fetched successfully", attendees)
}
