package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

var meetingRequiredFields = []validation.Field[persistence.Meeting]{
	{Label: "Estagiário", Value: func(m persistence.Meeting) any { return positiveID(m.InternID) }},
	{Label: "Data da reunião", Value: func(m persistence.Meeting) any { return m.Date }},
}

// MeetingService records supervision meetings and attendance.
type MeetingService struct {
	meetings persistence.MeetingRepository
	logger   *slog.Logger
}

// NewMeetingService constructs a meeting service.
func NewMeetingService(meetings persistence.MeetingRepository) *MeetingService {
	return NewMeetingServiceWithLogger(meetings, nil)
}

// NewMeetingServiceWithLogger constructs a meeting service with a specified logger.
func NewMeetingServiceWithLogger(meetings persistence.MeetingRepository, logger *slog.Logger) *MeetingService {
	return &MeetingService{meetings: meetings, logger: defaultLogger(logger)}
}

func (s *MeetingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MeetingService", operation, attrs...)
}

// Add persists a meeting. The date may be given as DD/MM/YYYY or ISO and is
// stored as ISO.
func (s *MeetingService) Add(ctx context.Context, meeting *persistence.Meeting) (id int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("MeetingService is nil")
	}
	if meeting == nil {
		return 0, fmt.Errorf("meeting is nil")
	}

	logger := s.loggerWith(ctx, "Add", "intern_id", meeting.InternID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("meeting_id", id).InfoContext(ctx, "meeting added")
	}()

	if meeting.ID != 0 {
		return 0, ErrIdentityAlreadySet
	}
	if err = validateMeeting(meeting); err != nil {
		return 0, err
	}
	id, err = s.meetings.CreateMeeting(ctx, *meeting)
	if err != nil {
		return 0, err
	}
	meeting.ID = id
	return id, nil
}

// Update overwrites the stored meeting.
func (s *MeetingService) Update(ctx context.Context, meeting *persistence.Meeting) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("MeetingService is nil")
	}
	if meeting == nil || meeting.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Update", "meeting_id", meeting.ID)
	if err := validateMeeting(meeting); err != nil {
		logger.ErrorContext(ctx, "failed to update meeting", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}
	ok, err := s.meetings.UpdateMeeting(ctx, *meeting)
	return writeResult(ctx, logger, "update meeting", ok, err), nil
}

// Delete removes meeting.
func (s *MeetingService) Delete(ctx context.Context, meeting persistence.Meeting) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("MeetingService is nil")
	}
	if meeting.ID == 0 {
		return false, ErrMissingIdentity
	}
	logger := s.loggerWith(ctx, "Delete", "meeting_id", meeting.ID)
	ok, err := s.meetings.DeleteMeeting(ctx, meeting.ID)
	return writeResult(ctx, logger, "delete meeting", ok, err), nil
}

// Get returns the meeting with id, or nil.
func (s *MeetingService) Get(ctx context.Context, id int64) (*persistence.Meeting, error) {
	return lookup(s.meetings.GetMeeting(ctx, id))
}

// ListByIntern returns an intern's meetings ordered by date.
func (s *MeetingService) ListByIntern(ctx context.Context, internID int64) ([]persistence.Meeting, error) {
	return s.meetings.ListMeetingsByIntern(ctx, internID)
}

func validateMeeting(meeting *persistence.Meeting) error {
	trimAll(&meeting.Date)
	if vErr := requireFields(*meeting, meetingRequiredFields); vErr.HasErrors() {
		return vErr
	}
	date, err := validation.ParseFlexibleDate(meeting.Date)
	if err != nil {
		vErr := &ValidationError{}
		vErr.addCause("meeting_date", err)
		return vErr
	}
	meeting.Date = date
	return nil
}
