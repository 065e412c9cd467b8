package sqlite

import (
	"context"

	"github.com/example/internship-tracker/internal/persistence"
)

// MeetingRepository implements persistence.MeetingRepository using SQLite.
type MeetingRepository struct {
	gateway *Gateway
}

// NewMeetingRepository creates a new SQLite meeting repository.
func NewMeetingRepository(gateway *Gateway) *MeetingRepository {
	return &MeetingRepository{gateway: gateway}
}

// CreateMeeting inserts a meeting and returns the assigned identifier.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting persistence.Meeting) (int64, error) {
	if meeting.ID != 0 {
		return 0, persistence.ErrConstraintViolation
	}
	result, err := r.gateway.querier(ctx).ExecContext(ctx,
		"INSERT INTO meetings (intern_id, meeting_date, is_intern_present) VALUES (?, ?, ?)",
		meeting.InternID, meeting.Date, meeting.InternPresent,
	)
	if err != nil {
		return 0, mapError(err)
	}
	return result.LastInsertId()
}

// UpdateMeeting overwrites a meeting.
func (r *MeetingRepository) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx,
		"UPDATE meetings SET intern_id = ?, meeting_date = ?, is_intern_present = ? WHERE id = ?",
		meeting.InternID, meeting.Date, meeting.InternPresent, meeting.ID,
	)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// DeleteMeeting removes a meeting.
func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id int64) (bool, error) {
	result, err := r.gateway.querier(ctx).ExecContext(ctx, "DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	return rowsAffected(result)
}

// GetMeeting retrieves a meeting by identifier.
func (r *MeetingRepository) GetMeeting(ctx context.Context, id int64) (persistence.Meeting, error) {
	var meeting persistence.Meeting
	err := r.gateway.querier(ctx).QueryRowContext(ctx,
		"SELECT id, intern_id, meeting_date, is_intern_present FROM meetings WHERE id = ?", id,
	).Scan(&meeting.ID, &meeting.InternID, &meeting.Date, &meeting.InternPresent)
	if err != nil {
		return persistence.Meeting{}, mapError(err)
	}
	return meeting, nil
}

// ListMeetingsByIntern returns an intern's meetings in date order.
func (r *MeetingRepository) ListMeetingsByIntern(ctx context.Context, internID int64) ([]persistence.Meeting, error) {
	rows, err := r.gateway.querier(ctx).QueryContext(ctx, `
		SELECT id, intern_id, meeting_date, is_intern_present FROM meetings
		WHERE intern_id = ? ORDER BY meeting_date ASC, id ASC`, internID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var meetings []persistence.Meeting
	for rows.Next() {
		var meeting persistence.Meeting
		if err := rows.Scan(&meeting.ID, &meeting.InternID, &meeting.Date, &meeting.InternPresent); err != nil {
			return nil, mapError(err)
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return meetings, nil
}
