package report

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/example/internship-tracker/internal/persistence"
	"github.com/example/internship-tracker/internal/validation"
)

const calendarProductID = "-//internship-tracker//meetings//PT"

// WriteMeetingsCalendar writes the meetings of intern as an iCalendar file.
// Each meeting becomes an all-day event; stamp is used as DTSTAMP.
func WriteMeetingsCalendar(intern persistence.Intern, meetings []persistence.Meeting, stamp time.Time, w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetName(fmt.Sprintf("Reuniões - %s", intern.Name))

	for _, meeting := range meetings {
		day, err := time.Parse(validation.ISODateLayout, meeting.Date)
		if err != nil {
			return fmt.Errorf("meeting %d has invalid date %q: %w", meeting.ID, meeting.Date, err)
		}

		event := cal.AddEvent(fmt.Sprintf("meeting-%d@internship-tracker", meeting.ID))
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("Reunião de supervisão - %s", intern.Name))
		event.SetDescription(fmt.Sprintf("RA %s. Presença: %s", intern.RegistrationNumber, presence(meeting.InternPresent)))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}
