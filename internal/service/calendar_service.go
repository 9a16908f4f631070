package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/pbandeira/agendabot/internal/clients/caldav"
	"github.com/pbandeira/agendabot/internal/domain"
	"github.com/pbandeira/agendabot/internal/recurrence"
)

// CalendarService bridges the agenda to standard calendar tooling: it encodes
// view windows as iCalendar documents and mirrors master appointments to a
// CalDAV server. Recurring masters travel as a single VEVENT with an RRULE
// rather than as expanded instances.
type CalendarService struct {
	appointments *AppointmentService
	client       *caldav.Client
}

func NewCalendarService(appointments *AppointmentService, client *caldav.Client) *CalendarService {
	return &CalendarService{appointments: appointments, client: client}
}

// ExportRange encodes everything visible in the given view as an iCalendar
// document: one RRULE series per recurring master intersecting the window,
// plus plain VEVENTs for the rest (one-off appointments and dose instances).
func (s *CalendarService) ExportRange(anchor time.Time, mode recurrence.ViewMode) ([]byte, error) {
	viewStart, viewEnd := recurrence.ViewRange(anchor, mode)

	occurrences, err := s.appointments.OccurrencesInRange(viewStart, viewEnd)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//agendabot//EN")

	exported := make(map[string]struct{})
	for _, occ := range occurrences {
		if occ.IsInstance() && !occ.IsMedicine() {
			// Emit the whole series once instead of per-date instances.
			if _, ok := exported[occ.MasterID]; ok {
				continue
			}
			master, err := s.appointments.Get(occ.MasterID)
			if err != nil {
				return nil, fmt.Errorf("get master %s: %w", occ.MasterID, err)
			}
			if master == nil {
				continue
			}
			ev, err := s.eventFor(master)
			if err != nil {
				return nil, err
			}
			cal.Children = append(cal.Children, caldav.EventToComponent(ev))
			exported[occ.MasterID] = struct{}{}
			continue
		}

		ev, err := s.eventFor(occ)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, caldav.EventToComponent(ev))
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

// Publish mirrors one master appointment to the configured CalDAV calendar.
func (s *CalendarService) Publish(ctx context.Context, id string) error {
	if s.client == nil || !s.client.IsConfigured() {
		return fmt.Errorf("CalDAV is not configured")
	}

	master, err := s.appointments.Get(id)
	if err != nil {
		return fmt.Errorf("get appointment: %w", err)
	}
	if master == nil {
		return fmt.Errorf("appointment not found")
	}

	ev, err := s.eventFor(master)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, ev)
}

// Unpublish removes a previously mirrored appointment from the server.
func (s *CalendarService) Unpublish(ctx context.Context, id string) error {
	if s.client == nil || !s.client.IsConfigured() {
		return fmt.Errorf("CalDAV is not configured")
	}
	return s.client.Remove(ctx, id)
}

func (s *CalendarService) eventFor(a *domain.Appointment) (*caldav.Event, error) {
	start, err := domain.ClockOn(a.Date, a.StartTime)
	if err != nil {
		return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	end, err := domain.ClockOn(a.Date, a.EndTime)
	if err != nil {
		return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	if end.Before(start) {
		end = start
	}

	ev := &caldav.Event{
		UID:         a.ID,
		Summary:     a.Title,
		Description: a.Description,
		Location:    a.Location,
		StartTime:   start,
		EndTime:     end,
	}

	if a.Recurrence != nil {
		rule, err := RecurrenceToRRule(a.Recurrence, start)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
		}
		ev.RRule = rule
	}
	return ev, nil
}

var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// RecurrenceToRRule serializes a recurrence rule as an RFC 5545 RRULE value
// for iCalendar export.
func RecurrenceToRRule(rule *domain.RecurrenceRule, dtstart time.Time) (string, error) {
	opt := rrule.ROption{
		Interval: rule.Interval,
		Dtstart:  dtstart,
	}

	switch rule.Frequency {
	case domain.FreqDaily:
		opt.Freq = rrule.DAILY
	case domain.FreqWeekly:
		opt.Freq = rrule.WEEKLY
		for _, wd := range rule.DaysOfWeek {
			if wd < 0 || wd > 6 {
				return "", fmt.Errorf("invalid weekday %d", wd)
			}
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
		}
	case domain.FreqMonthly:
		opt.Freq = rrule.MONTHLY
	case domain.FreqYearly:
		opt.Freq = rrule.YEARLY
	default:
		return "", fmt.Errorf("unknown frequency %q", rule.Frequency)
	}

	if rule.EndDate != nil {
		opt.Until = recurrence.EndOfDay(*rule.EndDate).UTC()
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("build rrule: %w", err)
	}
	return r.OrigOptions.RRuleString(), nil
}
