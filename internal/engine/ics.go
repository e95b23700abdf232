package engine

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tartampluch/go-quickevent/internal/config"
)

// uidSpace namespaces the name-based UIDs of generated events.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.ICalUIDSpace))

// Contacts resolves a person's name to an e-mail address.
type Contacts interface {
	Email(name string) (string, bool)
}

// EventUID derives a stable UID from the message and its resolved start,
// so resolving the same message twice updates rather than duplicates.
func EventUID(ev *Event) string {
	seed := ev.Message + "|" + ev.Start.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uidSpace, []byte(seed)).String()
}

// NewCalendar returns an empty VCALENDAR carrying the standard headers.
func NewCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)
	return cal
}

// VEvent converts ev into an iCalendar event stamped at stamp.
// People found in contacts become ATTENDEE properties; contacts may be nil.
func VEvent(ev *Event, contacts Contacts, stamp time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, EventUID(ev))

	summary := ev.Action
	if summary == "" {
		summary = config.FallbackSummary
	}
	event.Props.SetText(config.PropSummary, summary)

	// Floating local times are ambiguous for clients; always emit UTC.
	event.Props.SetDateTime(config.PropDTStamp, stamp.UTC())
	event.Props.SetDateTime(config.PropDTStart, ev.Start.UTC())
	event.Props.SetDateTime(config.PropDTEnd, ev.Start.Add(config.DefaultEventDuration).UTC())

	if len(ev.Place) > 0 {
		event.Props.SetText(config.PropLocation, strings.Join(ev.Place, config.LocationSeparator))
	}
	if ev.Message != "" {
		event.Props.SetText(config.PropDescription, ev.Message)
	}

	if contacts != nil {
		for _, person := range ev.People {
			email, ok := contacts.Email(person)
			if !ok {
				continue
			}
			p := ical.NewProp(config.PropAttendee)
			p.Value = config.ICalMailto + email
			p.Params.Set(config.ICalParamCN, person)
			event.Props.Add(p)
		}
	}
	return event
}

// RenderCalendar encodes events as one VCALENDAR. An empty list yields the
// minimal stub calendar so feed clients never see an invalid document.
func RenderCalendar(events []*Event, contacts Contacts, stamp time.Time) ([]byte, error) {
	if len(events) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := NewCalendar()
	for _, ev := range events {
		cal.Children = append(cal.Children, VEvent(ev, contacts, stamp).Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}
