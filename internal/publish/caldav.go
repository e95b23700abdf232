// Package publish pushes resolved events to a CalDAV calendar.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/engine"
)

// calendarStore is the subset of the CalDAV client used by Publisher.
type calendarStore interface {
	FindCurrentUserPrincipal(ctx context.Context) (string, error)
	FindCalendarHomeSet(ctx context.Context, principal string) (string, error)
	FindCalendars(ctx context.Context, calendarHomeSet string) ([]caldav.Calendar, error)
	PutCalendarObject(ctx context.Context, path string, cal *ical.Calendar) (*caldav.CalendarObject, error)
}

// customTransport adds Basic Auth and the User-Agent to each request.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.Username != "" || t.Password != "" {
		req.SetBasicAuth(t.Username, t.Password)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	return t.Transport.RoundTrip(req)
}

// Publisher writes events into one CalDAV calendar.
type Publisher struct {
	store        calendarStore
	calendarPath string

	Contacts engine.Contacts // Optional; turns people into attendees.
	Clock    engine.Clock
}

// NewPublisher connects to the server described by settings and locates the
// target calendar.
func NewPublisher(ctx context.Context, settings config.CalDAVSettings, contacts engine.Contacts) (*Publisher, error) {
	if settings.Endpoint == "" || settings.Calendar == "" {
		return nil, errors.New(config.ErrPublisherMissing)
	}
	u, err := url.Parse(settings.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	httpClient := &http.Client{
		Timeout: config.HTTPTimeout,
		Transport: &customTransport{
			Username:  settings.User,
			Password:  settings.Password,
			Transport: http.DefaultTransport,
		},
	}
	client, err := caldav.NewClient(httpClient, settings.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCalDAVClient, err)
	}

	p, err := newPublisher(ctx, client, settings.Calendar)
	if err != nil {
		return nil, err
	}
	p.Contacts = contacts
	return p, nil
}

func newPublisher(ctx context.Context, store calendarStore, calendar string) (*Publisher, error) {
	log := slog.With(config.LogKeyComponent, config.CompPublish)

	log.Info(config.MsgCalDAVFind, config.LogKeyName, calendar)
	calendarPath, err := findCalendar(ctx, store, calendar)
	if err != nil {
		return nil, fmt.Errorf("%s '%s': %w", config.ErrCalDAVDiscover, calendar, err)
	}
	log.Info(config.MsgCalDAVFound, config.LogKeyURL, calendarPath)

	return &Publisher{
		store:        store,
		calendarPath: calendarPath,
		Clock:        engine.RealClock{},
	}, nil
}

// CalendarPath returns the path of the target calendar collection.
func (p *Publisher) CalendarPath() string {
	return p.calendarPath
}

// Publish stores ev as its own calendar object and returns the object path.
// Publishing the same event twice overwrites the first object.
func (p *Publisher) Publish(ctx context.Context, ev *engine.Event) (string, error) {
	vevent := engine.VEvent(ev, p.Contacts, p.Clock.Now())
	uid, _ := vevent.Props.Text(config.PropUID)

	cal := engine.NewCalendar()
	// METHOD is not allowed in calendar objects stored on a server.
	cal.Props.Del(config.PropMethod)
	cal.Children = append(cal.Children, vevent.Component)

	objectPath := path.Join(p.calendarPath, uid+config.ICalExt)
	if _, err := p.store.PutCalendarObject(ctx, objectPath, cal); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCalDAVPut, err)
	}

	slog.Info(config.MsgPublished,
		config.LogKeyComponent, config.CompPublish,
		config.LogKeyUID, uid,
		config.LogKeyAction, ev.Action,
	)
	return objectPath, nil
}

// findCalendar discovers the user's calendars and returns the path of the one
// whose display name or path matches name.
func findCalendar(ctx context.Context, store calendarStore, name string) (string, error) {
	principalPath, err := store.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := store.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := store.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name || strings.TrimSuffix(cal.Path, "/") == strings.TrimSuffix(name, "/") {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
