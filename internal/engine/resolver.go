package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

// TreeProducer tokenizes, tags and chunks a message into a labeled tree.
// Implementations are built once and must be safe for concurrent use.
type TreeProducer interface {
	TagAndChunk(ctx context.Context, message string) (*tree.Node, error)
}

// Resolver is the core service turning messages into events.
type Resolver struct {
	Clock    Clock        // Interface for time mocking.
	Producer TreeProducer // Tagging and chunking stage.
}

func logEngine() *slog.Logger {
	return slog.With(config.LogKeyComponent, config.CompEngine)
}

// Resolve tags and chunks message, then resolves the resulting tree.
func (r *Resolver) Resolve(ctx context.Context, message string) (*Event, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, config.ErrEmptyMessage)
	}
	if r.Producer == nil {
		return nil, errors.New(config.ErrProducerMissing)
	}

	root, err := r.Producer.TagAndChunk(ctx, message)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrTagAndChunk, err)
	}
	logEngine().DebugContext(ctx, config.MsgResolveStarted, config.LogKeyTree, root.String())

	ev, err := r.ResolveTree(root)
	if err != nil {
		return nil, err
	}
	ev.Message = message
	return ev, nil
}

// ResolveTree builds the event from an already chunked tree.
//
// Only the first DATE and the first TIME span are read. A message without
// any date or time signal is scheduled for tomorrow at the default hour.
func (r *Resolver) ResolveTree(root *tree.Node) (*Event, error) {
	log := logEngine()

	date, dateFound, err := r.resolveDate(root)
	if err != nil {
		return nil, err
	}
	if !dateFound {
		date = startOfDay(r.Clock.Now())
		log.Debug(config.MsgDateDefault, config.LogKeyDate, date.Format(time.DateOnly))
	}

	moment, timeFound, err := r.resolveTime(root, date)
	if err != nil {
		return nil, err
	}
	if !timeFound {
		y, m, d := r.Clock.Now().Date()
		moment = time.Date(y, m, d, config.DefaultHour, config.DefaultMinute, 0, 0, r.Clock.Now().Location())
		log.Debug(config.MsgTimeDefault, config.LogKeyTime, moment.Format(config.RecordTimeLayout))
	}

	if !dateFound && !timeFound {
		date = date.AddDate(0, 0, 1)
		log.Debug(config.MsgBothDefault, config.LogKeyDate, date.Format(time.DateOnly))
	}

	start := r.joinDateTime(date, moment, dateFound)

	ev := &Event{
		Action: ExtractAction(root),
		Date:   start.Format(config.RecordDateLayout),
		Time:   start.Format(config.RecordTimeLayout),
		People: ExtractPeople(root),
		Start:  start,
	}
	if places, ok := ExtractPlaces(root); ok {
		ev.Place = places
	}

	log.Info(config.MsgResolved,
		config.LogKeyAction, ev.Action,
		config.LogKeyDate, ev.Date,
		config.LogKeyTime, ev.Time,
	)
	return ev, nil
}

func (r *Resolver) resolveDate(root *tree.Node) (time.Time, bool, error) {
	spans := tree.Collect(root, config.LabelDate)
	if len(spans) == 0 || hasTimeUnits(spans[0]) {
		return time.Time{}, false, nil
	}
	logExtraSpans(config.LabelDate, spans)
	return DateResolver{Clock: r.Clock}.Resolve(spans[0])
}

// resolveTime reads the first TIME span. Without one, a DATE span counting
// hours or minutes ("in 20 minutes") is read as a relative time instead.
func (r *Resolver) resolveTime(root *tree.Node, date time.Time) (time.Time, bool, error) {
	spans := tree.Collect(root, config.LabelTime)
	if len(spans) == 0 {
		dates := tree.Collect(root, config.LabelDate)
		if len(dates) == 0 || !hasTimeUnits(dates[0]) {
			return time.Time{}, false, nil
		}
		spans = dates[:1]
	}
	logExtraSpans(config.LabelTime, spans)
	return TimeResolver{Clock: r.Clock}.Resolve(spans[0], date)
}

// joinDateTime combines the calendar day of date with the clock of moment.
// A defaulted date follows the time reading when that rolled over to a later
// day; a resolved date is kept as is.
func (r *Resolver) joinDateTime(date, moment time.Time, dateFound bool) time.Time {
	now := r.Clock.Now()
	if shift := daysBetween(now, moment); shift != 0 && !dateFound {
		date = date.AddDate(0, 0, shift)
		logEngine().Debug(config.MsgDayShift, config.LogKeyDays, shift)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, moment.Hour(), moment.Minute(), 0, 0, date.Location())
}

func logExtraSpans(label string, spans []*tree.Node) {
	if len(spans) < 2 {
		return
	}
	logEngine().Debug(config.MsgExtraSpans,
		config.LogKeyLabel, label,
		config.LogKeyCount, len(spans)-1,
	)
}
