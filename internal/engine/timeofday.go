package engine

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

type meridiem int

const (
	meridiemNone meridiem = iota
	meridiemAM
	meridiemPM
)

const (
	unitHours   = "hours"
	unitMinutes = "minutes"
	wordPast    = "past"
	suffixAM    = "am"
	suffixPM    = "pm"
)

var (
	amWords = []string{suffixAM, "morning"}
	pmWords = []string{suffixPM, "afternoon", "evening"}
)

var timeUnits = map[string]string{
	"minutes": unitMinutes,
	"minute":  unitMinutes,
	"mins":    unitMinutes,
	"min":     unitMinutes,
	"hours":   unitHours,
	"hour":    unitHours,
	"hrs":     unitHours,
	"hr":      unitHours,
}

// timeSpan holds the signals read from one TIME span.
type timeSpan struct {
	numerals []string
	meridiem meridiem
	units    []unitCount
}

// hasTimeUnits reports whether span counts hours or minutes.
func hasTimeUnits(span *tree.Node) bool {
	for _, n := range commonNouns(span) {
		if _, ok := timeUnits[n]; ok {
			return true
		}
	}
	return false
}

func readTimeSpan(span *tree.Node) (*timeSpan, error) {
	s := &timeSpan{}
	am, pm := false, false

	// "2pm" often reaches us as a single cardinal.
	for _, cd := range tree.TagsOf(span, config.TagCardinal) {
		word, m := splitMeridiem(cd)
		am = am || m == meridiemAM
		pm = pm || m == meridiemPM
		s.numerals = append(s.numerals, word)
	}

	nouns := lower(tree.TagsOf(span, config.TagNoun))
	for _, n := range nouns {
		am = am || slices.Contains(amWords, n)
		pm = pm || slices.Contains(pmWords, n)
	}
	switch {
	case am && pm:
		return nil, ambiguous(config.ErrBothMeridiems)
	case am:
		s.meridiem = meridiemAM
	case pm:
		s.meridiem = meridiemPM
	}

	if slices.Contains(nouns, wordPast) {
		slices.Reverse(s.numerals)
	}

	s.units = pairUnits(span, timeUnits)
	return s, nil
}

// splitMeridiem separates a trailing am/pm from a numeral ("2pm", "9:30am").
func splitMeridiem(cd string) (string, meridiem) {
	low := strings.ToLower(cd)
	switch {
	case len(low) > len(suffixAM) && strings.HasSuffix(low, suffixAM):
		return strings.TrimSuffix(low, suffixAM), meridiemAM
	case len(low) > len(suffixPM) && strings.HasSuffix(low, suffixPM):
		return strings.TrimSuffix(low, suffixPM), meridiemPM
	}
	return low, meridiemNone
}

// colonReading returns the hour and minute of the single "hh:mm" numeral.
func (s *timeSpan) colonReading() (hour, minute int, ok bool, err error) {
	var found []string
	for _, n := range s.numerals {
		if strings.Contains(n, ":") {
			found = append(found, n)
		}
	}
	if len(found) != 1 {
		return 0, 0, false, nil
	}
	h, m, _ := strings.Cut(found[0], ":")
	hour, errH := strconv.Atoi(h)
	minute, errM := strconv.Atoi(m)
	if errH != nil || errM != nil {
		return 0, 0, false, invalid(config.ErrBadClockTime, found[0])
	}
	return hour, minute, true, nil
}

// TimeResolver turns a TIME span into a wall-clock moment.
type TimeResolver struct {
	Clock Clock
}

// Resolve returns the moment named by span. date is the already resolved
// (or defaulted) event date and only steers the reading of times that carry
// no am/pm marker. The returned moment lies on today or, once rolled
// forward, on a later day; ok is false when the span has no usable numerals.
func (r TimeResolver) Resolve(span *tree.Node, date time.Time) (moment time.Time, ok bool, err error) {
	s, err := readTimeSpan(span)
	if err != nil {
		return time.Time{}, false, err
	}

	hour, minute, colon, err := s.colonReading()
	if err != nil {
		return time.Time{}, false, err
	}
	if colon {
		return r.absolute(hour, minute, s.meridiem, date)
	}

	if len(s.units) > 0 {
		return r.relative(s.units), true, nil
	}

	nums := parseNumerals(s.numerals)
	switch len(nums) {
	case 0:
		return time.Time{}, false, nil
	case 1:
		return r.absolute(nums[0], 0, s.meridiem, date)
	default:
		return r.absolute(nums[0], nums[1], s.meridiem, date)
	}
}

// relative adds the counted hours and minutes to the current minute.
func (r TimeResolver) relative(units []unitCount) time.Time {
	t := r.Clock.Now().Truncate(time.Minute)
	for _, u := range units {
		switch u.unit {
		case unitHours:
			t = t.Add(time.Duration(u.count) * time.Hour)
		case unitMinutes:
			t = t.Add(time.Duration(u.count) * time.Minute)
		}
	}
	return t
}

// absolute reads hour[:minute] on today's calendar, then rolls it to
// tomorrow if that moment is already past.
func (r TimeResolver) absolute(hour, minute int, m meridiem, date time.Time) (time.Time, bool, error) {
	if minute < 0 || minute > 59 || hour < 0 || hour > 23 {
		return time.Time{}, false, invalid(config.ErrBadClockTime, strconv.Itoa(hour)+":"+strconv.Itoa(minute))
	}

	h := hour
	switch {
	case hour > config.HoursPerMeridiem:
		if m == meridiemAM {
			return time.Time{}, false, ambiguous(config.ErrMorningOver12)
		}
	case m == meridiemAM:
		h = hour % config.HoursPerMeridiem
	case m == meridiemPM:
		h = hour%config.HoursPerMeridiem + config.HoursPerMeridiem
	default:
		h = r.guessMeridiem(hour, minute, date)
	}

	candidate := r.onToday(h, minute)
	if r.Clock.Now().After(candidate) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, true, nil
}

// guessMeridiem picks a 24-hour reading for a bare hour of 12 or less.
//
// When the event is today and the afternoon reading is still ahead, the
// afternoon wins. When the event is on a later day, hours before
// WorkingHoursCutoff are read as afternoon hours ("meet friday at 3").
// Otherwise the hour is taken literally.
func (r TimeResolver) guessMeridiem(hour, minute int, date time.Time) int {
	afternoon := hour%config.HoursPerMeridiem + config.HoursPerMeridiem
	now := r.Clock.Now()
	switch {
	case !now.Before(date) && now.Before(r.onToday(afternoon, minute)):
		return afternoon
	case now.Before(date):
		if hour < config.WorkingHoursCutoff {
			return hour + config.HoursPerMeridiem
		}
		return hour
	default:
		return hour
	}
}

func (r TimeResolver) onToday(hour, minute int) time.Time {
	y, mo, d := r.Clock.Now().Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, r.Clock.Now().Location())
}
