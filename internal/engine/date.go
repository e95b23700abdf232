package engine

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

var digitGroups = regexp.MustCompile(`\d+`)

// Unit nouns understood by the date-unit offset rule.
const (
	unitDay      = "day"
	unitWeek     = "week"
	unitMonth    = "month"
	unitYear     = "year"
	wordNext     = "next"
	wordTomorrow = "tomorrow"
)

var dateUnits = map[string]string{
	"day":    unitDay,
	"days":   unitDay,
	"week":   unitWeek,
	"weeks":  unitWeek,
	"month":  unitMonth,
	"months": unitMonth,
	"year":   unitYear,
	"years":  unitYear,
}

// dateSpan holds every signal read from one DATE span. Extraction errors are
// kept rather than returned so that a rule earlier in the chain can still win.
type dateSpan struct {
	hasNext     bool
	hasTomorrow bool
	nouns       []string // NN only, in order
	units       []unitCount
	numDates    []string
	numDateErr  error
	dayMarkers  []int
	markerErr   error
	months      []int
	weekdays    []int
}

type unitCount struct {
	unit  string
	count int
}

func readDateSpan(span *tree.Node) *dateSpan {
	s := &dateSpan{}

	for _, w := range append(tree.TagsOf(span, config.TagAdjective), tree.TagsOf(span, config.TagPreposition)...) {
		if strings.EqualFold(w, wordNext) {
			s.hasNext = true
		}
	}
	s.nouns = lower(tree.TagsOf(span, config.TagNoun))

	s.hasTomorrow = slices.Contains(commonNouns(span), wordTomorrow)
	s.units = pairUnits(span, dateUnits)

	s.numDates = tree.TagsOf(span, config.TagNumDate)
	if len(s.numDates) > 1 {
		s.numDateErr = ambiguous(config.ErrManyNumDates)
	}

	s.dayMarkers, s.markerErr = readDayMarkers(span)

	proper := tree.TagsOf(span, config.TagProperNoun)
	s.months = lookupAll(proper, monthNames)
	s.weekdays = lookupAll(proper, weekdayNames)
	return s
}

// readDayMarkers returns the day-of-month named by an ordinal adjective
// ("15th") or, failing that, by a cardinal. Adjectives that are not ordinals
// ("next") are ignored.
func readDayMarkers(span *tree.Node) ([]int, error) {
	var ordinals []int
	for _, adj := range tree.TagsOf(span, config.TagAdjective) {
		if n, ok := parseOrdinal(adj); ok {
			ordinals = append(ordinals, n)
		}
	}
	if len(ordinals) > 1 {
		return nil, ambiguous(config.ErrManyDayMarkers)
	}
	if len(ordinals) == 1 {
		return ordinals, nil
	}

	var nums []int
	for _, cd := range tree.TagsOf(span, config.TagCardinal) {
		if n, ok := parseOrdinal(cd); ok {
			nums = append(nums, n)
		} else if n, ok := parseNumeral(cd); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) > 1 {
		return nil, ambiguous(config.ErrManyDayMarkers)
	}
	return nums, nil
}

// dateRule is one step of the date cascade: applies decides whether the rule
// owns the span, resolve computes the date from "today".
type dateRule struct {
	name    string
	applies func(s *dateSpan) (bool, error)
	resolve func(today time.Time, s *dateSpan) (time.Time, error)
}

// dateRules is evaluated in order; the first applicable rule wins.
var dateRules = []dateRule{
	{name: "relative_unit", applies: appliesRelativeUnit, resolve: resolveRelativeUnit},
	{name: "unit_offset", applies: appliesUnitOffset, resolve: resolveUnitOffset},
	{name: "numeric_date", applies: appliesNumericDate, resolve: resolveNumericDate},
	{name: "day_of_month", applies: appliesDayOfMonth, resolve: resolveDayOfMonth},
	{name: "weekday", applies: appliesWeekday, resolve: resolveWeekday},
	{name: "month_day", applies: appliesMonthDay, resolve: resolveMonthDay},
}

// DateResolver turns a DATE span into a calendar date.
type DateResolver struct {
	Clock Clock
}

// Resolve returns the date named by span at midnight. ok is false when the
// span carries no usable date signal.
func (r DateResolver) Resolve(span *tree.Node) (date time.Time, ok bool, err error) {
	today := startOfDay(r.Clock.Now())
	s := readDateSpan(span)

	for _, rule := range dateRules {
		applies, err := rule.applies(s)
		if err != nil {
			return time.Time{}, false, err
		}
		if !applies {
			continue
		}
		d, err := rule.resolve(today, s)
		if err != nil {
			return time.Time{}, false, err
		}
		logEngine().Debug(config.MsgDateRule,
			config.LogKeyRule, rule.name,
			config.LogKeyDate, d.Format(time.DateOnly),
		)
		return d, true, nil
	}
	return time.Time{}, false, nil
}

// 1. "next week", "next month"

func appliesRelativeUnit(s *dateSpan) (bool, error) {
	return s.hasNext && (slices.Contains(s.nouns, unitWeek) || slices.Contains(s.nouns, unitMonth)), nil
}

func resolveRelativeUnit(today time.Time, s *dateSpan) (time.Time, error) {
	d := today
	for _, n := range s.nouns {
		switch n {
		case unitWeek:
			d = d.AddDate(0, 0, config.DaysPerWeek)
		case unitMonth:
			d = addMonths(d, 1)
		}
	}
	return d, nil
}

// 2. "tomorrow", "in 3 days", "in 2 weeks and 1 day"

func appliesUnitOffset(s *dateSpan) (bool, error) {
	return s.hasTomorrow || len(s.units) > 0, nil
}

func resolveUnitOffset(today time.Time, s *dateSpan) (time.Time, error) {
	if s.hasTomorrow {
		return today.AddDate(0, 0, 1), nil
	}
	d := today
	for _, u := range s.units {
		switch u.unit {
		case unitDay:
			d = d.AddDate(0, 0, u.count)
		case unitWeek:
			d = d.AddDate(0, 0, config.DaysPerWeek*u.count)
		case unitMonth:
			d = addMonths(d, u.count)
		case unitYear:
			d = addYears(d, u.count)
		}
	}
	return d, nil
}

// 3. "15/03", "15.03.24", "15-03-2024"

func appliesNumericDate(s *dateSpan) (bool, error) {
	if s.numDateErr != nil {
		return false, s.numDateErr
	}
	if len(s.numDates) != 1 {
		return false, nil
	}
	groups := len(digitGroups.FindAllString(s.numDates[0], -1))
	return groups == 2 || groups == 3, nil
}

func resolveNumericDate(today time.Time, s *dateSpan) (time.Time, error) {
	var nums []int
	for _, g := range digitGroups.FindAllString(s.numDates[0], -1) {
		n, _ := strconv.Atoi(g)
		nums = append(nums, n)
	}
	year := today.Year()
	if len(nums) == 3 {
		year = nums[2]
		if year < 100 {
			year += config.CenturyPrefix
		}
	}
	return civilDate(year, time.Month(nums[1]), nums[0], today.Location())
}

// 4. "the 15th"

func appliesDayOfMonth(s *dateSpan) (bool, error) {
	if s.markerErr != nil {
		return false, s.markerErr
	}
	return len(s.months) == 0 && len(s.dayMarkers) == 1, nil
}

func resolveDayOfMonth(today time.Time, s *dateSpan) (time.Time, error) {
	day := s.dayMarkers[0]
	year, month := today.Year(), today.Month()
	if today.Day() > day {
		next := time.Date(year, month+1, 1, 0, 0, 0, 0, today.Location())
		year, month = next.Year(), next.Month()
	}
	return civilDate(year, month, day, today.Location())
}

// 5. "Tuesday", "next Fri"

func appliesWeekday(s *dateSpan) (bool, error) {
	return len(s.months) == 0 && len(s.dayMarkers) == 0 && len(s.weekdays) > 0, nil
}

func resolveWeekday(today time.Time, s *dateSpan) (time.Time, error) {
	ahead := s.weekdays[0] - mondayIndex(today)
	if ahead <= 0 {
		ahead += config.DaysPerWeek
	}
	return today.AddDate(0, 0, ahead), nil
}

// 6. "March 3rd", "3 Mar"

func appliesMonthDay(s *dateSpan) (bool, error) {
	return len(s.months) > 0 && len(s.dayMarkers) > 0, nil
}

func resolveMonthDay(today time.Time, s *dateSpan) (time.Time, error) {
	target := time.Month(s.months[0] + 1)
	day := s.dayMarkers[0]

	ahead := int(target - today.Month())
	if ahead < 0 {
		ahead += 12
	}
	if ahead == 0 && today.Day() > day {
		ahead += 12
	}
	first := time.Date(today.Year(), today.Month()+time.Month(ahead), 1, 0, 0, 0, 0, today.Location())
	return civilDate(first.Year(), first.Month(), day, today.Location())
}

// commonNouns returns the lower-cased singular and plural nouns of span in
// document order.
func commonNouns(span *tree.Node) []string {
	var out []string
	for _, l := range tree.Leaves(span) {
		if l.Tag == config.TagNoun || l.Tag == config.TagNounPlural {
			out = append(out, strings.ToLower(l.Text))
		}
	}
	return out
}

// pairUnits walks span in order and pairs each unit noun with the numeral
// right before it ("2 days and 3 hours"). A noun in between, unit or not,
// consumes the pending numeral, so "5 pm for 2 hours" counts 2 hours.
// Units without a numeral are dropped.
func pairUnits(span *tree.Node, units map[string]string) []unitCount {
	var out []unitCount
	count, pending := 0, false
	for _, l := range tree.Leaves(span) {
		switch l.Tag {
		case config.TagCardinal:
			word, _ := splitMeridiem(l.Text)
			count, pending = parseNumeral(word)
		case config.TagNoun, config.TagNounPlural:
			if u, ok := units[strings.ToLower(l.Text)]; ok && pending {
				out = append(out, unitCount{unit: u, count: count})
			}
			pending = false
		}
	}
	return out
}

func lower(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
