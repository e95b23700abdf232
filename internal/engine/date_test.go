package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-quickevent/internal/engine"
)

func TestDateResolver_Rules(t *testing.T) {
	tests := []struct {
		name string
		span string
		want time.Time
	}{
		// Relative unit
		{"Next week", "(DATE next/JJ week/NN)", day(2024, 3, 20)},
		{"Next month", "(DATE next/JJ month/NN)", day(2024, 4, 13)},
		{"Next as preposition", "(DATE next/IN week/NN)", day(2024, 3, 20)},
		{"Next week wins over weekday", "(DATE next/JJ week/NN on/IN Friday/NNP)", day(2024, 3, 20)},

		// Unit offsets
		{"Tomorrow", "(DATE tomorrow/NN)", day(2024, 3, 14)},
		{"Days", "(DATE in/IN 3/CD days/NNS)", day(2024, 3, 16)},
		{"Weeks", "(DATE in/IN 2/CD weeks/NNS)", day(2024, 3, 27)},
		{"Word numeral months", "(DATE in/IN two/CD months/NNS)", day(2024, 5, 13)},
		{"Singular year", "(DATE in/IN 1/CD year/NN)", day(2025, 3, 13)},
		{"Units add up in order", "(DATE in/IN 2/CD weeks/NNS and/CC 1/CD day/NN)", day(2024, 3, 28)},
		{"Day count follows its own numeral", "(DATE in/IN 3/CD hours/NNS and/CC 2/CD days/NNS)", day(2024, 3, 15)},

		// Numeric dates
		{"Day month year", "(DATE on/IN 15/03/2024/NUM_DATE)", day(2024, 3, 15)},
		{"Day month", "(DATE on/IN 02.04/NUM_DATE)", day(2024, 4, 2)},
		{"Two-digit year", "(DATE on/IN 1-5-25/NUM_DATE)", day(2025, 5, 1)},
		{"Past day month is literal", "(DATE on/IN 01/02/NUM_DATE)", day(2024, 2, 1)},

		// Day of month
		{"Ordinal ahead", "(DATE the/DT 15th/JJ)", day(2024, 3, 15)},
		{"Ordinal passed rolls a month", "(DATE the/DT 5th/JJ)", day(2024, 4, 5)},
		{"Cardinal today", "(DATE on/IN 13/CD)", day(2024, 3, 13)},
		{"Word ordinal", "(DATE the/DT first/JJ)", day(2024, 4, 1)},

		// Weekday
		{"Weekday ahead", "(DATE next/JJ Tuesday/NNP)", day(2024, 3, 19)},
		{"Same weekday is a week away", "(DATE on/IN Wednesday/NNP)", day(2024, 3, 20)},
		{"Sunday", "(DATE on/IN Sunday/NNP)", day(2024, 3, 17)},
		{"Abbreviation", "(DATE on/IN Fri/NNP)", day(2024, 3, 15)},

		// Month and day
		{"Later this month", "(DATE on/IN 20/CD March/NNP)", day(2024, 3, 20)},
		{"Passed this month", "(DATE on/IN March/NNP 3rd/JJ)", day(2025, 3, 3)},
		{"Wraps the year", "(DATE on/IN Jan/NNP 5th/JJ)", day(2025, 1, 5)},
		{"Later this year", "(DATE on/IN December/NNP 25th/JJ)", day(2024, 12, 25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := engine.DateResolver{Clock: at(wednesday)}
			got, ok, err := r.Resolve(mustTree(t, tt.span))

			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateResolver_NoSignal(t *testing.T) {
	spans := []string{
		"(DATE soon/RB)",
		"(DATE in/IN March/NNP)",
		"(DATE next/JJ time/NN)",
	}
	for _, span := range spans {
		r := engine.DateResolver{Clock: at(wednesday)}
		_, ok, err := r.Resolve(mustTree(t, span))
		assert.NoError(t, err, span)
		assert.False(t, ok, span)
	}
}

func TestDateResolver_Errors(t *testing.T) {
	tests := []struct {
		name    string
		span    string
		wantErr error
	}{
		{"Two numeric dates", "(DATE 1/2/NUM_DATE or/CC 3/4/NUM_DATE)", engine.ErrAmbiguousInput},
		{"Two ordinals", "(DATE the/DT 15th/JJ or/CC 16th/JJ)", engine.ErrAmbiguousInput},
		{"Two cardinals", "(DATE on/IN 3/CD or/CC 4/CD)", engine.ErrAmbiguousInput},
		{"Two markers with a month", "(DATE on/IN March/NNP 3rd/JJ and/CC 4th/JJ)", engine.ErrAmbiguousInput},
		{"No such day", "(DATE on/IN 31/04/NUM_DATE)", engine.ErrInvalidInput},
		{"No such month", "(DATE on/IN 12/13/NUM_DATE)", engine.ErrInvalidInput},
		{"Day beyond any month", "(DATE the/DT 40th/JJ)", engine.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := engine.DateResolver{Clock: at(wednesday)}
			_, ok, err := r.Resolve(mustTree(t, tt.span))

			require.Error(t, err)
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, engine.IsInputError(err))
		})
	}
}

func TestDateResolver_MonthArithmeticClamps(t *testing.T) {
	r := engine.DateResolver{Clock: at(time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC))}
	got, ok, err := r.Resolve(mustTree(t, "(DATE next/JJ month/NN)"))

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, day(2024, 2, 29), got, "Jan 31 + 1 month lands on the last day of February")
}

// A weekday alone always resolves 1 to 7 days ahead, never today.
func TestDateResolver_WeekdayProperty(t *testing.T) {
	names := map[string]time.Weekday{
		"Monday":    time.Monday,
		"Tuesday":   time.Tuesday,
		"Wednesday": time.Wednesday,
		"Thursday":  time.Thursday,
		"Friday":    time.Friday,
		"Saturday":  time.Saturday,
		"Sunday":    time.Sunday,
	}

	for offset := 0; offset < 14; offset++ {
		now := wednesday.AddDate(0, 0, offset)
		today := day(now.Year(), now.Month(), now.Day())
		for name, weekday := range names {
			r := engine.DateResolver{Clock: at(now)}
			got, ok, err := r.Resolve(mustTree(t, fmt.Sprintf("(DATE on/IN %s/NNP)", name)))
			require.NoError(t, err)
			require.True(t, ok)

			ahead := int(got.Sub(today).Hours() / 24)
			assert.Equal(t, weekday, got.Weekday(), "%s from %s", name, today.Format(time.DateOnly))
			assert.GreaterOrEqual(t, ahead, 1)
			assert.LessOrEqual(t, ahead, 7)
		}
	}
}

// A bare day-of-month resolves to this month unless it has already passed.
func TestDateResolver_DayOfMonthProperty(t *testing.T) {
	for today := 1; today <= 28; today++ {
		now := time.Date(2024, 3, today, 9, 0, 0, 0, time.UTC)
		for target := 1; target <= 28; target++ {
			r := engine.DateResolver{Clock: at(now)}
			got, ok, err := r.Resolve(mustTree(t, fmt.Sprintf("(DATE the/DT %dth/JJ)", target)))
			require.NoError(t, err)
			require.True(t, ok)

			wantMonth := time.March
			if target < today {
				wantMonth = time.April
			}
			assert.Equal(t, day(2024, wantMonth, target), got, "target %d on day %d", target, today)
		}
	}
}
