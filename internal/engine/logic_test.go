package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumeral(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"7", 7, true},
		{" 12 ", 12, true},
		{"seven", 7, true},
		{"Twenty", 20, true},
		{"twenty-five", 25, true},
		{"ten-five", 0, false},
		{"twenty-zero", 0, false},
		{"7th", 0, false},
		{"lots", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumeral(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"15th", 15, true},
		{"1st", 1, true},
		{"22nd", 22, true},
		{"3rd", 3, true},
		{"third", 3, true},
		{"next", 0, false},
		{"15", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseOrdinal(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddMonths_Clamps(t *testing.T) {
	tests := []struct {
		from time.Time
		n    int
		want time.Time
	}{
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC), 3, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), 2, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, addMonths(tt.from, tt.n), tt.from.Format(time.DateOnly))
	}
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), addYears(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 1))
}

func TestMondayIndex(t *testing.T) {
	monday := time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, mondayIndex(monday.AddDate(0, 0, i)))
	}
}

func TestDaysBetween_IgnoresClock(t *testing.T) {
	a := time.Date(2024, 3, 13, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 3, 14, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, daysBetween(a, b))
	assert.Equal(t, -1, daysBetween(b, a))
	assert.Equal(t, 0, daysBetween(a, a.Add(-time.Hour)))
}

func TestCivilDate(t *testing.T) {
	_, err := civilDate(2023, time.February, 29, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidInput)

	d, err := civilDate(2024, time.February, 29, time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)
}

func TestRedactURL(t *testing.T) {
	u, err := checkSourceURL("https://sara:pw@dav.example.com/books/main.vcf?token=abc#frag")
	assert.NoError(t, err)
	assert.Equal(t, "https://dav.example.com/books/main.vcf", redactURL(u))
}
