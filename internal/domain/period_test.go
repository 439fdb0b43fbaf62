package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		want    Period
		wantErr bool
	}{
		{"week", PeriodWeek, false},
		{"month", PeriodMonth, false},
		{"day", "", true},
		{"", "", true},
		{"Week", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePeriod(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPeriod) {
				t.Errorf("ParsePeriod(%q) error = %v, want ErrInvalidPeriod", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePeriod(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		date   time.Time
		want   string
	}{
		{"mid-year week", PeriodWeek, time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC), "202635"},
		{"iso week of early january belongs to prior year", PeriodWeek, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "202653"},
		{"month", PeriodMonth, time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC), "202608"},
		{"single digit month padded", PeriodMonth, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "202603"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.Label(tt.date); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMonthStart(t *testing.T) {
	d := time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC)
	got := MonthStart(d)
	want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MonthStart() = %v, want %v", got, want)
	}
}

func TestPrevMonthStart(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{
			"mid month",
			time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"january wraps to december",
			time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"first of month still walks back",
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrevMonthStart(tt.date); !got.Equal(tt.want) {
				t.Errorf("PrevMonthStart() = %v, want %v", got, tt.want)
			}
		})
	}
}
