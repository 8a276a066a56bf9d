package core

import (
	"errors"
	"testing"
	"time"
)

func TestIncomeSource_Validate(t *testing.T) {
	unit := MoneyFromFloat(500)
	zero := Zero()

	tests := []struct {
		name string
		src  IncomeSource
		want error
	}{
		{
			name: "valid passive",
			src:  IncomeSource{Name: "Blog ads", Type: SourcePassive, GoalAmount: MoneyFromFloat(30000)},
		},
		{
			name: "valid fixed_unit",
			src:  IncomeSource{Name: "Tutoring", Type: SourceFixedUnit, UnitPrice: &unit, GoalAmount: MoneyFromFloat(40000)},
		},
		{
			name: "valid daily_input",
			src:  IncomeSource{Name: "Freelance", Type: SourceDailyInput, GoalAmount: MoneyFromFloat(20000)},
		},
		{
			name: "missing name",
			src:  IncomeSource{Type: SourcePassive, GoalAmount: MoneyFromFloat(1000)},
			want: ErrNameRequired,
		},
		{
			name: "bad type",
			src:  IncomeSource{Name: "x", Type: "weekly", GoalAmount: MoneyFromFloat(1000)},
			want: ErrInvalidSourceType,
		},
		{
			name: "zero goal",
			src:  IncomeSource{Name: "x", Type: SourcePassive},
			want: ErrGoalRequired,
		},
		{
			name: "negative goal",
			src:  IncomeSource{Name: "x", Type: SourcePassive, GoalAmount: MoneyFromFloat(-10)},
			want: ErrGoalRequired,
		},
		{
			name: "fixed_unit without unit price",
			src:  IncomeSource{Name: "x", Type: SourceFixedUnit, GoalAmount: MoneyFromFloat(1000)},
			want: ErrUnitPriceRequired,
		},
		{
			name: "fixed_unit with zero unit price",
			src:  IncomeSource{Name: "x", Type: SourceFixedUnit, UnitPrice: &zero, GoalAmount: MoneyFromFloat(1000)},
			want: ErrUnitPriceRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDailyLog_Validate(t *testing.T) {
	valid := DailyLog{TaskName: "lesson", ProgressPercent: 80, MoodScore: 4}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		log  DailyLog
		want error
	}{
		{"missing task name", DailyLog{MoodScore: 3}, ErrTaskNameRequired},
		{"progress below range", DailyLog{TaskName: "x", ProgressPercent: -1, MoodScore: 3}, ErrInvalidProgress},
		{"progress above range", DailyLog{TaskName: "x", ProgressPercent: 101, MoodScore: 3}, ErrInvalidProgress},
		{"mood below range", DailyLog{TaskName: "x", MoodScore: 0}, ErrInvalidMood},
		{"mood above range", DailyLog{TaskName: "x", MoodScore: 6}, ErrInvalidMood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.log.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDeriveAmount(t *testing.T) {
	unit := MoneyFromFloat(500)
	fixed := IncomeSource{Type: SourceFixedUnit, UnitPrice: &unit}
	passive := IncomeSource{Type: SourcePassive}

	if got := DeriveAmount(fixed, 3, MoneyFromFloat(9999)).Yen(); got != 1500 {
		t.Errorf("expected unit price times count (1500), got %d", got)
	}
	if got := DeriveAmount(fixed, 0, MoneyFromFloat(9999)).Yen(); got != 0 {
		t.Errorf("expected 0 for zero tasks, got %d", got)
	}
	if got := DeriveAmount(passive, 3, MoneyFromFloat(320)).Yen(); got != 320 {
		t.Errorf("expected reported amount for passive, got %d", got)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.MonthlyIncomeGoal.Yen() != 70000 {
		t.Errorf("expected default goal 70000, got %d", s.MonthlyIncomeGoal.Yen())
	}
	if s.Currency != "yen" {
		t.Errorf("expected currency yen, got %q", s.Currency)
	}
}

func TestToday(t *testing.T) {
	got := Today()
	if _, err := time.Parse(DateFormat, got); err != nil {
		t.Errorf("expected %s format, got %q: %v", DateFormat, got, err)
	}
}
