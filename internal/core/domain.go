package core

import (
	"errors"
	"time"
)

// SourceType classifies how income from a source is earned and logged.
type SourceType string

const (
	// SourceFixedUnit is piecework: each completed task is worth the
	// source's unit price, so log amounts are derived from task counts.
	SourceFixedUnit SourceType = "fixed_unit"
	// SourceDailyInput is income reported as a free amount per log entry.
	SourceDailyInput SourceType = "daily_input"
	// SourcePassive is income that arrives without tasks; logged amounts
	// are taken as-is.
	SourcePassive SourceType = "passive"
)

// Valid reports whether t is one of the known source types.
func (t SourceType) Valid() bool {
	switch t {
	case SourceFixedUnit, SourceDailyInput, SourcePassive:
		return true
	}
	return false
}

var (
	ErrInvalidSourceType = errors.New("invalid income source type")
	ErrNameRequired      = errors.New("name is required")
	ErrGoalRequired      = errors.New("goal amount must be positive")
	ErrUnitPriceRequired = errors.New("unit price is required for fixed_unit sources")
	ErrTaskNameRequired  = errors.New("task name is required")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")
	ErrInvalidMood       = errors.New("mood score must be between 1 and 5")
	ErrSourceNotFound    = errors.New("income source not found")
	ErrLogNotFound       = errors.New("daily log not found")
)

// IncomeSource is one stream of income tracked against a monthly goal.
type IncomeSource struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Type        SourceType `json:"type"`
	UnitPrice   *Money     `json:"unit_price,omitempty"`
	GoalAmount  Money      `json:"goal_amount"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks the type-specific invariants of a source.
func (s IncomeSource) Validate() error {
	if s.Name == "" {
		return ErrNameRequired
	}
	if !s.Type.Valid() {
		return ErrInvalidSourceType
	}
	if s.GoalAmount.IsZero() || s.GoalAmount.IsNegative() {
		return ErrGoalRequired
	}
	if s.Type == SourceFixedUnit && (s.UnitPrice == nil || s.UnitPrice.IsZero()) {
		return ErrUnitPriceRequired
	}
	return nil
}

// DailyLog is one recorded task or income entry for a source on a given day.
type DailyLog struct {
	ID              int64     `json:"id"`
	SourceID        int64     `json:"source_id"`
	SourceName      string    `json:"source_name,omitempty"`
	Date            string    `json:"date"` // YYYY-MM-DD
	TaskName        string    `json:"task_name"`
	TaskCount       int64     `json:"task_count,omitempty"`
	Amount          Money     `json:"amount"`
	ProgressPercent int       `json:"progress_percent"`
	MoodScore       int       `json:"mood_score"`
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate checks log field ranges. Amount derivation happens separately in
// DeriveAmount because it needs the source.
func (l DailyLog) Validate() error {
	if l.TaskName == "" {
		return ErrTaskNameRequired
	}
	if l.ProgressPercent < 0 || l.ProgressPercent > 100 {
		return ErrInvalidProgress
	}
	if l.MoodScore < 1 || l.MoodScore > 5 {
		return ErrInvalidMood
	}
	return nil
}

// DeriveAmount computes the earned amount for a log against its source.
// Fixed-unit sources earn unit price times task count; the other types
// take the reported amount as-is.
func DeriveAmount(src IncomeSource, taskCount int64, reported Money) Money {
	if src.Type == SourceFixedUnit && src.UnitPrice != nil {
		return src.UnitPrice.Mul(taskCount)
	}
	return reported
}

// GoalChange records a change of a source's monthly goal amount.
type GoalChange struct {
	ID        int64     `json:"id"`
	SourceID  int64     `json:"source_id"`
	OldGoal   Money     `json:"old_goal"`
	NewGoal   Money     `json:"new_goal"`
	ChangedAt time.Time `json:"changed_at"`
}

// Settings holds the user-level configuration stored server-side.
type Settings struct {
	MonthlyIncomeGoal Money  `json:"monthly_income_goal"`
	// MonthlyTargetDays is how many days per month the user aims to log work.
	MonthlyTargetDays int    `json:"monthly_target_days"`
	Currency          string `json:"currency"`
}

// DefaultSettings mirrors the values seeded by the initial migration.
func DefaultSettings() Settings {
	return Settings{
		MonthlyIncomeGoal: MoneyFromFloat(70000),
		MonthlyTargetDays: 30,
		Currency:          "yen",
	}
}

// DateFormat is the wire and storage format for log dates.
const DateFormat = "2006-01-02"

// Today returns the current date in storage format.
func Today() string {
	return time.Now().Format(DateFormat)
}
