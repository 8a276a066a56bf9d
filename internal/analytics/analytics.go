// Package analytics aggregates raw logs into the dashboard snapshot and the
// chart series served by the HTTP API.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"kasegi/internal/core"
	"kasegi/internal/storage"
)

// Store is the subset of the repository the engine reads from.
type Store interface {
	ListSources(ctx context.Context) ([]core.IncomeSource, error)
	GetSettings(ctx context.Context) (core.Settings, error)
	MonthStats(ctx context.Context, sourceID int64, monthPrefix string) (storage.SourceMonthStats, error)
	DailyTotals(ctx context.Context, since string) ([]storage.DailyTotal, error)
	MoodStats(ctx context.Context, since string) ([]storage.MoodStat, error)
	SourcePerformances(ctx context.Context, monthPrefix string) ([]storage.SourcePerformance, error)
	CountLogDays(ctx context.Context, start, end string) (int, error)
	CountLogsOnDate(ctx context.Context, date string) (int, error)
}

// Engine computes dashboard and analytics payloads.
type Engine struct {
	store Store

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewEngine creates an Engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, Now: time.Now}
}

// AlertLevel grades how far behind linear pace a source is.
type AlertLevel string

const (
	AlertNone   AlertLevel = "none"
	AlertLow    AlertLevel = "low"
	AlertMedium AlertLevel = "medium"
	AlertHigh   AlertLevel = "high"
)

// SourceProgress is one source's slice of the dashboard.
type SourceProgress struct {
	Source            core.IncomeSource `json:"source"`
	EarnedAmount      core.Money        `json:"earned_amount"`
	ProgressPercent   float64           `json:"progress_percent"`
	TaskCount         int64             `json:"task_count"`
	AvgMood           float64           `json:"avg_mood"`
	RemainingAmount   core.Money        `json:"remaining_amount"`
	RequiredDailyPace core.Money        `json:"required_daily_pace"`
	AlertLevel        AlertLevel        `json:"alert_level"`
	IsBehindTarget    bool              `json:"is_behind_target"`
}

// RecoveryPlan describes how a behind-target source can still hit its goal.
type RecoveryPlan struct {
	SourceName     string     `json:"source_name"`
	Shortfall      core.Money `json:"shortfall"`
	CatchUpMessage string     `json:"catch_up_message"`
	Likelihood     float64    `json:"likelihood"`
	Severity       AlertLevel `json:"severity"`
}

// GlobalSummary condenses the whole month into a few numbers.
type GlobalSummary struct {
	TotalBehindTarget  int        `json:"total_behind_target"`
	AvgCompletionRate  float64    `json:"avg_completion_rate"`
	TotalRequiredDaily core.Money `json:"total_required_daily"`
	MonthlyIncomeGoal  core.Money `json:"monthly_income_goal"`
}

// Dashboard is the snapshot the client shell fetches and holds.
type Dashboard struct {
	TotalEarned     core.Money       `json:"total_earned"`
	TotalGoal       core.Money       `json:"total_goal"`
	OverallProgress float64          `json:"overall_progress"`
	CurrentDay      int              `json:"current_day"`
	DaysInMonth     int              `json:"days_in_month"`
	DaysRemaining   int              `json:"days_remaining"`
	Warning         string           `json:"warning,omitempty"`
	Sources         []SourceProgress `json:"sources"`
	RecoveryPlans   []RecoveryPlan   `json:"recovery_plans"`
	GlobalSummary   GlobalSummary    `json:"global_summary"`
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func alertLevel(progress, expected float64) AlertLevel {
	switch {
	case progress < expected-20:
		return AlertHigh
	case progress < expected-10:
		return AlertMedium
	case progress < expected:
		return AlertLow
	default:
		return AlertNone
	}
}

// Dashboard builds the full dashboard snapshot for the current month.
func (e *Engine) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := e.Now()
	today := now.Format(core.DateFormat)
	monthPrefix := now.Format("2006-01")

	var (
		sources    []core.IncomeSource
		settings   core.Settings
		todayCount int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sources, err = e.store.ListSources(gctx)
		if err != nil {
			return fmt.Errorf("list sources: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = e.store.GetSettings(gctx)
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		todayCount, err = e.store.CountLogsOnDate(gctx, today)
		if err != nil {
			return fmt.Errorf("count today logs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		CurrentDay:  now.Day(),
		DaysInMonth: daysInMonth(now),
	}
	d.DaysRemaining = d.DaysInMonth - d.CurrentDay
	expectedProgress := float64(d.CurrentDay) / float64(d.DaysInMonth) * 100

	var completionSum float64
	totalRequiredDaily := core.Zero()

	for _, src := range sources {
		stats, err := e.store.MonthStats(ctx, src.ID, monthPrefix)
		if err != nil {
			return nil, err
		}

		progress := stats.Earned.PercentOf(src.GoalAmount)
		remaining := src.GoalAmount.Sub(stats.Earned)
		if remaining.IsNegative() {
			remaining = core.Zero()
		}
		pace := remaining.DivInt(int64(max(1, d.DaysRemaining)))

		sp := SourceProgress{
			Source:            src,
			EarnedAmount:      stats.Earned,
			ProgressPercent:   progress,
			TaskCount:         stats.TaskCount,
			AvgMood:           stats.AvgMood,
			RemainingAmount:   remaining,
			RequiredDailyPace: pace,
			AlertLevel:        alertLevel(progress, expectedProgress),
			IsBehindTarget:    progress < expectedProgress,
		}
		d.Sources = append(d.Sources, sp)
		d.TotalEarned = d.TotalEarned.Add(stats.Earned)
		d.TotalGoal = d.TotalGoal.Add(src.GoalAmount)
		completionSum += progress / 100
		totalRequiredDaily = totalRequiredDaily.Add(pace)

		if sp.AlertLevel == AlertMedium || sp.AlertLevel == AlertHigh {
			d.RecoveryPlans = append(d.RecoveryPlans, e.recoveryPlan(src, sp, d))
		}
	}

	d.OverallProgress = d.TotalEarned.PercentOf(d.TotalGoal)
	d.GlobalSummary = GlobalSummary{
		MonthlyIncomeGoal:  settings.MonthlyIncomeGoal,
		TotalRequiredDaily: totalRequiredDaily,
	}
	for _, sp := range d.Sources {
		if sp.IsBehindTarget {
			d.GlobalSummary.TotalBehindTarget++
		}
	}
	if len(d.Sources) > 0 {
		d.GlobalSummary.AvgCompletionRate = completionSum / float64(len(d.Sources))
	}

	if todayCount == 0 {
		if d.OverallProgress < 70 {
			missed := d.TotalGoal.Sub(d.TotalEarned)
			d.Warning = fmt.Sprintf("No tasks logged today. Still %s short of this month's goal.", missed)
		} else {
			d.Warning = "No tasks logged today yet."
		}
	}

	return d, nil
}

func (e *Engine) recoveryPlan(src core.IncomeSource, sp SourceProgress, d *Dashboard) RecoveryPlan {
	plan := RecoveryPlan{
		SourceName: src.Name,
		Shortfall:  sp.RemainingAmount,
		Severity:   sp.AlertLevel,
	}

	currentDailyAvg := sp.EarnedAmount.DivInt(int64(max(1, d.CurrentDay)))
	if src.Type == core.SourceFixedUnit && src.UnitPrice != nil && !src.UnitPrice.IsZero() {
		multiplier := 0.0
		if !currentDailyAvg.IsZero() {
			multiplier = sp.RequiredDailyPace.Float() / currentDailyAvg.Float()
		} else {
			unitsPerDay := sp.RequiredDailyPace.Float() / src.UnitPrice.Float()
			plan.CatchUpMessage = fmt.Sprintf("Complete %.1f tasks/day for the next %d days", unitsPerDay, d.DaysRemaining)
		}
		if plan.CatchUpMessage == "" {
			plan.CatchUpMessage = fmt.Sprintf("Do %.1fx the current daily tasks for %d days", multiplier, d.DaysRemaining)
		}
	} else {
		plan.CatchUpMessage = fmt.Sprintf("Earn %s/day for the next %d days", sp.RequiredDailyPace, d.DaysRemaining)
	}

	// Likelihood: extrapolate the current pace to month end.
	if !src.GoalAmount.IsZero() {
		projected := currentDailyAvg.Mul(int64(d.DaysInMonth))
		plan.Likelihood = min(100, projected.PercentOf(src.GoalAmount))
	}
	return plan
}

// ScheduleStatus classifies the month's working pace by logged days.
type ScheduleStatus struct {
	Status          string  `json:"status"` // ahead | on_track | behind | critical
	ExpectedByToday float64 `json:"expected_by_today"`
	ActualDays      int     `json:"actual_days"`
	DaysBehind      int     `json:"days_behind"`
	DaysAhead       int     `json:"days_ahead"`
}

// Analytics is the chart-oriented payload for the analytics view.
type Analytics struct {
	Period            string                        `json:"period"` // week | month
	DailyIncomeTrend  []storage.DailyTotal          `json:"daily_income_trend"`
	MoodCorrelation   []storage.MoodStat            `json:"mood_productivity_correlation"`
	IncomePerformance []storage.SourcePerformance   `json:"income_performance"`
	Schedule          ScheduleStatus                `json:"schedule_status"`
}

// Analytics builds the analytics payload. Period is "week" (7 days) or
// "month" (30 days); anything else falls back to week.
func (e *Engine) Analytics(ctx context.Context, period string) (*Analytics, error) {
	now := e.Now()
	days := 7
	if period == "month" {
		days = 30
	} else {
		period = "week"
	}
	since := now.AddDate(0, 0, -(days - 1)).Format(core.DateFormat)
	moodSince := now.AddDate(0, 0, -29).Format(core.DateFormat)
	monthPrefix := now.Format("2006-01")

	a := &Analytics{Period: period}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trend, err := e.store.DailyTotals(gctx, since)
		if err != nil {
			return err
		}
		a.DailyIncomeTrend = trend
		return nil
	})
	g.Go(func() error {
		mood, err := e.store.MoodStats(gctx, moodSince)
		if err != nil {
			return err
		}
		a.MoodCorrelation = mood
		return nil
	})
	g.Go(func() error {
		perf, err := e.store.SourcePerformances(gctx, monthPrefix)
		if err != nil {
			return err
		}
		a.IncomePerformance = perf
		return nil
	})
	g.Go(func() error {
		sched, err := e.Schedule(gctx)
		if err != nil {
			return err
		}
		a.Schedule = sched
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return a, nil
}

// Schedule compares the number of days with logged work this month against
// the pace implied by the monthly target days from settings.
func (e *Engine) Schedule(ctx context.Context) (ScheduleStatus, error) {
	now := e.Now()
	monthStart := now.AddDate(0, 0, -(now.Day() - 1)).Format(core.DateFormat)
	today := now.Format(core.DateFormat)

	var (
		settings core.Settings
		actual   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		settings, err = e.store.GetSettings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		actual, err = e.store.CountLogDays(gctx, monthStart, today)
		return err
	})
	if err := g.Wait(); err != nil {
		return ScheduleStatus{}, err
	}

	expected := float64(settings.MonthlyTargetDays) / float64(daysInMonth(now)) * float64(now.Day())

	st := ScheduleStatus{
		ExpectedByToday: math.Round(expected*10) / 10,
		ActualDays:      actual,
	}
	if behind := math.Ceil(expected - float64(actual)); behind > 0 {
		st.DaysBehind = int(behind)
	}
	if ahead := math.Ceil(float64(actual) - expected); ahead > 0 {
		st.DaysAhead = int(ahead)
	}

	switch {
	case st.DaysBehind > 2:
		st.Status = "critical"
	case st.DaysBehind > 0:
		st.Status = "behind"
	case st.DaysAhead > 1:
		st.Status = "ahead"
	default:
		st.Status = "on_track"
	}

	return st, nil
}
