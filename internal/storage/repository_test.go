package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kasegi/internal/core"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "kasegi.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedSource(t *testing.T, repo *Repository, src core.IncomeSource) int64 {
	t.Helper()
	id, err := repo.CreateSource(context.Background(), src)
	if err != nil {
		t.Fatalf("seed source: %v", err)
	}
	return id
}

func seedLog(t *testing.T, repo *Repository, l core.DailyLog) int64 {
	t.Helper()
	id, err := repo.CreateLog(context.Background(), l)
	if err != nil {
		t.Fatalf("seed log: %v", err)
	}
	return id
}

func passiveSource(name string, goal float64) core.IncomeSource {
	return core.IncomeSource{Name: name, Type: core.SourcePassive, GoalAmount: core.MoneyFromFloat(goal)}
}

func TestRepository_SourceRoundTrip(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	unit := core.MoneyFromFloat(500)
	id := seedSource(t, repo, core.IncomeSource{
		Name:        "Tutoring",
		Type:        core.SourceFixedUnit,
		UnitPrice:   &unit,
		GoalAmount:  core.MoneyFromFloat(40000),
		Description: "evening lessons",
	})

	got, err := repo.GetSource(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Tutoring" {
		t.Errorf("expected name Tutoring, got %q", got.Name)
	}
	if got.Type != core.SourceFixedUnit {
		t.Errorf("expected fixed_unit, got %q", got.Type)
	}
	if got.UnitPrice == nil || got.UnitPrice.Yen() != 500 {
		t.Errorf("expected unit price 500, got %v", got.UnitPrice)
	}
	if got.GoalAmount.Yen() != 40000 {
		t.Errorf("expected goal 40000, got %s", got.GoalAmount)
	}
	if got.Description != "evening lessons" {
		t.Errorf("expected description, got %q", got.Description)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestRepository_GetSource_NotFound(t *testing.T) {
	repo := testRepository(t)
	if _, err := repo.GetSource(context.Background(), 99); !errors.Is(err, core.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestRepository_SourceWithoutUnitPrice(t *testing.T) {
	repo := testRepository(t)
	id := seedSource(t, repo, passiveSource("Blog ads", 30000))

	got, err := repo.GetSource(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if got.UnitPrice != nil {
		t.Errorf("expected nil unit price, got %s", got.UnitPrice)
	}
}

func TestRepository_ListSources(t *testing.T) {
	repo := testRepository(t)
	seedSource(t, repo, passiveSource("Blog ads", 30000))
	seedSource(t, repo, passiveSource("Royalties", 10000))

	sources, err := repo.ListSources(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	// Newest first.
	if sources[0].Name != "Royalties" {
		t.Errorf("expected Royalties first, got %q", sources[0].Name)
	}
}

func TestRepository_UpdateSource_RecordsGoalChange(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	id := seedSource(t, repo, passiveSource("Blog ads", 30000))

	src, err := repo.GetSource(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	src.GoalAmount = core.MoneyFromFloat(45000)
	if err := repo.UpdateSource(ctx, *src); err != nil {
		t.Fatalf("update: %v", err)
	}

	history, err := repo.GoalHistory(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 goal change, got %d", len(history))
	}
	if history[0].OldGoal.Yen() != 30000 || history[0].NewGoal.Yen() != 45000 {
		t.Errorf("expected 30000 -> 45000, got %s -> %s", history[0].OldGoal, history[0].NewGoal)
	}
}

func TestRepository_UpdateSource_SameGoalNoHistory(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	id := seedSource(t, repo, passiveSource("Blog ads", 30000))

	src, err := repo.GetSource(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	src.Description = "renamed"
	if err := repo.UpdateSource(ctx, *src); err != nil {
		t.Fatal(err)
	}

	history, err := repo.GoalHistory(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("expected no goal changes, got %d", len(history))
	}
}

func TestRepository_UpdateSource_NotFound(t *testing.T) {
	repo := testRepository(t)
	src := passiveSource("ghost", 1000)
	src.ID = 99
	if err := repo.UpdateSource(context.Background(), src); !errors.Is(err, core.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestRepository_DeleteSource_Cascades(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	id := seedSource(t, repo, passiveSource("Blog ads", 30000))
	seedLog(t, repo, core.DailyLog{
		SourceID: id, Date: "2026-08-20", TaskName: "ad revenue",
		Amount: core.MoneyFromFloat(320), MoodScore: 3,
	})

	src, _ := repo.GetSource(ctx, id)
	src.GoalAmount = core.MoneyFromFloat(35000)
	if err := repo.UpdateSource(ctx, *src); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteSource(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.GetSource(ctx, id); !errors.Is(err, core.ErrSourceNotFound) {
		t.Errorf("expected source gone, got %v", err)
	}
	logs, err := repo.ListLogs(ctx, LogFilter{SourceID: id})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 0 {
		t.Errorf("expected logs removed with source, got %d", len(logs))
	}
	history, err := repo.GoalHistory(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("expected goal history removed with source, got %d", len(history))
	}
}

func TestRepository_DeleteSource_NotFound(t *testing.T) {
	repo := testRepository(t)
	if err := repo.DeleteSource(context.Background(), 99); !errors.Is(err, core.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestRepository_LogRoundTrip(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	srcID := seedSource(t, repo, passiveSource("Blog ads", 30000))

	id := seedLog(t, repo, core.DailyLog{
		SourceID: srcID, Date: "2026-08-20", TaskName: "ad revenue",
		Amount: core.MoneyFromFloat(320), ProgressPercent: 100, MoodScore: 4,
		Note: "good day",
	})

	got, err := repo.GetLog(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TaskName != "ad revenue" {
		t.Errorf("expected task name, got %q", got.TaskName)
	}
	if got.SourceName != "Blog ads" {
		t.Errorf("expected source name joined in, got %q", got.SourceName)
	}
	if got.Amount.Yen() != 320 {
		t.Errorf("expected amount 320, got %s", got.Amount)
	}
	if got.TaskCount != 0 {
		t.Errorf("expected no task count, got %d", got.TaskCount)
	}
	if got.MoodScore != 4 || got.ProgressPercent != 100 {
		t.Errorf("expected mood 4 progress 100, got %d %d", got.MoodScore, got.ProgressPercent)
	}
}

func TestRepository_GetLog_NotFound(t *testing.T) {
	repo := testRepository(t)
	if _, err := repo.GetLog(context.Background(), 99); !errors.Is(err, core.ErrLogNotFound) {
		t.Errorf("expected ErrLogNotFound, got %v", err)
	}
}

func TestRepository_ListLogs_Filters(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	blog := seedSource(t, repo, passiveSource("Blog ads", 30000))
	tutoring := seedSource(t, repo, passiveSource("Tutoring", 40000))

	seedLog(t, repo, core.DailyLog{SourceID: blog, Date: "2026-08-20", TaskName: "a", Amount: core.MoneyFromFloat(100), MoodScore: 3})
	seedLog(t, repo, core.DailyLog{SourceID: blog, Date: "2026-08-21", TaskName: "b", Amount: core.MoneyFromFloat(200), MoodScore: 3})
	seedLog(t, repo, core.DailyLog{SourceID: tutoring, Date: "2026-08-21", TaskName: "c", Amount: core.MoneyFromFloat(300), MoodScore: 3})

	all, err := repo.ListLogs(ctx, LogFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 logs, got %d", len(all))
	}

	byDate, err := repo.ListLogs(ctx, LogFilter{Date: "2026-08-21"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byDate) != 2 {
		t.Errorf("expected 2 logs on 2026-08-21, got %d", len(byDate))
	}

	bySource, err := repo.ListLogs(ctx, LogFilter{SourceID: blog})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySource) != 2 {
		t.Errorf("expected 2 blog logs, got %d", len(bySource))
	}

	both, err := repo.ListLogs(ctx, LogFilter{Date: "2026-08-21", SourceID: blog})
	if err != nil {
		t.Fatal(err)
	}
	if len(both) != 1 || both[0].TaskName != "b" {
		t.Errorf("expected only log b, got %v", both)
	}
}

func TestRepository_UpdateLog(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	srcID := seedSource(t, repo, passiveSource("Blog ads", 30000))
	id := seedLog(t, repo, core.DailyLog{
		SourceID: srcID, Date: "2026-08-20", TaskName: "draft",
		Amount: core.MoneyFromFloat(100), MoodScore: 3,
	})

	l, err := repo.GetLog(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	l.TaskName = "published"
	l.Amount = core.MoneyFromFloat(450)
	if err := repo.UpdateLog(ctx, *l); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetLog(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.TaskName != "published" || got.Amount.Yen() != 450 {
		t.Errorf("expected updated log, got %q %s", got.TaskName, got.Amount)
	}
}

func TestRepository_UpdateLog_NotFound(t *testing.T) {
	repo := testRepository(t)
	l := core.DailyLog{ID: 99, SourceID: 1, Date: "2026-08-20", TaskName: "x", MoodScore: 3}
	if err := repo.UpdateLog(context.Background(), l); !errors.Is(err, core.ErrLogNotFound) {
		t.Errorf("expected ErrLogNotFound, got %v", err)
	}
}

func TestRepository_DeleteLog(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	srcID := seedSource(t, repo, passiveSource("Blog ads", 30000))
	id := seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-20", TaskName: "x", MoodScore: 3})

	if err := repo.DeleteLog(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteLog(ctx, id); !errors.Is(err, core.ErrLogNotFound) {
		t.Errorf("expected ErrLogNotFound on second delete, got %v", err)
	}
}

func TestRepository_Settings(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	// The initial migration seeds the defaults.
	s, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.MonthlyIncomeGoal.Yen() != 70000 || s.MonthlyTargetDays != 30 || s.Currency != "yen" {
		t.Errorf("expected seeded defaults, got %s %d %q", s.MonthlyIncomeGoal, s.MonthlyTargetDays, s.Currency)
	}

	s.MonthlyIncomeGoal = core.MoneyFromFloat(90000)
	s.MonthlyTargetDays = 22
	if err := repo.UpdateSettings(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.MonthlyIncomeGoal.Yen() != 90000 || got.MonthlyTargetDays != 22 {
		t.Errorf("expected goal 90000 over 22 days, got %s %d", got.MonthlyIncomeGoal, got.MonthlyTargetDays)
	}
}

func TestRepository_MonthStats(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	srcID := seedSource(t, repo, passiveSource("Blog ads", 30000))

	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-10", TaskName: "a", Amount: core.MoneyFromFloat(1000), MoodScore: 4})
	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-12", TaskName: "b", Amount: core.MoneyFromFloat(2000), MoodScore: 2})
	// Different month, must be excluded.
	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-07-30", TaskName: "c", Amount: core.MoneyFromFloat(9999), MoodScore: 5})

	stats, err := repo.MonthStats(ctx, srcID, "2026-08")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Earned.Yen() != 3000 {
		t.Errorf("expected earned 3000, got %s", stats.Earned)
	}
	if stats.TaskCount != 2 {
		t.Errorf("expected 2 logs, got %d", stats.TaskCount)
	}
	if stats.AvgMood != 3 {
		t.Errorf("expected avg mood 3, got %f", stats.AvgMood)
	}
}

func TestRepository_MonthStats_Empty(t *testing.T) {
	repo := testRepository(t)
	srcID := seedSource(t, repo, passiveSource("Blog ads", 30000))

	stats, err := repo.MonthStats(context.Background(), srcID, "2026-08")
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Earned.IsZero() || stats.TaskCount != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if stats.AvgMood != 3 {
		t.Errorf("expected neutral mood fallback, got %f", stats.AvgMood)
	}
}

func TestRepository_DailyTotals(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	srcID := seedSource(t, repo, passiveSource("Blog ads", 30000))

	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-20", TaskName: "a", Amount: core.MoneyFromFloat(100), MoodScore: 3})
	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-20", TaskName: "b", Amount: core.MoneyFromFloat(200), MoodScore: 3})
	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-22", TaskName: "c", Amount: core.MoneyFromFloat(500), MoodScore: 3})
	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-01", TaskName: "old", Amount: core.MoneyFromFloat(999), MoodScore: 3})

	totals, err := repo.DailyTotals(ctx, "2026-08-15")
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 days, got %d", len(totals))
	}
	if totals[0].Date != "2026-08-20" || totals[0].Total.Yen() != 300 || totals[0].TaskCount != 2 {
		t.Errorf("unexpected first day: %+v", totals[0])
	}
	if totals[1].Date != "2026-08-22" || totals[1].Total.Yen() != 500 {
		t.Errorf("unexpected second day: %+v", totals[1])
	}
}

func TestRepository_MoodStats(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	srcID := seedSource(t, repo, passiveSource("Blog ads", 30000))

	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-20", TaskName: "a", Amount: core.MoneyFromFloat(100), MoodScore: 4})
	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-21", TaskName: "b", Amount: core.MoneyFromFloat(300), MoodScore: 4})
	// Zero-amount entries are excluded from the correlation.
	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-21", TaskName: "c", MoodScore: 1})

	stats, err := repo.MoodStats(ctx, "2026-08-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 mood bucket, got %d", len(stats))
	}
	if stats[0].MoodScore != 4 || stats[0].AvgEarning.Yen() != 200 || stats[0].Count != 2 {
		t.Errorf("unexpected mood stat: %+v", stats[0])
	}
}

func TestRepository_SourcePerformances(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	blog := seedSource(t, repo, passiveSource("Blog ads", 30000))
	idle := seedSource(t, repo, passiveSource("Royalties", 10000))

	seedLog(t, repo, core.DailyLog{SourceID: blog, Date: "2026-08-20", TaskName: "a", Amount: core.MoneyFromFloat(5000), MoodScore: 4})
	seedLog(t, repo, core.DailyLog{SourceID: blog, Date: "2026-08-21", TaskName: "b", Amount: core.MoneyFromFloat(3000), MoodScore: 4})

	perfs, err := repo.SourcePerformances(ctx, "2026-08")
	if err != nil {
		t.Fatal(err)
	}
	if len(perfs) != 2 {
		t.Fatalf("expected both sources, got %d", len(perfs))
	}
	if perfs[0].SourceID != blog || perfs[0].Earned.Yen() != 8000 || perfs[0].TaskDays != 2 {
		t.Errorf("unexpected top performer: %+v", perfs[0])
	}
	if perfs[1].SourceID != idle || !perfs[1].Earned.IsZero() {
		t.Errorf("expected idle source with zero earnings, got %+v", perfs[1])
	}
}

func TestRepository_CountLogDays(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	srcID := seedSource(t, repo, passiveSource("Blog ads", 30000))

	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-20", TaskName: "a", MoodScore: 3})
	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-20", TaskName: "b", MoodScore: 3})
	seedLog(t, repo, core.DailyLog{SourceID: srcID, Date: "2026-08-22", TaskName: "c", MoodScore: 3})

	n, err := repo.CountLogDays(ctx, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 distinct days, got %d", n)
	}

	onDate, err := repo.CountLogsOnDate(ctx, "2026-08-20")
	if err != nil {
		t.Fatal(err)
	}
	if onDate != 2 {
		t.Errorf("expected 2 logs on date, got %d", onDate)
	}
}
