// Package storage persists income sources, daily logs, goal history and
// settings in a local sqlite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kasegi/internal/core"

	_ "modernc.org/sqlite"
)

// Repository is the sqlite-backed store for all kasegi data.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the database at dbPath and runs
// pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// timestamp layouts seen in the database: values written by this code, and
// sqlite's CURRENT_TIMESTAMP default.
var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"}

func parseTimestamp(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// --- income sources ---

func scanSource(row interface{ Scan(...any) error }) (core.IncomeSource, error) {
	var (
		s                    core.IncomeSource
		unitPrice            sql.NullFloat64
		goal                 float64
		createdAt, updatedAt string
	)
	err := row.Scan(&s.ID, &s.Name, &s.Type, &unitPrice, &goal, &s.Description, &createdAt, &updatedAt)
	if err != nil {
		return s, err
	}
	if unitPrice.Valid {
		up := core.MoneyFromFloat(unitPrice.Float64)
		s.UnitPrice = &up
	}
	s.GoalAmount = core.MoneyFromFloat(goal)
	s.CreatedAt = parseTimestamp(createdAt)
	s.UpdatedAt = parseTimestamp(updatedAt)
	return s, nil
}

const sourceColumns = "id, name, type, unit_price, goal_amount, description, created_at, updated_at"

// ListSources returns all income sources, newest first.
func (r *Repository) ListSources(ctx context.Context) ([]core.IncomeSource, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sourceColumns+" FROM income_sources ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []core.IncomeSource
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// GetSource returns one source by ID, or core.ErrSourceNotFound.
func (r *Repository) GetSource(ctx context.Context, id int64) (*core.IncomeSource, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sourceColumns+" FROM income_sources WHERE id = ?", id)
	s, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get source %d: %w", id, err)
	}
	return &s, nil
}

// CreateSource inserts a new income source and returns its ID.
func (r *Repository) CreateSource(ctx context.Context, s core.IncomeSource) (int64, error) {
	var unitPrice any
	if s.UnitPrice != nil {
		unitPrice = s.UnitPrice.Float()
	}
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO income_sources (name, type, unit_price, goal_amount, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Name, string(s.Type), unitPrice, s.GoalAmount.Float(), s.Description, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("create source: %w", err)
	}
	return res.LastInsertId()
}

// UpdateSource updates a source and, when its goal amount changed, records
// the change in goal_history within the same transaction.
func (r *Repository) UpdateSource(ctx context.Context, s core.IncomeSource) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update source: %w", err)
	}
	defer tx.Rollback()

	var oldGoal float64
	err = tx.QueryRowContext(ctx,
		"SELECT goal_amount FROM income_sources WHERE id = ?", s.ID).Scan(&oldGoal)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrSourceNotFound
	}
	if err != nil {
		return fmt.Errorf("read current goal: %w", err)
	}

	newGoal := s.GoalAmount.Float()
	if oldGoal != newGoal {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO goal_history (source_id, old_goal_amount, new_goal_amount, changed_at)
			VALUES (?, ?, ?, ?)`, s.ID, oldGoal, newGoal, now()); err != nil {
			return fmt.Errorf("record goal change: %w", err)
		}
	}

	var unitPrice any
	if s.UnitPrice != nil {
		unitPrice = s.UnitPrice.Float()
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE income_sources
		SET name = ?, type = ?, unit_price = ?, goal_amount = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, string(s.Type), unitPrice, newGoal, s.Description, now(), s.ID); err != nil {
		return fmt.Errorf("update source: %w", err)
	}

	return tx.Commit()
}

// DeleteSource removes a source together with its logs and goal history.
func (r *Repository) DeleteSource(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete source: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM daily_logs WHERE source_id = ?", id); err != nil {
		return fmt.Errorf("delete source logs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM goal_history WHERE source_id = ?", id); err != nil {
		return fmt.Errorf("delete goal history: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM income_sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrSourceNotFound
	}

	return tx.Commit()
}

// GoalHistory returns the recorded goal changes for a source, newest first.
func (r *Repository) GoalHistory(ctx context.Context, sourceID int64) ([]core.GoalChange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source_id, old_goal_amount, new_goal_amount, changed_at
		FROM goal_history WHERE source_id = ? ORDER BY changed_at DESC, id DESC`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("goal history: %w", err)
	}
	defer rows.Close()

	var changes []core.GoalChange
	for rows.Next() {
		var (
			c         core.GoalChange
			oldG, newG float64
			changedAt string
		)
		if err := rows.Scan(&c.ID, &c.SourceID, &oldG, &newG, &changedAt); err != nil {
			return nil, fmt.Errorf("scan goal change: %w", err)
		}
		c.OldGoal = core.MoneyFromFloat(oldG)
		c.NewGoal = core.MoneyFromFloat(newG)
		c.ChangedAt = parseTimestamp(changedAt)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// --- daily logs ---

// LogFilter narrows ListLogs. Zero values mean "no filter".
type LogFilter struct {
	Date     string
	SourceID int64
}

const logColumns = `dl.id, dl.source_id, src.name, dl.date, dl.task_name, dl.task_count,
	dl.amount, dl.progress_percent, dl.mood_score, dl.note, dl.created_at, dl.updated_at`

func scanLog(rows *sql.Rows) (core.DailyLog, error) {
	var (
		l                    core.DailyLog
		taskCount            sql.NullInt64
		sourceName           sql.NullString
		amount               float64
		createdAt, updatedAt string
	)
	err := rows.Scan(&l.ID, &l.SourceID, &sourceName, &l.Date, &l.TaskName, &taskCount,
		&amount, &l.ProgressPercent, &l.MoodScore, &l.Note, &createdAt, &updatedAt)
	if err != nil {
		return l, err
	}
	l.SourceName = sourceName.String
	l.TaskCount = taskCount.Int64
	l.Amount = core.MoneyFromFloat(amount)
	l.CreatedAt = parseTimestamp(createdAt)
	l.UpdatedAt = parseTimestamp(updatedAt)
	return l, nil
}

// ListLogs returns daily logs matching the filter, newest first.
func (r *Repository) ListLogs(ctx context.Context, f LogFilter) ([]core.DailyLog, error) {
	query := `SELECT ` + logColumns + `
		FROM daily_logs dl
		LEFT JOIN income_sources src ON dl.source_id = src.id
		WHERE 1=1`
	var args []any
	if f.Date != "" {
		query += " AND dl.date = ?"
		args = append(args, f.Date)
	}
	if f.SourceID != 0 {
		query += " AND dl.source_id = ?"
		args = append(args, f.SourceID)
	}
	query += " ORDER BY dl.date DESC, dl.created_at DESC, dl.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var logs []core.DailyLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// GetLog returns one daily log by ID, or core.ErrLogNotFound.
func (r *Repository) GetLog(ctx context.Context, id int64) (*core.DailyLog, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+logColumns+`
		FROM daily_logs dl
		LEFT JOIN income_sources src ON dl.source_id = src.id
		WHERE dl.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get log %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get log %d: %w", id, err)
		}
		return nil, core.ErrLogNotFound
	}
	l, err := scanLog(rows)
	if err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}
	return &l, nil
}

// CreateLog inserts a daily log and returns its ID. The caller is expected
// to have derived Amount already (core.DeriveAmount).
func (r *Repository) CreateLog(ctx context.Context, l core.DailyLog) (int64, error) {
	var taskCount any
	if l.TaskCount != 0 {
		taskCount = l.TaskCount
	}
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_logs (source_id, date, task_name, task_count, amount, progress_percent, mood_score, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.SourceID, l.Date, l.TaskName, taskCount, l.Amount.Float(),
		l.ProgressPercent, l.MoodScore, l.Note, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("create log: %w", err)
	}
	return res.LastInsertId()
}

// UpdateLog rewrites a daily log.
func (r *Repository) UpdateLog(ctx context.Context, l core.DailyLog) error {
	var taskCount any
	if l.TaskCount != 0 {
		taskCount = l.TaskCount
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE daily_logs
		SET source_id = ?, date = ?, task_name = ?, task_count = ?, amount = ?,
			progress_percent = ?, mood_score = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		l.SourceID, l.Date, l.TaskName, taskCount, l.Amount.Float(),
		l.ProgressPercent, l.MoodScore, l.Note, now(), l.ID)
	if err != nil {
		return fmt.Errorf("update log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrLogNotFound
	}
	return nil
}

// DeleteLog removes a daily log by ID.
func (r *Repository) DeleteLog(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM daily_logs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrLogNotFound
	}
	return nil
}

// --- settings ---

// GetSettings returns the single settings row.
func (r *Repository) GetSettings(ctx context.Context) (core.Settings, error) {
	var (
		goal       float64
		targetDays int
		currency   string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT monthly_income_goal, monthly_target_days, currency FROM settings WHERE id = 1").
		Scan(&goal, &targetDays, &currency)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return core.Settings{
		MonthlyIncomeGoal: core.MoneyFromFloat(goal),
		MonthlyTargetDays: targetDays,
		Currency:          currency,
	}, nil
}

// UpdateSettings replaces the settings row.
func (r *Repository) UpdateSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings SET monthly_income_goal = ?, monthly_target_days = ?, currency = ?, updated_at = ? WHERE id = 1`,
		s.MonthlyIncomeGoal.Float(), s.MonthlyTargetDays, s.Currency, now())
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// --- aggregations used by analytics ---

// SourceMonthStats summarizes one source's logs within a month.
type SourceMonthStats struct {
	Earned    core.Money
	TaskCount int64
	AvgMood   float64
}

// MonthStats returns earned amount, log count and average mood for a source
// in the month given as a YYYY-MM prefix.
func (r *Repository) MonthStats(ctx context.Context, sourceID int64, monthPrefix string) (SourceMonthStats, error) {
	var (
		earned  sql.NullFloat64
		count   int64
		avgMood sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT SUM(amount), COUNT(*), AVG(mood_score)
		FROM daily_logs
		WHERE source_id = ? AND date LIKE ?`, sourceID, monthPrefix+"%").
		Scan(&earned, &count, &avgMood)
	if err != nil {
		return SourceMonthStats{}, fmt.Errorf("month stats: %w", err)
	}
	stats := SourceMonthStats{
		Earned:    core.MoneyFromFloat(earned.Float64),
		TaskCount: count,
		AvgMood:   avgMood.Float64,
	}
	if !avgMood.Valid {
		stats.AvgMood = 3
	}
	return stats, nil
}

// DailyTotal is the summed income for one calendar day.
type DailyTotal struct {
	Date      string     `json:"date"`
	Total     core.Money `json:"total"`
	TaskCount int64      `json:"task_count"`
}

// DailyTotals returns per-day income totals for dates >= since, in date order.
func (r *Repository) DailyTotals(ctx context.Context, since string) ([]DailyTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, SUM(amount), COUNT(*)
		FROM daily_logs
		WHERE date >= ?
		GROUP BY date
		ORDER BY date`, since)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var totals []DailyTotal
	for rows.Next() {
		var (
			dt    DailyTotal
			total float64
		)
		if err := rows.Scan(&dt.Date, &total, &dt.TaskCount); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		dt.Total = core.MoneyFromFloat(total)
		totals = append(totals, dt)
	}
	return totals, rows.Err()
}

// MoodStat correlates a mood score with average earnings.
type MoodStat struct {
	MoodScore  int        `json:"mood_score"`
	AvgEarning core.Money `json:"avg_earning"`
	Count      int64      `json:"count"`
}

// MoodStats groups logs since the given date by mood score, ignoring
// zero-amount entries.
func (r *Repository) MoodStats(ctx context.Context, since string) ([]MoodStat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mood_score, AVG(amount), COUNT(*)
		FROM daily_logs
		WHERE date >= ? AND amount > 0
		GROUP BY mood_score
		ORDER BY mood_score`, since)
	if err != nil {
		return nil, fmt.Errorf("mood stats: %w", err)
	}
	defer rows.Close()

	var stats []MoodStat
	for rows.Next() {
		var (
			ms  MoodStat
			avg float64
		)
		if err := rows.Scan(&ms.MoodScore, &avg, &ms.Count); err != nil {
			return nil, fmt.Errorf("scan mood stat: %w", err)
		}
		ms.AvgEarning = core.MoneyFromFloat(avg)
		stats = append(stats, ms)
	}
	return stats, rows.Err()
}

// SourcePerformance compares a source's goal to what it earned in a month.
type SourcePerformance struct {
	SourceID int64      `json:"source_id"`
	Name     string     `json:"name"`
	Goal     core.Money `json:"goal"`
	Earned   core.Money `json:"earned"`
	TaskDays int64      `json:"task_days"`
	AvgMood  float64    `json:"avg_mood"`
}

// SourcePerformances returns per-source earnings for the month given as a
// YYYY-MM prefix, best earner first. Sources with no logs are included.
func (r *Repository) SourcePerformances(ctx context.Context, monthPrefix string) ([]SourcePerformance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT src.id, src.name, src.goal_amount,
			COALESCE(SUM(dl.amount), 0), COUNT(dl.id), COALESCE(AVG(dl.mood_score), 0)
		FROM income_sources src
		LEFT JOIN daily_logs dl ON src.id = dl.source_id AND dl.date LIKE ?
		GROUP BY src.id, src.name, src.goal_amount
		ORDER BY COALESCE(SUM(dl.amount), 0) DESC`, monthPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("source performances: %w", err)
	}
	defer rows.Close()

	var perfs []SourcePerformance
	for rows.Next() {
		var (
			p            SourcePerformance
			goal, earned float64
		)
		if err := rows.Scan(&p.SourceID, &p.Name, &goal, &earned, &p.TaskDays, &p.AvgMood); err != nil {
			return nil, fmt.Errorf("scan source performance: %w", err)
		}
		p.Goal = core.MoneyFromFloat(goal)
		p.Earned = core.MoneyFromFloat(earned)
		perfs = append(perfs, p)
	}
	return perfs, rows.Err()
}

// CountLogDays returns the number of distinct days with at least one log in
// the inclusive date range.
func (r *Repository) CountLogDays(ctx context.Context, start, end string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT date) FROM daily_logs WHERE date >= ? AND date <= ?`,
		start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count log days: %w", err)
	}
	return n, nil
}

// CountLogsOnDate returns the number of logs recorded on one date.
func (r *Repository) CountLogsOnDate(ctx context.Context, date string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM daily_logs WHERE date = ?", date).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count logs on date: %w", err)
	}
	return n, nil
}
