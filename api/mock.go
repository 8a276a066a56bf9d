package api

import (
	"context"

	"kasegi/internal/analytics"
	"kasegi/internal/coach"
	"kasegi/internal/core"
)

// MockService implements Service with overridable functions for tests.
type MockService struct {
	DashboardFunc      func(ctx context.Context) (*analytics.Dashboard, error)
	AnalyticsFunc      func(ctx context.Context, period string) (*analytics.Analytics, error)
	CoachFunc          func(ctx context.Context) (*coach.Motivation, error)
	ListSourcesFunc    func(ctx context.Context) ([]core.IncomeSource, error)
	CreateSourceFunc   func(ctx context.Context, src core.IncomeSource) (*core.IncomeSource, error)
	UpdateSourceFunc   func(ctx context.Context, src core.IncomeSource) (*core.IncomeSource, error)
	DeleteSourceFunc   func(ctx context.Context, id int64) error
	ListLogsFunc       func(ctx context.Context, date string) ([]core.DailyLog, error)
	CreateLogFunc      func(ctx context.Context, entry core.DailyLog) (*core.DailyLog, error)
	DeleteLogFunc      func(ctx context.Context, id int64) error
	SettingsFunc       func(ctx context.Context) (*core.Settings, error)
	UpdateSettingsFunc func(ctx context.Context, s core.Settings) error
}

func (m *MockService) Dashboard(ctx context.Context) (*analytics.Dashboard, error) {
	if m.DashboardFunc != nil {
		return m.DashboardFunc(ctx)
	}
	return &analytics.Dashboard{}, nil
}

func (m *MockService) Analytics(ctx context.Context, period string) (*analytics.Analytics, error) {
	if m.AnalyticsFunc != nil {
		return m.AnalyticsFunc(ctx, period)
	}
	return &analytics.Analytics{}, nil
}

func (m *MockService) Coach(ctx context.Context) (*coach.Motivation, error) {
	if m.CoachFunc != nil {
		return m.CoachFunc(ctx)
	}
	return &coach.Motivation{}, nil
}

func (m *MockService) ListSources(ctx context.Context) ([]core.IncomeSource, error) {
	if m.ListSourcesFunc != nil {
		return m.ListSourcesFunc(ctx)
	}
	return nil, nil
}

func (m *MockService) CreateSource(ctx context.Context, src core.IncomeSource) (*core.IncomeSource, error) {
	if m.CreateSourceFunc != nil {
		return m.CreateSourceFunc(ctx, src)
	}
	return &src, nil
}

func (m *MockService) UpdateSource(ctx context.Context, src core.IncomeSource) (*core.IncomeSource, error) {
	if m.UpdateSourceFunc != nil {
		return m.UpdateSourceFunc(ctx, src)
	}
	return &src, nil
}

func (m *MockService) DeleteSource(ctx context.Context, id int64) error {
	if m.DeleteSourceFunc != nil {
		return m.DeleteSourceFunc(ctx, id)
	}
	return nil
}

func (m *MockService) ListLogs(ctx context.Context, date string) ([]core.DailyLog, error) {
	if m.ListLogsFunc != nil {
		return m.ListLogsFunc(ctx, date)
	}
	return nil, nil
}

func (m *MockService) CreateLog(ctx context.Context, entry core.DailyLog) (*core.DailyLog, error) {
	if m.CreateLogFunc != nil {
		return m.CreateLogFunc(ctx, entry)
	}
	return &entry, nil
}

func (m *MockService) DeleteLog(ctx context.Context, id int64) error {
	if m.DeleteLogFunc != nil {
		return m.DeleteLogFunc(ctx, id)
	}
	return nil
}

func (m *MockService) Settings(ctx context.Context) (*core.Settings, error) {
	if m.SettingsFunc != nil {
		return m.SettingsFunc(ctx)
	}
	s := core.DefaultSettings()
	return &s, nil
}

func (m *MockService) UpdateSettings(ctx context.Context, s core.Settings) error {
	if m.UpdateSettingsFunc != nil {
		return m.UpdateSettingsFunc(ctx, s)
	}
	return nil
}
