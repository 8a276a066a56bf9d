package views

import "kasegi/internal/analytics"

// ViewLoaded is a custom vaxis event posted when a view finishes loading data.
// It is sent from background goroutines via PostEvent to notify the UI.
type ViewLoaded struct {
	Tab int
	Err error
}

// DashboardLoaded is posted when a dashboard snapshot fetch completes. On
// success Snapshot holds the fresh data; on failure Err is set and the
// previous snapshot stays on screen.
type DashboardLoaded struct {
	Snapshot *analytics.Dashboard
	Err      error
}

// RefreshRequested is posted by views after a mutation (a new log entry, a
// changed goal) so the shell refetches the dashboard snapshot.
type RefreshRequested struct{}
