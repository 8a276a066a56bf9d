package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kasegi/internal/core"
)

func okHandler(t *testing.T, wantMethod, wantPath string, data any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != wantMethod {
			t.Errorf("expected method %s, got %s", wantMethod, r.Method)
		}
		if r.URL.RequestURI() != wantPath {
			t.Errorf("expected path %s, got %s", wantPath, r.URL.RequestURI())
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}
}

func TestClient_TrimsTrailingSlash(t *testing.T) {
	ts := httptest.NewServer(okHandler(t, http.MethodGet, "/api/income-sources", []core.IncomeSource{}))
	defer ts.Close()

	c := New(ts.URL+"/", time.Second)
	if _, err := c.ListSources(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Dashboard(t *testing.T) {
	ts := httptest.NewServer(okHandler(t, http.MethodGet, "/api/dashboard", map[string]any{
		"total_earned": 25000, "total_goal": 70000, "current_day": 15,
	}))
	defer ts.Close()

	dash, err := New(ts.URL, time.Second).Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dash.TotalEarned.Yen() != 25000 || dash.CurrentDay != 15 {
		t.Errorf("unexpected dashboard: %+v", dash)
	}
}

func TestClient_Analytics_PeriodQuery(t *testing.T) {
	ts := httptest.NewServer(okHandler(t, http.MethodGet, "/api/analytics?period=month", map[string]any{
		"period": "month",
	}))
	defer ts.Close()

	report, err := New(ts.URL, time.Second).Analytics(context.Background(), "month")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Period != "month" {
		t.Errorf("expected period month, got %q", report.Period)
	}
}

func TestClient_CreateSource_SendsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		var src core.IncomeSource
		if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if src.Name != "Blog ads" {
			t.Errorf("expected posted name, got %q", src.Name)
		}
		src.ID = 7
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": src})
	}))
	defer ts.Close()

	created, err := New(ts.URL, time.Second).CreateSource(context.Background(), core.IncomeSource{
		Name: "Blog ads", Type: core.SourcePassive, GoalAmount: core.MoneyFromFloat(30000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 7 {
		t.Errorf("expected server-assigned id 7, got %d", created.ID)
	}
}

func TestClient_ListLogs_DateQuery(t *testing.T) {
	ts := httptest.NewServer(okHandler(t, http.MethodGet, "/api/daily-logs?date=2026-08-20", []core.DailyLog{
		{ID: 1, TaskName: "a"},
	}))
	defer ts.Close()

	logs, err := New(ts.URL, time.Second).ListLogs(context.Background(), "2026-08-20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 || logs[0].TaskName != "a" {
		t.Errorf("unexpected logs: %+v", logs)
	}
}

func TestClient_DeleteLog_Path(t *testing.T) {
	ts := httptest.NewServer(okHandler(t, http.MethodDelete, "/api/daily-logs/42", map[string]string{
		"message": "daily log deleted",
	}))
	defer ts.Close()

	if err := New(ts.URL, time.Second).DeleteLog(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_ServerErrorMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "income source not found"})
	}))
	defer ts.Close()

	_, err := New(ts.URL, time.Second).Dashboard(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "income source not found") {
		t.Errorf("expected server message in error, got %v", err)
	}
}

func TestClient_ErrorWithoutMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer ts.Close()

	_, err := New(ts.URL, time.Second).Dashboard(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), http.StatusText(http.StatusBadGateway)) {
		t.Errorf("expected status text fallback, got %v", err)
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer ts.Close()

	if _, err := New(ts.URL, time.Second).Dashboard(context.Background()); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer ts.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := New(ts.URL, time.Second).Dashboard(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}
