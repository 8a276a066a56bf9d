package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"kasegi/internal/core"
	"kasegi/internal/storage"
)

// envelope is the wire shape for every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSourceNotFound), errors.Is(err, core.ErrLogNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidSourceType),
		errors.Is(err, core.ErrNameRequired),
		errors.Is(err, core.ErrGoalRequired),
		errors.Is(err, core.ErrUnitPriceRequired),
		errors.Is(err, core.ErrTaskNameRequired),
		errors.Is(err, core.ErrInvalidProgress),
		errors.Is(err, core.ErrInvalidMood):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.engine.Dashboard(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.repo.ListSources(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var src core.IncomeSource
	if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := src.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.repo.CreateSource(r.Context(), src)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.repo.GetSource(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var src core.IncomeSource
	if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	src.ID = id
	if err := src.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.repo.UpdateSource(r.Context(), src); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.repo.GetSource(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.DeleteSource(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "income source deleted"})
}

func (s *Server) handleGoalHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	history, err := s.repo.GoalHistory(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	filter := storage.LogFilter{Date: r.URL.Query().Get("date")}
	if raw := r.URL.Query().Get("source_id"); raw != "" {
		sid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid source_id")
			return
		}
		filter.SourceID = sid
	}
	logs, err := s.repo.ListLogs(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	var entry core.DailyLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if entry.Date == "" {
		entry.Date = core.Today()
	}
	if entry.MoodScore == 0 {
		entry.MoodScore = 3
	}
	if err := entry.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	src, err := s.repo.GetSource(r.Context(), entry.SourceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entry.Amount = core.DeriveAmount(*src, entry.TaskCount, entry.Amount)
	id, err := s.repo.CreateLog(r.Context(), entry)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.repo.GetLog(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var entry core.DailyLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	entry.ID = id
	if err := entry.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	src, err := s.repo.GetSource(r.Context(), entry.SourceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entry.Amount = core.DeriveAmount(*src, entry.TaskCount, entry.Amount)
	if err := s.repo.UpdateLog(r.Context(), entry); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.repo.GetLog(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.DeleteLog(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "daily log deleted"})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.Analytics(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	motivation, err := s.coach.DailyMotivation(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, motivation)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.repo.GetSettings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if settings.MonthlyIncomeGoal.IsNegative() || settings.MonthlyIncomeGoal.IsZero() {
		writeError(w, http.StatusUnprocessableEntity, "monthly income goal must be positive")
		return
	}
	if settings.MonthlyTargetDays <= 0 {
		settings.MonthlyTargetDays = 30
	}
	if settings.Currency == "" {
		settings.Currency = "yen"
	}
	if err := s.repo.UpdateSettings(r.Context(), settings); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
