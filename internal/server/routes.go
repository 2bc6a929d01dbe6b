package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"levelup/internal/models"
	"levelup/internal/services"
	"levelup/internal/web"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("GET /api/dashboard", s.dashboardHandler)
	mux.HandleFunc("GET /api/profile", s.profileHandler)
	mux.HandleFunc("PATCH /api/profile", s.updateProfileHandler)
	mux.HandleFunc("GET /api/habits", s.habitsHandler)
	mux.HandleFunc("POST /api/habits", s.addHabitHandler)
	mux.HandleFunc("POST /api/habits/{id}/toggle", s.toggleHabitHandler)
	mux.HandleFunc("GET /api/habits/{id}/progress", s.habitProgressHandler)
	mux.HandleFunc("GET /api/objectives", s.objectivesHandler)
	mux.HandleFunc("POST /api/objectives/generate", s.generateObjectivesHandler)
	mux.HandleFunc("POST /api/objectives/{id}/complete", s.completeObjectiveHandler)
	mux.HandleFunc("GET /api/motivation", s.motivationHandler)
	mux.HandleFunc("GET /api/stats", s.statsHandler)

	mux.HandleFunc("GET /web", s.webHandler)
	mux.HandleFunc("POST /web/habits", s.webAddHabitHandler)
	mux.HandleFunc("POST /web/habits/{id}/toggle", s.webToggleHabitHandler)
	mux.HandleFunc("POST /web/objectives/{id}/complete", s.webCompleteObjectiveHandler)
	mux.HandleFunc("POST /web/objectives/generate", s.webGenerateObjectivesHandler)

	return s.logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("error encoding response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrHabitNotFound), errors.Is(err, services.ErrObjectiveNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrEmptyHabitName),
		errors.Is(err, models.ErrEmptyProfileName),
		errors.Is(err, models.ErrInvalidDifficulty),
		errors.Is(err, models.ErrInvalidCategory):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.db.Health())
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Dashboard(r.Context()))
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Profile(r.Context()))
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Debug("error decoding request", "err", err)
		s.badRequest(w, "invalid request body")
		return
	}
	p, err := s.tracker.UpdateProfile(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) habitsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Habits(r.Context(), r.URL.Query().Get("category")))
}

func (s *Server) addHabitHandler(w http.ResponseWriter, r *http.Request) {
	var req models.NewHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Debug("error decoding request", "err", err)
		s.badRequest(w, "invalid request body")
		return
	}
	h, err := s.tracker.AddHabit(r.Context(), req.Name, req.Category)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, h)
}

func (s *Server) toggleHabitHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.ToggleHabit(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) habitProgressHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	window := services.DefaultProgressWindow
	if v := q.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.badRequest(w, "window must be a positive integer")
			return
		}
		window = n
	}

	var ref time.Time
	if v := q.Get("date"); v != "" {
		d, err := time.ParseInLocation(models.DateLayout, v, time.Local)
		if err != nil {
			s.badRequest(w, "date must be YYYY-MM-DD")
			return
		}
		ref = d
	}

	progress, err := s.tracker.HabitProgress(r.Context(), r.PathValue("id"), window, ref)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, progress)
}

func (s *Server) objectivesHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Objectives(r.Context()))
}

func (s *Server) generateObjectivesHandler(w http.ResponseWriter, r *http.Request) {
	objs, err := s.tracker.RegenerateObjectives(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, objs)
}

func (s *Server) completeObjectiveHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.CompleteObjective(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) motivationHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": s.tracker.RefreshMotivation(r.Context())})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.badRequest(w, "days must be a positive integer")
			return
		}
		days = n
	}
	s.writeJSON(w, http.StatusOK, s.tracker.Stats(r.Context(), days))
}

func (s *Server) webHandler(w http.ResponseWriter, r *http.Request) {
	templ.Handler(web.DashboardPage(s.tracker.Dashboard(r.Context()))).ServeHTTP(w, r)
}

func (s *Server) redirectToWeb(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	http.Redirect(w, r, "/web", http.StatusSeeOther)
}

func (s *Server) webAddHabitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, "invalid form")
		return
	}
	_, err := s.tracker.AddHabit(r.Context(), r.PostForm.Get("name"), r.PostForm.Get("category"))
	s.redirectToWeb(w, r, err)
}

func (s *Server) webToggleHabitHandler(w http.ResponseWriter, r *http.Request) {
	_, err := s.tracker.ToggleHabit(r.Context(), r.PathValue("id"))
	s.redirectToWeb(w, r, err)
}

func (s *Server) webCompleteObjectiveHandler(w http.ResponseWriter, r *http.Request) {
	_, err := s.tracker.CompleteObjective(r.Context(), r.PathValue("id"))
	s.redirectToWeb(w, r, err)
}

func (s *Server) webGenerateObjectivesHandler(w http.ResponseWriter, r *http.Request) {
	_, err := s.tracker.RegenerateObjectives(r.Context())
	s.redirectToWeb(w, r, err)
}
