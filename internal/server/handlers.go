package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/claude/ironpath/internal/catalog"
	"github.com/claude/ironpath/internal/models"
	"github.com/claude/ironpath/internal/scoring"
	"github.com/claude/ironpath/internal/tracker"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile := s.tracker.Profile()
	if profile == nil {
		writeError(w, http.StatusNotFound, "no profile set")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.tracker.SetProfile(profile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Categories())
}

func (s *Server) handleCatalogCategory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "category")
	cat, err := s.catalog.Category(key)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Session())
}

// addSetRequest logs one set. Weighted/bodyweight/isometric sets use weightKg
// and repsOrSeconds; cardio sets use minutes and intensity. The exercise's
// catalog kind decides which fields apply.
type addSetRequest struct {
	Exercise      string  `json:"exercise"`
	WeightKg      float64 `json:"weightKg"`
	RepsOrSeconds float64 `json:"repsOrSeconds"`
	Minutes       float64 `json:"minutes"`
	Intensity     string  `json:"intensity"`
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	var req addSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ex, err := s.catalog.Exercise(req.Exercise)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var entry models.SetEntry
	if ex.Kind == models.KindCardio {
		entry, err = s.tracker.AddCardioSet(ex.Name, req.Intensity, req.Minutes)
	} else {
		entry, err = s.tracker.AddStrengthSet(ex.Name, req.WeightKg, req.RepsOrSeconds)
	}
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.tracker.DeleteSet(id); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Session())
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	result, err := s.tracker.FinishWorkout()
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.History())
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	ts, err := strconv.ParseInt(chi.URLParam(r, "timestamp"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp")
		return
	}
	if err := s.tracker.DeleteHistory(ts); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"history": s.tracker.History(),
		"totalXp": s.tracker.TotalXP(),
	})
}

func (s *Server) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.PersonalRecords())
}

func (s *Server) handleGetProgression(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Progression())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tracker.Export()
	if err != nil {
		s.log.Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="ironpath-backup.json"`)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}
	if err := s.tracker.Import(data); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Reset(); err != nil {
		s.log.Error("reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// statusForError maps domain errors onto HTTP statuses: validation and
// import-shape problems are the client's, catalog misses are 404, the rest
// is a server problem.
func statusForError(err error) int {
	var vErr *scoring.ValidationError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, tracker.ErrEmptySession),
		errors.Is(err, tracker.ErrImportInvalid):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrExerciseNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, tracker.ErrSetNotFound),
		errors.Is(err, tracker.ErrRecordNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
