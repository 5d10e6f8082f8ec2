package assessments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/models"
	"github.com/KDigitalAi/Assessments/internal/runlock"
	"github.com/KDigitalAi/Assessments/internal/scoring"
)

// RunTrigger starts a generation run and waits for its summary.
type RunTrigger interface {
	Trigger(ctx context.Context, req models.GenerateRequest) (*models.RunSummary, error)
}

const maxPageSize = 500

type Handler struct {
	store Store
	runs  RunTrigger
}

func NewHandler(store Store, runs RunTrigger) *Handler {
	return &Handler{store: store, runs: runs}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	// Runs are not tied to the client connection.
	summary, err := h.runs.Trigger(context.WithoutCancel(r.Context()), req)
	if errors.Is(err, runlock.ErrLocked) {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "A generation run is already in progress"})
		return
	}
	if err != nil && summary == nil {
		log.Error().Err(err).Msg("Generation run failed to start")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Generation failed: " + err.Error()})
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("run_id", summary.RunID).Msg("Generation run interrupted")
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := models.AssessmentStatus(query.Get("status"))
	limit := min(intQueryParam(query, "limit", 50), maxPageSize)
	offset := intQueryParam(query, "offset", 0)

	all, err := h.store.ListAssessments(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list assessments"})
		return
	}

	filtered := make([]models.Assessment, 0, len(all))
	for _, a := range all {
		if status == "" || a.Status == status {
			filtered = append(filtered, a)
		}
	}

	page := []models.Assessment{}
	if offset < len(filtered) {
		page = filtered[offset:min(offset+limit, len(filtered))]
	}
	writeJSON(w, http.StatusOK, models.AssessmentListResponse{Assessments: page, Total: len(filtered)})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAssessment(w, r)
	if !ok {
		return
	}

	questions, err := h.store.ListQuestions(r.Context(), a.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load questions"})
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	writeJSON(w, http.StatusOK, models.AssessmentDetailResponse{Assessment: *a, Questions: questions})
}

func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	a, ok := h.loadAssessment(w, r)
	if !ok {
		return
	}

	questions, err := h.store.ListQuestions(r.Context(), a.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load questions"})
		return
	}
	if len(questions) == 0 {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Assessment has no questions"})
		return
	}

	writeJSON(w, http.StatusOK, scoring.Score(a.ID, questions, req.Answers))
}

// loadAssessment resolves the {id} route variable, writing the error
// response itself when it cannot.
func (h *Handler) loadAssessment(w http.ResponseWriter, r *http.Request) (*models.Assessment, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid assessment ID"})
		return nil, false
	}

	a, err := h.store.GetAssessment(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Assessment not found"})
		return nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load assessment"})
		return nil, false
	}
	return a, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
