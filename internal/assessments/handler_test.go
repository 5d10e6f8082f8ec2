package assessments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/KDigitalAi/Assessments/internal/models"
	"github.com/KDigitalAi/Assessments/internal/runlock"
)

type fakeTrigger struct {
	got     models.GenerateRequest
	ctxErr  error
	summary *models.RunSummary
	err     error
}

func (f *fakeTrigger) Trigger(ctx context.Context, req models.GenerateRequest) (*models.RunSummary, error) {
	f.got = req
	f.ctxErr = ctx.Err()
	return f.summary, f.err
}

func newTestRouter(store Store, runs RunTrigger) *mux.Router {
	h := NewHandler(store, runs)
	r := mux.NewRouter()
	r.HandleFunc("/assessments/generate", h.Generate).Methods("POST")
	r.HandleFunc("/assessments", h.List).Methods("GET")
	r.HandleFunc("/assessments/stats", h.Stats).Methods("GET")
	r.HandleFunc("/assessments/{id}", h.Get).Methods("GET")
	r.HandleFunc("/assessments/{id}/score", h.Score).Methods("POST")
	return r
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// seedPublished stores one assessment with three questions answered B.
func seedPublished(t *testing.T, store *SQLStore) models.Assessment {
	t.Helper()
	ctx := context.Background()
	p := NewPersister(store, 0)
	src := docSource("doc-1")
	a, err := p.EnsureAssessment(ctx, NewIndex(nil), specFor(src))
	if err != nil {
		t.Fatalf("EnsureAssessment: %v", err)
	}
	if _, err := p.SaveQuestions(ctx, a, src, acceptedQuestions(3)); err != nil {
		t.Fatalf("SaveQuestions: %v", err)
	}
	return a
}

func TestGenerateHandler(t *testing.T) {
	trigger := &fakeTrigger{summary: &models.RunSummary{RunID: "run-1", Discovered: 2}}
	router := newTestRouter(newTestStore(t), trigger)

	rec := do(t, router, http.MethodPost, "/assessments/generate", `{"source_ids":["doc-1"],"dry_run":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(trigger.got.SourceIDs) != 1 || !trigger.got.DryRun {
		t.Errorf("request = %+v", trigger.got)
	}
	var summary models.RunSummary
	json.NewDecoder(rec.Body).Decode(&summary)
	if summary.RunID != "run-1" || summary.Discovered != 2 {
		t.Errorf("summary = %+v", summary)
	}

	// An empty body means "every source".
	if rec := do(t, router, http.MethodPost, "/assessments/generate", ""); rec.Code != http.StatusOK {
		t.Errorf("empty body status = %d", rec.Code)
	}
}

func TestGenerateHandlerLocked(t *testing.T) {
	router := newTestRouter(newTestStore(t), &fakeTrigger{err: runlock.ErrLocked})
	if rec := do(t, router, http.MethodPost, "/assessments/generate", `{}`); rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestGenerateHandlerOutlivesRequest(t *testing.T) {
	trigger := &fakeTrigger{summary: &models.RunSummary{RunID: "run-1"}}
	router := newTestRouter(newTestStore(t), trigger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/assessments/generate", strings.NewReader(`{}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if trigger.ctxErr != nil {
		t.Errorf("run context cancelled with the request: %v", trigger.ctxErr)
	}
}

func TestListHandlerCapsLimit(t *testing.T) {
	store := newTestStore(t)
	seedPublished(t, store)
	router := newTestRouter(store, &fakeTrigger{})

	rec := do(t, router, http.MethodGet, "/assessments?limit=9223372036854775807", "")
	var list models.AssessmentListResponse
	json.NewDecoder(rec.Body).Decode(&list)
	if rec.Code != http.StatusOK || list.Total != 1 || len(list.Assessments) != 1 {
		t.Errorf("status = %d, list = %+v", rec.Code, list)
	}
}

func TestListAndStatsHandlers(t *testing.T) {
	store := newTestStore(t)
	seedPublished(t, store)
	NewPersister(store, 0).EnsureAssessment(context.Background(), NewIndex(nil), specFor(docSource("doc-2")))
	router := newTestRouter(store, &fakeTrigger{})

	var list models.AssessmentListResponse
	rec := do(t, router, http.MethodGet, "/assessments", "")
	json.NewDecoder(rec.Body).Decode(&list)
	if rec.Code != http.StatusOK || list.Total != 2 || len(list.Assessments) != 2 {
		t.Errorf("list status=%d total=%d", rec.Code, list.Total)
	}

	rec = do(t, router, http.MethodGet, "/assessments?status=published&limit=10", "")
	list = models.AssessmentListResponse{}
	json.NewDecoder(rec.Body).Decode(&list)
	if list.Total != 1 || list.Assessments[0].Status != models.StatusPublished {
		t.Errorf("filtered list = %+v", list)
	}

	rec = do(t, router, http.MethodGet, "/assessments?offset=5", "")
	list = models.AssessmentListResponse{}
	json.NewDecoder(rec.Body).Decode(&list)
	if list.Total != 2 || len(list.Assessments) != 0 {
		t.Errorf("offset past end = %+v", list)
	}

	var stats models.AssessmentStats
	rec = do(t, router, http.MethodGet, "/assessments/stats", "")
	json.NewDecoder(rec.Body).Decode(&stats)
	if stats.TotalAssessments != 2 || stats.TotalQuestions != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGetHandler(t *testing.T) {
	store := newTestStore(t)
	a := seedPublished(t, store)
	router := newTestRouter(store, &fakeTrigger{})

	rec := do(t, router, http.MethodGet, "/assessments/"+a.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var detail models.AssessmentDetailResponse
	json.NewDecoder(rec.Body).Decode(&detail)
	if detail.Assessment.ID != a.ID || len(detail.Questions) != 3 {
		t.Errorf("detail = %+v", detail)
	}

	if rec := do(t, router, http.MethodGet, "/assessments/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/assessments/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", rec.Code)
	}
}

func TestScoreHandler(t *testing.T) {
	store := newTestStore(t)
	a := seedPublished(t, store)
	qs, err := store.ListQuestions(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	router := newTestRouter(store, &fakeTrigger{})

	answers := map[string]string{
		qs[0].ID: "B",
		qs[1].ID: "second",
		qs[2].ID: "a",
	}
	body, _ := json.Marshal(models.ScoreRequest{Answers: answers})

	rec := do(t, router, http.MethodPost, "/assessments/"+a.ID+"/score", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.ScoreResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Total != 3 || resp.Correct != 2 {
		t.Errorf("score = %d/%d, want 2/3", resp.Correct, resp.Total)
	}

	if rec := do(t, router, http.MethodPost, "/assessments/"+a.ID+"/score", "{"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", rec.Code)
	}
}
