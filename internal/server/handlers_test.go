package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rumbo-ai/rumbo/internal/extract"
	"github.com/rumbo-ai/rumbo/internal/guidance"
	"github.com/rumbo-ai/rumbo/internal/health"
	"github.com/rumbo-ai/rumbo/internal/observe"
	"github.com/rumbo-ai/rumbo/internal/server"
	"github.com/rumbo-ai/rumbo/pkg/career"
	profilemock "github.com/rumbo-ai/rumbo/pkg/profile/mock"
	embmock "github.com/rumbo-ai/rumbo/pkg/provider/embeddings/mock"
	llmmock "github.com/rumbo-ai/rumbo/pkg/provider/llm/mock"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()

	ix, err := career.NewIndex([]career.Record{
		{ID: "c1", Name: "Mecatronica", University: "EPN", City: "quito", Embedding: []float32{1, 0, 0, 0}},
		{ID: "c2", Name: "Medicina", University: "UCE", City: "quito", Embedding: []float32{0, 1, 0, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}

	store := profilemock.New()
	orch := guidance.New(
		store,
		extract.New(llmmock.New(`{"interests": ["robotica"]}`)),
		embmock.New(4),
		career.NewRetriever(ix),
		llmmock.New("¡Hola! Cuéntame más sobre ti."),
	)

	return server.NewHandler(server.Deps{
		Orchestrator: orch,
		Index:        ix,
		Health:       health.New(health.ProfileStore(store), health.Corpus(ix)),
		Metrics:      observe.DefaultMetrics(),
	})
}

func TestChat(t *testing.T) {
	h := testHandler(t)

	body := `{"user_id": "u1", "message": "me gusta la robotica"}`
	req := httptest.NewRequest("POST", "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body)
	}

	var result guidance.TurnResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Reply == "" {
		t.Error("empty reply")
	}
	if result.Profile == nil || len(result.Profile.Interests) == 0 {
		t.Errorf("profile missing extracted interests: %+v", result.Profile)
	}
	if len(result.Matches) == 0 {
		t.Error("no career matches in response")
	}
}

func TestChat_BadRequests(t *testing.T) {
	h := testHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"not json", "hola"},
		{"missing user_id", `{"message": "hola"}`},
		{"missing message", `{"user_id": "u1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/chat", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestListCareers(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest("GET", "/careers", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Careers []career.Record `json:"careers"`
		Total   int             `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Total != 2 || len(body.Careers) != 2 {
		t.Errorf("total = %d, careers = %d, want 2 each", body.Total, len(body.Careers))
	}
}

func TestListCareers_Limit(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest("GET", "/careers?limit=1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body struct {
		Careers []career.Record `json:"careers"`
		Total   int             `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Careers) != 1 {
		t.Errorf("careers = %d, want 1", len(body.Careers))
	}
	if body.Total != 2 {
		t.Errorf("total = %d, want full corpus size 2", body.Total)
	}

	req = httptest.NewRequest("GET", "/careers?limit=x", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := testHandler(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestRequestID(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("no X-Request-ID generated")
	}

	req = httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-ID", "client-chosen")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-chosen" {
		t.Errorf("X-Request-ID = %q, want the client's value", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
