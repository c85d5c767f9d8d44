package tests

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"rutaflow/internal/app"
	"rutaflow/internal/middleware"
)

func newIdempotentRouter(h *harness, store *MockIdempotencyStore) *gin.Engine {
	deps := testRouterDeps(h)
	deps.Idempotency = store
	return app.NewRouter(deps)
}

func doKeyedRequest(r http.Handler, method, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(middleware.DriverIDHeader, testDriverID)
	req.Header.Set(middleware.IdempotencyHeader, key)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedRequest(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	store := NewMockIdempotencyStore()
	r := newIdempotentRouter(h, store)

	body := `{"fare":100,"dest_km":10,"dest_min":20}`
	first := doKeyedRequest(r, http.MethodPost, "/v1/trips", "k-1", body)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := doKeyedRequest(r, http.MethodPost, "/v1/trips", "k-1", body)
	if second.Code != http.StatusCreated {
		t.Errorf("expected replayed 201, got %d", second.Code)
	}
	if second.Header().Get(middleware.ReplayedHeader) != "true" {
		t.Error("expected replay header")
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("expected identical body, got %s", second.Body.String())
	}
	if !strings.HasPrefix(second.Header().Get("Content-Type"), "application/json") {
		t.Errorf("expected json content type, got %s", second.Header().Get("Content-Type"))
	}
	if h.trips.CreateCallCount != 1 {
		t.Errorf("expected 1 trip created, got %d", h.trips.CreateCallCount)
	}
}

func TestIdempotency_RejectsRequestInFlight(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	store := NewMockIdempotencyStore()
	store.Hold(testDriverID, "k-2")
	r := newIdempotentRouter(h, store)

	w := doKeyedRequest(r, http.MethodPost, "/v1/shift/start", "k-2", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if h.shifts.CreateCallCount != 0 {
		t.Error("expected handler not to run")
	}
}

func TestIdempotency_ReleasesKeyOnFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	store := NewMockIdempotencyStore()
	r := newIdempotentRouter(h, store)

	h.locks.ForceAcquireFailure = true
	w := doKeyedRequest(r, http.MethodPost, "/v1/shift/start", "k-3", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected busy 409, got %d", w.Code)
	}
	if store.ReleaseCallCount != 1 || store.CompleteCallCount != 0 {
		t.Errorf("expected key released, got %d releases and %d completions", store.ReleaseCallCount, store.CompleteCallCount)
	}

	h.locks.ForceAcquireFailure = false
	w = doKeyedRequest(r, http.MethodPost, "/v1/shift/start", "k-3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected retry to run, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(middleware.ReplayedHeader) != "" {
		t.Error("expected a fresh response, not a replay")
	}
}

func TestIdempotency_StoreFailurePassesThrough(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	store := NewMockIdempotencyStore()
	store.ReserveError = ErrMockTimeout
	r := newIdempotentRouter(h, store)

	for i := 0; i < 2; i++ {
		w := doKeyedRequest(r, http.MethodPost, "/v1/trips", "k-4", `{"fare":100,"dest_km":10,"dest_min":20}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	}
	if h.trips.CreateCallCount != 2 {
		t.Errorf("expected both requests to run, got %d", h.trips.CreateCallCount)
	}
}

func TestIdempotency_IgnoresReads(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	store := NewMockIdempotencyStore()
	store.Hold(testDriverID, "k-5")
	r := newIdempotentRouter(h, store)

	w := doKeyedRequest(r, http.MethodGet, "/v1/settings", "k-5", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
