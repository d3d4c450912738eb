package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qa-history/internal/observability"
	"qa-history/internal/ratelimit"
	"qa-history/internal/service"
	"qa-history/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

const testOrigin = "http://localhost:5173"

func newTestRouter(t *testing.T, svc service.QAService) http.Handler {
	t.Helper()
	return NewRouter(&Deps{
		QAService:  svc,
		Limiter:    ratelimit.New(ratelimit.DefaultPolicy()),
		Metrics:    observability.NewMetrics("test"),
		CORSOrigin: testOrigin,
	})
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := newTestRouter(t, mocks.NewMockQAService(ctrl))

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQAService := mocks.NewMockQAService(ctrl)
	router := newTestRouter(t, mockQAService)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "GET /health",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /ask exists",
			method:     http.MethodPost,
			path:       "/ask",
			body:       "not json",
			wantStatus: http.StatusBadRequest, // Bad request due to invalid body, but route exists
		},
		{
			name:       "GET /ask method not allowed",
			method:     http.MethodGet,
			path:       "/ask",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "GET /history non-integer page",
			method:     http.MethodGet,
			path:       "/history?page=x",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /metrics",
			method:     http.MethodGet,
			path:       "/metrics",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_AskRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQAService := mocks.NewMockQAService(ctrl)
	// The sixth request never reaches the service, even with an invalid body.
	mockQAService.EXPECT().
		Ask(gomock.Any(), service.AskRequest{Question: "hi"}).
		Return(service.AskResponse{Answer: "hello"}, nil).
		Times(5)

	router := newTestRouter(t, mockQAService)

	for i := 1; i <= 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"hi"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %v, want %v", i, w.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":""}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("6th request status = %v, want %v", w.Code, http.StatusTooManyRequests)
	}

	// Health is never limited.
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("health request %d status = %v, want %v", i, w.Code, http.StatusOK)
		}
	}

	// History has its own quota.
	mockQAService.EXPECT().
		History(gomock.Any(), service.HistoryRequest{Page: 1, PageSize: 10}).
		Return(service.HistoryPage{Items: []service.HistoryItem{}, Page: 1, PageSize: 10}, nil)
	req = httptest.NewRequest(http.MethodGet, "/history", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("history status = %v, want %v", w.Code, http.StatusOK)
	}
}

func TestRouter_HistoryRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQAService := mocks.NewMockQAService(ctrl)
	mockQAService.EXPECT().
		History(gomock.Any(), gomock.Any()).
		Return(service.HistoryPage{Items: []service.HistoryItem{}}, nil).
		Times(5)

	router := newTestRouter(t, mockQAService)

	for i := 1; i <= 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/history", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		want := http.StatusOK
		if i == 6 {
			want = http.StatusTooManyRequests
		}
		if w.Code != want {
			t.Fatalf("request %d status = %v, want %v", i, w.Code, want)
		}
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := newTestRouter(t, mocks.NewMockQAService(ctrl))

	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %v, want %v", w.Code, http.StatusNoContent)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != testOrigin {
		t.Error("Router should apply CORS middleware")
	}
}

func TestRouter_MetricsExposeRateLimits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	limiter := ratelimit.New(ratelimit.Policy{Requests: 1, Window: ratelimit.DefaultPolicy().Window})
	mockQAService := mocks.NewMockQAService(ctrl)
	mockQAService.EXPECT().History(gomock.Any(), gomock.Any()).Return(service.HistoryPage{Items: []service.HistoryItem{}}, nil)

	router := NewRouter(&Deps{
		QAService:  mockQAService,
		Limiter:    limiter,
		Metrics:    observability.NewMetrics("qa_history"),
		CORSOrigin: testOrigin,
	})

	for i := 0; i < 2; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/history", nil))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), `qa_history_rate_limited_requests_total{route="/history"} 1`) {
		t.Errorf("metrics output missing rate limit counter:\n%s", body)
	}
}
