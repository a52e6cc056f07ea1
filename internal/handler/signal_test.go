package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto-idx-bot/internal/domain"
	"crypto-idx-bot/internal/risk"
	"crypto-idx-bot/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func TestGenerateSignalSuccess(t *testing.T) {
	h, _, _ := newTestHandler()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signal", nil)

	router := gin.New()
	router.POST("/api/signal", h.GenerateSignal)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Recommendation domain.Recommendation `json:"recommendation"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	rec := resp.Recommendation
	if rec.Signal.Direction != domain.DirectionUp {
		t.Fatalf("expected UP, got %s", rec.Signal.Direction)
	}
	if rec.Amount != 400 {
		t.Fatalf("expected amount 400 at confidence 82.5, got %d", rec.Amount)
	}
	if rec.Risk.Level != domain.RiskMedium {
		t.Fatalf("expected Medium risk, got %s", rec.Risk.Level)
	}
	if !rec.ExpiryAt.Equal(rec.EntryAt.Add(10 * time.Minute)) {
		t.Fatalf("expected expiry 10 minutes after entry, got %v -> %v", rec.EntryAt, rec.ExpiryAt)
	}
}

func TestGenerateSignalUnavailable(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	h := &Handler{tracer: tracer}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signal", nil)
	router := gin.New()
	router.POST("/api/signal", h.GenerateSignal)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestLatestSignalCold(t *testing.T) {
	h, _, _ := newTestHandler()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/signals/latest", nil)
	router := gin.New()
	router.GET("/api/signals/latest", h.LatestSignal)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any signal, got %d", w.Code)
	}
}

func TestLatestSignalAfterGenerate(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	manager := risk.NewManager(risk.DefaultLimits())
	cache := &stubRecommendationCache{}
	signals := service.NewSignalServiceWithInfra(tracer, stubSeries{}, stubEngine{}, manager, time.UTC, nil, cache)
	h := New(tracer, signals, nil, manager, nil)

	router := gin.New()
	router.POST("/api/signal", h.GenerateSignal)
	router.GET("/api/signals/latest", h.LatestSignal)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/signal", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("generate failed: %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/signals/latest", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after generate, got %d", w.Code)
	}

	var resp struct {
		Recommendation domain.Recommendation `json:"recommendation"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if resp.Recommendation.Signal.Confidence != 82.5 {
		t.Fatalf("expected cached confidence 82.5, got %v", resp.Recommendation.Signal.Confidence)
	}
}

func TestStreamSignalsUnavailable(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	h := &Handler{tracer: tracer}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/signals", nil)
	router := gin.New()
	router.GET("/ws/signals", h.StreamSignals)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a hub, got %d", w.Code)
	}
}

type stubRecommendationCache struct {
	rec *domain.Recommendation
}

func (s *stubRecommendationCache) StoreLatest(ctx context.Context, rec domain.Recommendation) error {
	copy := rec
	s.rec = &copy
	return nil
}

func (s *stubRecommendationCache) Latest(ctx context.Context) (*domain.Recommendation, error) {
	return s.rec, nil
}
