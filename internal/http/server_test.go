package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"alquipc/internal/http/middleware"
	"alquipc/internal/modules/pricing"
)

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(ServerDeps{
		Pricing: pricing.NewService(nil, nil, pricing.Catalog{}, nil),
		Options: Options{RateLimitPerMin: 60, RateLimitBurst: 10, CORSOrigins: []string{"*"}},
	})
	r := srv.Routes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("health = %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("missing request id header")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/quotes",
		strings.NewReader(`{"equipment_count": 3, "initial_days": 4, "mode": "OutsideCity"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total":441000`) {
		t.Errorf("quote = %d %s", w.Code, w.Body.String())
	}
}
