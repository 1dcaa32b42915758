package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performHealth(h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/health", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealthHandlerOK(t *testing.T) {
	var hadDeadline bool
	ping := func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}

	w := performHealth(healthHandler(ping))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !hadDeadline {
		t.Error("ping context must carry a deadline")
	}
}

func TestHealthHandlerDegraded(t *testing.T) {
	ping := func(ctx context.Context) error {
		return errors.New("no reachable servers")
	}

	w := performHealth(healthHandler(ping))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHealthHandlerWedgedPing(t *testing.T) {
	// A ping that only returns when its context expires must still produce
	// a degraded response instead of hanging the probe.
	ping := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	w := performHealth(healthHandler(ping))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
