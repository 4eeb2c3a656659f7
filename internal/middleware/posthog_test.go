package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	"github.com/SscSPs/tax_filing_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEvent struct {
	distinctID string
	name       string
	props      map[string]any
}

type recordingSink struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (r *recordingSink) IsInitialized() bool { return true }

func (r *recordingSink) Enqueue(distinctID string, event string, properties map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, capturedEvent{distinctID: distinctID, name: event, props: properties})
}

func newAnalyticsRouter(sink middleware.AnalyticsSink, caller *domain.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		if caller != nil {
			c.Request = c.Request.WithContext(middleware.WithPrincipal(c.Request.Context(), *caller))
		}
		c.Next()
	}, middleware.PosthogMiddleware(sink))

	api.POST("/filings/:clientId/:year/advance", func(c *gin.Context) { c.Status(http.StatusOK) })
	api.GET("/messages/:clientId/unread-count", func(c *gin.Context) { c.Status(http.StatusOK) })
	api.POST("/payments/verify", func(c *gin.Context) { c.Status(http.StatusPaymentRequired) })
	api.POST("/filings/:clientId/:year/complete", func(c *gin.Context) {
		middleware.PosthogEvent(c, sink, "filing_completed", map[string]any{"outcome": "ok"})
		c.Status(http.StatusOK)
	})
	return r
}

func serve(r *gin.Engine, method, path string) {
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
}

func TestPosthogMiddleware_NamesEventsByRouteWithoutIdentifiers(t *testing.T) {
	sink := &recordingSink{}
	caller := &domain.Principal{UserID: "staff-1", Role: domain.RoleAccountant}
	r := newAnalyticsRouter(sink, caller)

	serve(r, http.MethodPost, "/api/v1/filings/client-42/2025/advance")

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, "staff-1", ev.distinctID)
	assert.Equal(t, "filings_advance", ev.name)
	assert.Equal(t, "/api/v1/filings/:clientId/:year/advance", ev.props["route"])
	assert.Equal(t, 2025, ev.props["tax_year"])
	assert.Equal(t, "accountant", ev.props["role"])
	assert.Equal(t, http.StatusOK, ev.props["status_code"])
	for key, v := range ev.props {
		if text, ok := v.(string); ok {
			assert.NotContains(t, text, "client-42", key)
		}
	}
}

func TestPosthogMiddleware_SkipsPolledRoutesFailuresAndAnonymous(t *testing.T) {
	sink := &recordingSink{}
	r := newAnalyticsRouter(sink, &domain.Principal{UserID: "user-1", Role: domain.RoleClient, ClientID: "c1"})

	serve(r, http.MethodGet, "/api/v1/messages/c1/unread-count")
	serve(r, http.MethodPost, "/api/v1/payments/verify")
	assert.Empty(t, sink.events)

	anonymous := newAnalyticsRouter(sink, nil)
	serve(anonymous, http.MethodPost, "/api/v1/filings/c1/2025/advance")
	assert.Empty(t, sink.events)
}

func TestPosthogEvent_AddsRequestContext(t *testing.T) {
	sink := &recordingSink{}
	r := newAnalyticsRouter(sink, &domain.Principal{UserID: "staff-1", Role: domain.RoleAdmin})

	serve(r, http.MethodPost, "/api/v1/filings/c1/2024/complete")

	require.Len(t, sink.events, 2, "custom event plus the route event")
	custom := sink.events[0]
	assert.Equal(t, "filing_completed", custom.name)
	assert.Equal(t, "ok", custom.props["outcome"])
	assert.Equal(t, 2024, custom.props["tax_year"])
	assert.Equal(t, "admin", custom.props["role"])
	assert.Equal(t, "filings_complete", sink.events[1].name)
}

func TestPosthogMiddleware_NilSinkIsNoOp(t *testing.T) {
	r := newAnalyticsRouter(nil, &domain.Principal{UserID: "u", Role: domain.RoleClient})
	assert.NotPanics(t, func() { serve(r, http.MethodPost, "/api/v1/filings/c1/2025/advance") })
}
