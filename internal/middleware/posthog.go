package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// AnalyticsSink receives product analytics events. *utils.PosthogClientWrapper implements it.
type AnalyticsSink interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

// apiPrefix is stripped from route templates when naming events.
const apiPrefix = "/api/v1"

// routesToSkip are route templates the dashboard polls; tracking them is noise.
var routesToSkip = map[string]bool{
	apiPrefix + "/messages/:clientId/unread-count": true,
}

// PosthogMiddleware creates a Gin middleware handler that tracks API events with PostHog.
// Events carry the route template, never the raw path, so client and user ids stay out of analytics.
func PosthogMiddleware(sink AnalyticsSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sink == nil || !sink.IsInitialized() || routesToSkip[c.FullPath()] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		principal, ok := GetPrincipalFromContext(c)
		if !ok {
			return
		}

		// "/api/v1/filings/:clientId/:year/advance" -> "filings_advance"
		eventName := eventNameForRoute(c.FullPath())
		if eventName == "" {
			return
		}

		props := requestProperties(c)
		props["status_code"] = c.Writer.Status()
		props["role"] = string(principal.Role)
		sink.Enqueue(principal.UserID, eventName, props)
	}
}

// PosthogEvent sends a custom event from a handler on behalf of the authenticated caller.
func PosthogEvent(c *gin.Context, sink AnalyticsSink, eventName string, properties map[string]any) {
	if sink == nil || !sink.IsInitialized() {
		return
	}
	principal, ok := GetPrincipalFromContext(c)
	if !ok {
		return
	}

	props := requestProperties(c)
	for k, v := range properties {
		props[k] = v
	}
	props["role"] = string(principal.Role)
	sink.Enqueue(principal.UserID, eventName, props)
}

func eventNameForRoute(route string) string {
	var parts []string
	for _, segment := range strings.Split(strings.TrimPrefix(route, apiPrefix), "/") {
		if segment == "" || strings.HasPrefix(segment, ":") || strings.HasPrefix(segment, "*") {
			continue
		}
		parts = append(parts, strings.ReplaceAll(segment, "-", "_"))
	}
	return strings.Join(parts, "_")
}

// requestProperties describes the request without identifiers: the tax year is the only route param kept.
func requestProperties(c *gin.Context) map[string]any {
	props := map[string]any{
		"method": c.Request.Method,
		"route":  c.FullPath(),
	}
	if year, err := strconv.Atoi(c.Param("year")); err == nil {
		props["tax_year"] = year
	}
	return props
}
