package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// EventEnqueuer accepts analytics events, see utils.PosthogClientWrapper.
type EventEnqueuer interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

// untrackedRoutes are never reported to analytics.
var untrackedRoutes = map[string]bool{
	"/health":        true,
	"/api/v1/health": true,
}

// PosthogMiddleware reports every successful authenticated request as an event
// named after its route template.
func PosthogMiddleware(client EventEnqueuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !client.IsInitialized() {
			c.Next()
			return
		}

		c.Next()

		if untrackedRoutes[c.FullPath()] || len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}
		event := EventNameForRoute(c.Request.Method, c.FullPath())
		if event == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, p := range c.Params {
				params[p.Key] = p.Value
			}
			props["params"] = params
		}
		client.Enqueue(userID, event, props)
	}
}

// EventNameForRoute turns a route template into an analytics event name, e.g.
// POST /api/v1/journal-entries/:entryID/post -> post_api_v1_journal_entries_entryid_post.
func EventNameForRoute(method, fullPath string) string {
	if fullPath == "" {
		return ""
	}
	path := strings.Trim(fullPath, "/")
	path = strings.NewReplacer("/", "_", "-", "_", ":", "", ".", "_").Replace(path)
	return strings.ToLower(method + "_" + path)
}
