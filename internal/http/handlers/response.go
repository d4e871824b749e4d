// Package handlers implements the catalog HTTP endpoints.
//
// Every failure is written as an ErrorResponse with a stable code from
// errors.go, for example:
//
//	HTTP/1.1 404 Not Found
//	{"request_id": "123e4567-e89b-12d3-a456-426614174000", "code": "not_found", "message": "entry not found"}
//
// Catalog reads carry weak ETags derived from the snapshot version, so
// clients revalidate with If-None-Match and get 304 until the next reload.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-waiter-catalog/internal/http/middleware"
)

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID for correlating client errors with server logs.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go).
	Code string `json:"code" example:"not_found"`
	// Human-readable message, safe to show to users.
	Message string `json:"message" example:"entry not found"`
}

// fail aborts with an ErrorResponse. 5xx are logged with the request logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is fail for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// notModified sets etag on the response and reports whether If-None-Match
// already names it, in which case 304 has been written. The header may list
// several tags or be "*".
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	inm := c.GetHeader("If-None-Match")
	if inm == "" {
		return false
	}
	for _, tag := range strings.Split(inm, ",") {
		if tag = strings.TrimSpace(tag); tag == etag || tag == "*" {
			c.Status(http.StatusNotModified)
			return true
		}
	}
	return false
}
