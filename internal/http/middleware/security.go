// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which attaches conservative security
// headers for a JSON API behind a reverse proxy, and the cache policy for
// catalog reads.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures SecurityHeaders.
//
// EnableHSTS emits Strict-Transport-Security for HTTPS requests only; enable
// it when traffic is HTTPS end-to-end. HSTSMaxAge defaults to 180 days.
//
// NoStore forbids caching of every response. Revalidate instead lets clients
// keep safe-method responses but forces an If-None-Match round trip, which
// pairs with the weak ETags the catalog list endpoint emits. NoStore wins
// when both are set.
//
// EnablePolicy adds browser feature policies (Permissions-Policy and
// X-Permitted-Cross-Domain-Policies).
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool
	Revalidate   bool
	EnablePolicy bool
}

// SecurityHeaders returns a Gin middleware that adds security headers to
// each response:
//
//   - always: X-Content-Type-Options, X-Frame-Options, Referrer-Policy
//   - EnablePolicy: Permissions-Policy, X-Permitted-Cross-Domain-Policies
//   - NoStore: Cache-Control: no-store, Pragma, Expires
//   - Revalidate (GET/HEAD): Cache-Control: private, no-cache
//   - EnableHSTS over HTTPS: Strict-Transport-Security
//
// X-Request-ID, when already set, is exposed to browser clients.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		switch {
		case opt.NoStore:
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		case opt.Revalidate && isSafeMethod(c.Request.Method):
			h.Set("Cache-Control", "private, no-cache")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		if rid := h.Get(requestIDHeader); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			cur := h.Get(hdr)
			if cur == "" {
				h.Set(hdr, requestIDHeader)
			} else if !strings.Contains(cur, requestIDHeader) {
				h.Set(hdr, cur+", "+requestIDHeader)
			}
		}

		c.Next()
	}
}

func isSafeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead
}

// isHTTPS reports whether the request used HTTPS directly or via a reverse
// proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
