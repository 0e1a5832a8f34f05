// Package origin enforces the cross-origin allow-list for the download gate.
package origin

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	dErrors "downloadgate/pkg/domain-errors"
	"downloadgate/pkg/platform/agent"
	"downloadgate/pkg/platform/audit"
	"downloadgate/pkg/platform/httputil"
	"downloadgate/pkg/requestcontext"
)

const (
	allowMethods = "POST, OPTIONS"
	allowHeaders = "Content-Type"
	maxAge       = 24 * time.Hour
)

// MsgForbidden is the public message for rejected origins.
const MsgForbidden = "Origin is not allowed."

// Guard permits requests whose Origin header exactly matches an allow-listed
// value. There is no wildcard or subdomain matching.
type Guard struct {
	allowed map[string]struct{}
	logger  *slog.Logger
	auditor audit.Emitter
}

type Option func(*Guard)

// WithAuditor emits an origin_rejected event for every rejection.
func WithAuditor(a audit.Emitter) Option {
	return func(g *Guard) {
		if a != nil {
			g.auditor = a
		}
	}
}

// ParseAllowList splits a comma-separated origin list, trimming entries and
// dropping empty ones.
func ParseAllowList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// New builds a Guard from the allowed origins.
func New(origins []string, logger *slog.Logger, opts ...Option) *Guard {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	g := &Guard{allowed: allowed, logger: logger, auditor: audit.Discard{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allowed reports whether origin is on the allow-list. An empty origin is
// never allowed.
func (g *Guard) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	_, ok := g.allowed[origin]
	return ok
}

// RequestOrigin returns the trimmed Origin header.
func RequestOrigin(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Origin"))
}

// ApplyHeaders sets CORS response headers when the request origin is allowed
// and leaves the response untouched otherwise.
func (g *Guard) ApplyHeaders(w http.ResponseWriter, r *http.Request) {
	origin := RequestOrigin(r)
	if !g.Allowed(origin) {
		return
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Add("Vary", "Origin")
	h.Set("Access-Control-Allow-Methods", allowMethods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Max-Age", strconv.Itoa(int(maxAge.Seconds())))
}

// Middleware rejects disallowed origins with 403 before the request body is
// touched, and attaches CORS headers for allowed ones.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := RequestOrigin(r)
		if !g.Allowed(origin) {
			if g.logger != nil {
				g.logger.InfoContext(r.Context(), "origin rejected",
					"request_id", requestcontext.RequestID(r.Context()),
					"origin", origin,
					"method", r.Method,
					"path", r.URL.Path,
				)
			}
			event := audit.NewEvent(audit.EventOriginRejected, requestcontext.Now(r.Context()))
			event.Reason = string(dErrors.CodeForbidden)
			event.RequestID = requestcontext.RequestID(r.Context())
			event.Origin = origin
			event.Client = agent.Describe(r.Header.Get("User-Agent"))
			g.auditor.Emit(r.Context(), event)

			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, MsgForbidden))
			return
		}
		g.ApplyHeaders(w, r)
		next.ServeHTTP(w, r)
	})
}
