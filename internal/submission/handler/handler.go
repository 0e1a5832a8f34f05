package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"downloadgate/internal/origin"
	"downloadgate/internal/platform/middleware"
	ratelimitModels "downloadgate/internal/ratelimit/models"
	"downloadgate/internal/submission/service"
	dErrors "downloadgate/pkg/domain-errors"
	"downloadgate/pkg/platform/httputil"
	"downloadgate/pkg/requestcontext"
)

// Public messages for transport-level rejections.
const (
	MsgInvalidContentType = "Content-Type must be application/json."
	MsgInvalidJSON        = "Invalid JSON payload."
	MsgRouteNotFound      = "Route not found."
)

// MaxBodyBytes caps the request body; larger bodies are reported as invalid JSON.
const MaxBodyBytes = 64 << 10

const defaultRequestTimeout = 15 * time.Second

// Service defines the interface for download submissions.
type Service interface {
	Submit(ctx context.Context, in service.SubmitInput) (*service.SubmitResult, error)
}

// Handler serves the health check and the download gate.
type Handler struct {
	logger         *slog.Logger
	submissions    Service
	guard          *origin.Guard
	requestTimeout time.Duration
}

type Option func(*Handler)

// WithRequestTimeout bounds each gate request's context.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

// New creates a new download gate Handler.
func New(submissions Service, guard *origin.Guard, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:         logger,
		submissions:    submissions,
		guard:          guard,
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the gate routes with the chi router. Unknown routes and
// methods answer 404 not_found, with CORS headers for allowed origins.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)

	r.Group(func(gate chi.Router) {
		gate.Use(h.guard.Middleware)
		gate.Use(middleware.Timeout(h.requestTimeout))
		gate.Options("/download", h.handlePreflight)
		gate.Post("/download", h.handleDownload)
	})

	r.NotFound(h.handleNotFound)
	r.MethodNotAllowed(h.handleNotFound)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteText(w, http.StatusOK, "ok")
}

func (h *Handler) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.guard.ApplyHeaders(w, r)
	httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, MsgRouteNotFound))
}

// handleDownload parses the body and hands it to the submission service.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if !isJSON(r.Header.Get("Content-Type")) {
		h.logger.InfoContext(ctx, "download request with wrong content type",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidContentType, MsgInvalidContentType))
		return
	}

	body, err := decodeBody(w, r)
	if err != nil {
		h.logger.InfoContext(ctx, "invalid download request body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidJSON, MsgInvalidJSON))
		return
	}

	result, err := h.submissions.Submit(ctx, service.SubmitInput{
		Address:   requestcontext.ClientAddress(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Body:      body,
		Now:       requestcontext.Now(ctx),
	})
	if result != nil {
		addRateLimitHeaders(w, result.RateLimit)
	}
	if err != nil {
		if dErrors.Is(err, dErrors.CodeRateLimited) && result != nil && result.RateLimit != nil {
			w.Header().Set("Retry-After", strconv.Itoa(result.RateLimit.RetryAfter))
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result.Download)
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// decodeBody reads at most MaxBodyBytes and decodes exactly one JSON value.
func decodeBody(w http.ResponseWriter, r *http.Request) (any, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("empty body")
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func addRateLimitHeaders(w http.ResponseWriter, result *ratelimitModels.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
