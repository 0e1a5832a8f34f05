package httptransport

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downloadgate/internal/platform/metrics"
	"downloadgate/internal/platform/middleware"
	"downloadgate/pkg/requestcontext"
	"downloadgate/pkg/testutil"
)

type seen struct {
	address   string
	userAgent string
	requestID string
	now       time.Time
}

type inspector struct {
	last seen
}

func (p *inspector) Register(r chi.Router) {
	r.Get("/inspect", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p.last = seen{
			address:   requestcontext.ClientAddress(ctx),
			userAgent: requestcontext.UserAgent(ctx),
			requestID: middleware.GetRequestID(ctx),
			now:       requestcontext.Now(ctx),
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func TestRouter(t *testing.T) {
	testutil.Given(t, "the router with an inspecting registrar", func(t *testing.T) {
		clock := testutil.NewClock(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
		m := metrics.New(prometheus.NewRegistry())
		p := &inspector{}
		var logs bytes.Buffer
		router := NewRouter(RouterConfig{
			Logger:          slog.New(slog.NewJSONHandler(&logs, nil)),
			Metrics:         m,
			TrustedIPHeader: "CF-Connecting-IP",
			Clock:           clock.Now,
		}, p)

		testutil.When(t, "a request passes through the chain", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/inspect")
			req.Header.Set("CF-Connecting-IP", "203.0.113.7")
			req.Header.Set("User-Agent", "curl/8.5.0")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "handlers see request metadata", func(t *testing.T) {
				assert.Equal(t, http.StatusNoContent, rr.Code)
				assert.Equal(t, "203.0.113.7", p.last.address)
				assert.Equal(t, "curl/8.5.0", p.last.userAgent)
				assert.Equal(t, clock.Now(), p.last.now)
				assert.NotEmpty(t, p.last.requestID)
				assert.Equal(t, p.last.requestID, rr.Header().Get(middleware.RequestIDHeader))
			})
		})

		testutil.When(t, "a handler panics", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/panic"))

			testutil.Then(t, "it responds with internal_error and counts the panic", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
				assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Panics))
			})

			testutil.Then(t, "the panic log carries the response request ID", func(t *testing.T) {
				entry := findLog(t, &logs, "panic recovered")
				assert.NotEmpty(t, entry["request_id"])
				assert.Equal(t, rr.Header().Get(middleware.RequestIDHeader), entry["request_id"])
			})
		})
	})
}

func findLog(t *testing.T, logs *bytes.Buffer, msg string) map[string]any {
	t.Helper()
	for _, line := range bytes.Split(logs.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == msg {
			return entry
		}
	}
	t.Fatalf("no %q log line in:\n%s", msg, logs.String())
	return nil
}
