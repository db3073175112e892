package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"whatsnext/internal/observability/logging"
	"whatsnext/internal/observability/metrics"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAttachesLoggerAndTraceID(t *testing.T) {
	p := &Provider{Logger: logging.Discard(), Metrics: metrics.NewCollector()}

	var sawLogger bool
	var sawTrace string
	router := mux.NewRouter()
	router.Use(p.Middleware)
	router.HandleFunc("/api/items/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		sawLogger = logging.LoggerFromContext(r.Context()) != nil
		sawTrace = logging.GetTraceIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/items/abc", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, sawLogger)
	assert.Equal(t, "trace-123", sawTrace)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Trace-ID"))
}
