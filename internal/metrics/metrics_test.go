package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters_Increment(t *testing.T) {
	before := testutil.ToFloat64(SearchRequests.WithLabelValues("test"))
	SearchRequests.WithLabelValues("test").Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(SearchRequests.WithLabelValues("test")), 0.0001)
}

func TestHandler_ServesRegistry(t *testing.T) {
	FlushItems.WithLabelValues(FlushIndexed).Add(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nova_flush_items_total")
}
