package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCollectionWrite(t *testing.T) {
	c := NewCollector()

	c.ObserveCollectionWrite("accounts", 128, time.Millisecond, nil)
	c.ObserveCollectionWrite("accounts", 0, time.Millisecond, errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.CollectionWrites.WithLabelValues("accounts", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CollectionWrites.WithLabelValues("accounts", "error")))
	assert.Equal(t, 128.0, testutil.ToFloat64(c.CollectionBytes.WithLabelValues("accounts")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveCollectionWrite("posts", 1, time.Millisecond, nil)
	c.ObserveHTTPRequest(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.ObserveHTTPRequest(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `socialcosmos_http_requests_total{method="GET",path="/healthz",status="200"} 1`), body)
}
