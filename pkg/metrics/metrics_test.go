package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCatalogMetrics(t *testing.T) {
	m := New("catalog")

	m.RecordRequest("create", "ok", 10*time.Millisecond)
	m.RecordAuthFailure("bearer_mismatch")
	m.RecordAuthFailure("bearer_mismatch")
	m.RecordProductCreated()
	m.ObserveStore("list", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("create", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthFailuresTotal.WithLabelValues("bearer_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductsCreatedTotal))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "storefront_catalog_products_created_total 1"))
}

func TestNilCatalogMetrics(t *testing.T) {
	var m *CatalogMetrics
	assert.NotPanics(t, func() {
		m.RecordRequest("list", "ok", time.Second)
		m.RecordAuthFailure("x")
		m.RecordProductCreated()
		m.ObserveStore("list", time.Second)
	})
}
