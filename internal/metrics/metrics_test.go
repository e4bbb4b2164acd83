package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.IncrementTasksCreated()
	m.IncrementTasksCreated()
	m.IncrementSettingsWritten("merge")
	m.ObserveRequest("GET", "/device/all_devices", "200", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TasksCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettingsWritten.WithLabelValues("merge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/device/all_devices", "200")))
}

func TestNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementTasksCreated()
		m.IncrementErrors("not_found")
		m.ObserveRequest("GET", "/", "200", 0)
	})
}

func TestHandlerExposesOwnRegistry(t *testing.T) {
	m := New()
	m.IncrementTasksCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "feedhub_tasks_created_total 1")
}
