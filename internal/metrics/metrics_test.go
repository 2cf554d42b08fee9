package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/internal/engine"
)

func TestPrometheusImplementsEngineMetrics(t *testing.T) {
	var _ engine.Metrics = NewPrometheus()
}

func TestPrometheusCounters(t *testing.T) {
	p := NewPrometheus()

	p.RunCompleted("differentiate", engine.OutcomeOK, 3, 12*time.Millisecond)
	p.RunCompleted("differentiate", engine.OutcomeOK, 1, 2*time.Millisecond)
	p.RunCompleted("matrix_rref", engine.OutcomeUserError, 0, time.Millisecond)
	p.RuleApplied("differentiate", "power_rule")
	p.RuleApplied("differentiate", "power_rule")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.runs.WithLabelValues("differentiate", engine.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("matrix_rref", engine.OutcomeUserError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.rules.WithLabelValues("differentiate", "power_rule")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.duration))
	assert.Equal(t, 2, testutil.CollectAndCount(p.steps))
}

func TestPrometheusHandler(t *testing.T) {
	p := NewPrometheus()
	p.RunCompleted("expand", engine.OutcomeOK, 1, time.Millisecond)

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stepwise_runs_total")
	assert.Contains(t, string(body), `operation="expand"`)
}
