package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	before := testutil.ToFloat64(CounterRecordsGenerated.WithLabelValues("template"))
	runsBefore := testutil.ToFloat64(CounterRuns.WithLabelValues("template", "success"))

	ObserveRun("template:user", "success", 12, 10*time.Millisecond)

	assert.Equal(t, before+12, testutil.ToFloat64(CounterRecordsGenerated.WithLabelValues("template")))
	assert.Equal(t, runsBefore+1, testutil.ToFloat64(CounterRuns.WithLabelValues("template", "success")))
}

func TestObserveRun_FailedCountsNoRecords(t *testing.T) {
	before := testutil.ToFloat64(CounterRecordsGenerated.WithLabelValues("custom"))
	failedBefore := testutil.ToFloat64(CounterRuns.WithLabelValues("custom", "failed"))

	ObserveRun("custom", "failed", 5, time.Millisecond)

	assert.Equal(t, before, testutil.ToFloat64(CounterRecordsGenerated.WithLabelValues("custom")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(CounterRuns.WithLabelValues("custom", "failed")))
}

func TestObserveLoad(t *testing.T) {
	before := testutil.ToFloat64(CounterRowsLoaded.WithLabelValues("sqlite"))
	ObserveLoad("sqlite", 30)
	ObserveLoad("sqlite", 0)
	assert.Equal(t, before+30, testutil.ToFloat64(CounterRowsLoaded.WithLabelValues("sqlite")))
}

func TestHandlerExposesCounters(t *testing.T) {
	ObserveLoad("postgres", 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "datacraft_rows_loaded_total"))
}
