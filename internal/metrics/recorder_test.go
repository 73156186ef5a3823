package metrics

import (
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncWorkday(WorkdayCreated)
	r.IncWorkday(WorkdayCreated)
	r.IncWorkday(WorkdayClosed)
	r.IncShiftCreated()
	r.IncCount(CountAdjusted)
	r.IncCount(CountNoopClosed)
	r.IncWeek(WeekClosed)

	dump, err := DumpText(reg)
	require.NoError(t, err)

	assert.Contains(t, dump, `boxtally_workday_ops_total{op="created"} 2`)
	assert.Contains(t, dump, `boxtally_workday_ops_total{op="closed"} 1`)
	assert.Contains(t, dump, "boxtally_shifts_created_total 1")
	assert.Contains(t, dump, `boxtally_count_ops_total{op="adjusted"} 1`)
	assert.Contains(t, dump, `boxtally_count_ops_total{op="noop_closed"} 1`)
	assert.Contains(t, dump, `boxtally_week_ops_total{op="closed"} 1`)
}

func TestNoopRecorderIsUsableAsDefault(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncWorkday(WorkdayCreated)
	r.IncShiftCreated()
	r.IncCount(CountReset)
	r.IncWeek(WeekReopened)
}
