package metrics

import (
	"fmt"
	"sort"
	"strings"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus counters.
type PrometheusRecorder struct {
	workdayOps    *prom.CounterVec
	shiftsCreated prom.Counter
	countOps      *prom.CounterVec
	weekOps       *prom.CounterVec
}

// NewPrometheusRecorder creates a recorder registered on the given registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		workdayOps: prom.NewCounterVec(prom.CounterOpts{
			Name: "boxtally_workday_ops_total",
			Help: "Workday lifecycle transitions by operation.",
		}, []string{"op"}),
		shiftsCreated: prom.NewCounter(prom.CounterOpts{
			Name: "boxtally_shifts_created_total",
			Help: "Shifts created, including the implicit first shift of a workday.",
		}),
		countOps: prom.NewCounterVec(prom.CounterOpts{
			Name: "boxtally_count_ops_total",
			Help: "Count accumulator operations by outcome.",
		}, []string{"op"}),
		weekOps: prom.NewCounterVec(prom.CounterOpts{
			Name: "boxtally_week_ops_total",
			Help: "Weekly closure transitions by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(r.workdayOps, r.shiftsCreated, r.countOps, r.weekOps)
	return r
}

func (r *PrometheusRecorder) IncWorkday(op WorkdayOp) {
	r.workdayOps.WithLabelValues(string(op)).Inc()
}

func (r *PrometheusRecorder) IncShiftCreated() {
	r.shiftsCreated.Inc()
}

func (r *PrometheusRecorder) IncCount(op CountOp) {
	r.countOps.WithLabelValues(string(op)).Inc()
}

func (r *PrometheusRecorder) IncWeek(op WeekOp) {
	r.weekOps.WithLabelValues(string(op)).Inc()
}

// DumpText renders the registry's counters as sorted "name{labels} value"
// lines for the CLI stats command.
func DumpText(g prom.Gatherer) (string, error) {
	families, err := g.Gather()
	if err != nil {
		return "", err
	}

	var lines []string
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			name := fam.GetName()
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			if len(labels) > 0 {
				name = fmt.Sprintf("%s{%s}", name, strings.Join(labels, ","))
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, value))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}
