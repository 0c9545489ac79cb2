package d1

import (
	"time"

	"github.com/tarmac-project/d1sdk/logging"
	"github.com/tarmac-project/d1sdk/metrics"
)

const (
	metricQueries     = "d1_queries_total"
	metricQueryErrors = "d1_query_errors_total"
	metricDuration    = "d1_query_duration_seconds"
	metricConnections = "d1_connections_active"
)

// instruments groups the driver's metric handles. Any handle may be nil.
type instruments struct {
	queries  *metrics.Counter
	errors   *metrics.Counter
	duration *metrics.Histogram
	active   *metrics.Gauge
}

func newInstruments(m metrics.Client, log logging.Client) *instruments {
	inst := &instruments{}
	if m == nil {
		return inst
	}

	var err error
	if inst.queries, err = m.NewCounter(metricQueries); err != nil {
		log.Warn("d1: metric %s disabled: %v", metricQueries, err)
	}
	if inst.errors, err = m.NewCounter(metricQueryErrors); err != nil {
		log.Warn("d1: metric %s disabled: %v", metricQueryErrors, err)
	}
	if inst.duration, err = m.NewHistogram(metricDuration); err != nil {
		log.Warn("d1: metric %s disabled: %v", metricDuration, err)
	}
	if inst.active, err = m.NewGauge(metricConnections); err != nil {
		log.Warn("d1: metric %s disabled: %v", metricConnections, err)
	}
	return inst
}

func (i *instruments) observe(start time.Time, err error) {
	i.queries.Inc()
	i.duration.ObserveSince(start)
	if err != nil {
		i.errors.Inc()
	}
}
