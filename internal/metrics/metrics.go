package metrics

import (
	"net/http"
	"sort"
	"sync"
	"sync/atomic"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Collector tracks engine counters. All methods are safe for concurrent use.
type Collector struct {
	readings           atomic.Uint64
	validationFailures atomic.Uint64
	predictions        atomic.Uint64
	modelFailures      atomic.Uint64

	mu     sync.Mutex
	alerts map[string]uint64 // fired alerts by alert type
}

// New returns an empty Collector.
func New() *Collector {
	return &Collector{alerts: make(map[string]uint64)}
}

// ReadingIngested records one validated reading accepted into the pipeline.
func (c *Collector) ReadingIngested() { c.readings.Add(1) }

// ReadingRejected records one reading that failed validation.
func (c *Collector) ReadingRejected() { c.validationFailures.Add(1) }

// PredictionServed records one successful health prediction.
func (c *Collector) PredictionServed() { c.predictions.Add(1) }

// ModelFailed records one failed scoring-model invocation.
func (c *Collector) ModelFailed() { c.modelFailures.Add(1) }

// AlertFired records one emitted alert of the given type.
func (c *Collector) AlertFired(alertType string) {
	c.mu.Lock()
	c.alerts[alertType]++
	c.mu.Unlock()
}

// Handler returns an http.Handler serving the counters as Prometheus text.
func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		format := expfmt.NewFormat(expfmt.TypeTextPlain)
		w.Header().Set("Content-Type", string(format))
		enc := expfmt.NewEncoder(w, format)
		for _, mf := range c.gather() {
			if err := enc.Encode(mf); err != nil {
				return
			}
		}
	})
}

// gather builds the metric families snapshot.
func (c *Collector) gather() []*dto.MetricFamily {
	fams := []*dto.MetricFamily{
		counterFamily("voltwatch_readings_ingested_total",
			"Validated readings accepted into the pipeline.",
			float64(c.readings.Load())),
		counterFamily("voltwatch_readings_rejected_total",
			"Readings rejected by validation.",
			float64(c.validationFailures.Load())),
		counterFamily("voltwatch_predictions_served_total",
			"Health predictions served.",
			float64(c.predictions.Load())),
		counterFamily("voltwatch_model_failures_total",
			"Failed scoring model invocations.",
			float64(c.modelFailures.Load())),
	}

	c.mu.Lock()
	types := make([]string, 0, len(c.alerts))
	for t := range c.alerts {
		types = append(types, t)
	}
	sort.Strings(types)
	ms := make([]*dto.Metric, 0, len(types))
	for _, t := range types {
		ms = append(ms, &dto.Metric{
			Label: []*dto.LabelPair{{
				Name:  proto.String("type"),
				Value: proto.String(t),
			}},
			Counter: &dto.Counter{Value: proto.Float64(float64(c.alerts[t]))},
		})
	}
	c.mu.Unlock()

	if len(ms) > 0 {
		fams = append(fams, &dto.MetricFamily{
			Name:   proto.String("voltwatch_alerts_fired_total"),
			Help:   proto.String("Alerts emitted, by alert type."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: ms,
		})
	}
	return fams
}

func counterFamily(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{
			{Counter: &dto.Counter{Value: proto.Float64(value)}},
		},
	}
}
