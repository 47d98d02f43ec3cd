package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PromObserver exports events as a Prometheus counter labelled by event type
// and severity text. Pair it with SlogObserver through a MultiObserver to
// get both logs and metrics from the same event stream.
type PromObserver struct {
	events *prometheus.CounterVec
}

// NewPromObserver creates a PromObserver registered with reg.
func NewPromObserver(reg prometheus.Registerer) (*PromObserver, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "converse_events_total",
		Help: "Observability events emitted by converse subsystems.",
	}, []string{"type", "level"})

	if err := reg.Register(events); err != nil {
		return nil, err
	}

	return &PromObserver{events: events}, nil
}

func (o *PromObserver) OnEvent(_ context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()
}
