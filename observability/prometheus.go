package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PromObserver counts events as Prometheus metrics, labeled by event type
// and severity text. Register it under a name ("prom") to route orchestration
// events into an existing metrics pipeline alongside a logging observer.
type PromObserver struct {
	events *prometheus.CounterVec
}

// NewPromObserver creates a PromObserver and registers its collector with reg.
// Pass prometheus.DefaultRegisterer to use the process-wide registry.
func NewPromObserver(reg prometheus.Registerer) (*PromObserver, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arbor",
		Name:      "events_total",
		Help:      "Observability events emitted by arbor subsystems.",
	}, []string{"type", "level"})

	if err := reg.Register(events); err != nil {
		return nil, err
	}

	return &PromObserver{events: events}, nil
}

func (o *PromObserver) OnEvent(ctx context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()
}
