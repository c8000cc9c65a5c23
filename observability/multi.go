package observability

import "context"

// MultiObserver forwards each event to a fixed set of observers in
// registration order, letting a session log to slog and count into
// Prometheus at the same time.
type MultiObserver struct {
	targets []Observer
}

// NewMultiObserver combines observers into one; nil entries are dropped.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	targets := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			targets = append(targets, obs)
		}
	}
	return &MultiObserver{targets: targets}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.targets {
		obs.OnEvent(ctx, event)
	}
}
