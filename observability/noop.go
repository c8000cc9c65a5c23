package observability

import "context"

// NoOpObserver drops every event. Sessions and dispatchers fall back to it
// when no observer is configured, so emission sites never need a nil check.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}
