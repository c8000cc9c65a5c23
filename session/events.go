package session

import "github.com/arborworks/arbor/observability"

// Session event types emitted during generation rounds and navigation.
const (
	EventAdvanceStart    observability.EventType = "session.advance.start"
	EventAdvanceComplete observability.EventType = "session.advance.complete"
	EventAdvanceError    observability.EventType = "session.advance.error"
	EventQuery           observability.EventType = "session.query"
	EventLabel           observability.EventType = "session.label"
)
