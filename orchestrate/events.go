package orchestrate

import "github.com/arborworks/arbor/observability"

// Orchestration event types.
const (
	EventChainStart       observability.EventType = "orchestrate.chain.start"
	EventChainComplete    observability.EventType = "orchestrate.chain.complete"
	EventBranchStart      observability.EventType = "orchestrate.branch.start"
	EventBranchComplete   observability.EventType = "orchestrate.branch.complete"
	EventRetryAttempt     observability.EventType = "orchestrate.retry.attempt"
	EventDispatchStart    observability.EventType = "orchestrate.dispatch.start"
	EventDispatchComplete observability.EventType = "orchestrate.dispatch.complete"
	EventWorkerStart      observability.EventType = "orchestrate.worker.start"
	EventWorkerComplete   observability.EventType = "orchestrate.worker.complete"
)
