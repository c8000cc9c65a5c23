// Package provider defines the adapter contract between the orchestration
// core and a text-generation backend, plus a registry of named providers.
//
// The core depends only on the Provider interface. A provider turns a
// root-to-cursor message path into one generation round and reports the
// result as a Reply; any tool-satisfaction sub-steps happen inside Generate.
// Per-round scratch state (pending tool requests) lives in the provider and
// must be cleared between independent rounds — an explicit caller obligation
// surfaced through ClearPendingToolState.
package provider

import (
	"context"

	"github.com/arborworks/arbor/core/protocol"
)

// Reply is the outcome of one generation round.
type Reply struct {
	// Text is the generated content.
	Text string
	// Role is the role of the generated turn, normally assistant.
	Role protocol.Role
	// Extras carries provider-owned bookkeeping to store on the new tree
	// node (tool-call records, finish reasons, usage counters).
	Extras map[string]any
}

// Provider performs generation rounds against a backend.
type Provider interface {
	// Generate runs one generation round over the given conversation path.
	// Implementations may perform multiple internal sub-steps (e.g. to
	// satisfy tool calls) before settling on a reply.
	Generate(ctx context.Context, path []protocol.Message) (Reply, error)

	// HasPendingToolCalls reports whether the last round left unsatisfied
	// tool requests in scratch state.
	HasPendingToolCalls() bool

	// ClearPendingToolState drops per-round scratch state. Callers must
	// invoke this between independent rounds to avoid misattributing one
	// round's tool results to a later round's requests.
	ClearPendingToolState()

	// Fork returns a provider with fresh scratch state, sharing the
	// underlying client. Each parallel worker runs against its own fork so
	// in-flight tool state never crosses workers.
	Fork() Provider
}
