// Package orchestrate provides functional prompts: composable primitives
// that drive one or more generation rounds against a session under a fixed
// pattern.
//
// Sequential primitives (Chain, Branch, PromptWhile, ChainWhile, RetryUntil,
// PromptFor, TreeOfThought) run on the caller's goroutine and move the
// session cursor according to precise, documented rules — chains leave the
// cursor after the last round, branches deliberately restore it to the
// origin so siblings accumulate under one parent.
//
// Parallel primitives (ParBranch, ParBranchWhile, ParDispatch, Broadcast)
// fan units of work out over a bounded worker pool. Every unit runs against
// its own session fork, so no in-flight cursor or tool scratch state is ever
// shared; the coordinator splices each fork's results onto the shared tree
// after all workers finish, in input order regardless of completion order.
// There is no built-in cancellation or timeout beyond context checks at
// unit boundaries: a stalled provider call stalls the whole fan-out.
package orchestrate
