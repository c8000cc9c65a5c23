package orchestrate

import (
	"context"
	"time"

	"github.com/arborworks/arbor/core/protocol"
	"github.com/arborworks/arbor/observability"
	"github.com/arborworks/arbor/session"
	"github.com/arborworks/arbor/tree"
)

// Step is the outcome of one generation round: the response text and the
// tree node holding it.
type Step struct {
	Text string
	Node *tree.Node
}

// StopFunc decides whether an iterate-until loop should stop. It is
// evaluated against the session (or fork) that ran the round, after the
// round completes.
type StopFunc func(s *session.Session) bool

// Chain advances once per prompt in order. The cursor ends after the last
// round; there is no backtracking. The first generation failure stops the
// chain, returning the steps completed so far alongside a ChainError —
// partial results remain attached and valid.
func Chain(ctx context.Context, s *session.Session, prompts []string) ([]Step, error) {
	observer := eventSink(s)

	observer.OnEvent(ctx, observability.Event{
		Type:      EventChainStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "orchestrate.Chain",
		Data:      map[string]any{"prompt_count": len(prompts)},
	})

	steps := make([]Step, 0, len(prompts))
	for i, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			return steps, &ChainError{StepIndex: i, Prompt: prompt, Err: err}
		}

		node, err := s.Advance(ctx, prompt, protocol.RoleUser)
		if err != nil {
			observer.OnEvent(ctx, observability.Event{
				Type:      EventChainComplete,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "orchestrate.Chain",
				Data:      map[string]any{"steps_completed": i, "error": true},
			})
			return steps, &ChainError{StepIndex: i, Prompt: prompt, Err: err}
		}
		steps = append(steps, Step{Text: node.Content(), Node: node})
	}

	observer.OnEvent(ctx, observability.Event{
		Type:      EventChainComplete,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "orchestrate.Chain",
		Data:      map[string]any{"steps_completed": len(steps), "error": false},
	})

	return steps, nil
}

// Branch runs one round per prompt, resetting the cursor to the origin
// before and after each round. The origin gains one child subtree per
// prompt and the cursor ends back at the origin — deliberately
// non-destructive to position so callers can keep branching or recombine.
func Branch(ctx context.Context, s *session.Session, prompts []string) ([]Step, error) {
	observer := eventSink(s)
	origin := s.Current()

	observer.OnEvent(ctx, observability.Event{
		Type:      EventBranchStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "orchestrate.Branch",
		Data:      map[string]any{"prompt_count": len(prompts)},
	})

	steps := make([]Step, 0, len(prompts))
	for i, prompt := range prompts {
		s.MoveTo(origin)

		node, err := s.Advance(ctx, prompt, protocol.RoleUser)
		if err != nil {
			s.MoveTo(origin)
			return steps, &ChainError{StepIndex: i, Prompt: prompt, Err: err}
		}
		steps = append(steps, Step{Text: node.Content(), Node: node})
	}
	s.MoveTo(origin)

	observer.OnEvent(ctx, observability.Event{
		Type:      EventBranchComplete,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "orchestrate.Branch",
		Data:      map[string]any{"branches": len(steps)},
	})

	return steps, nil
}

// PromptWhile advances once with first, then keeps advancing with cont while
// stop returns false. At least one round always executes.
func PromptWhile(ctx context.Context, s *session.Session, first, cont string, stop StopFunc) ([]Step, error) {
	node, err := s.Advance(ctx, first, protocol.RoleUser)
	if err != nil {
		return nil, &ChainError{StepIndex: 0, Prompt: first, Err: err}
	}

	steps := []Step{{Text: node.Content(), Node: node}}
	for !stop(s) {
		if err := ctx.Err(); err != nil {
			return steps, &ChainError{StepIndex: len(steps), Prompt: cont, Err: err}
		}

		node, err = s.Advance(ctx, cont, protocol.RoleUser)
		if err != nil {
			return steps, &ChainError{StepIndex: len(steps), Prompt: cont, Err: err}
		}
		steps = append(steps, Step{Text: node.Content(), Node: node})
	}
	return steps, nil
}

// ChainWhile runs an iterate-until loop per prompt: advance once, then keep
// advancing with cont while stop returns false, before moving to the next
// prompt. Pending tool state is cleared explicitly when the list is
// exhausted, so a leftover tool request from the final loop cannot leak into
// the caller's next independent round.
func ChainWhile(ctx context.Context, s *session.Session, prompts []string, cont string, stop StopFunc) ([]Step, error) {
	var steps []Step
	for _, prompt := range prompts {
		sub, err := PromptWhile(ctx, s, prompt, cont, stop)
		steps = append(steps, sub...)
		if err != nil {
			return steps, err
		}
	}

	s.ClearPendingToolState()
	return steps, nil
}

// RetryUntil re-runs a prompt from the origin until stop is satisfied or
// maxAttempts is exhausted. Each attempt resets the cursor to the origin
// first, so abandoned attempts remain as sibling children of the origin —
// the tree keeps the full record. Exhaustion is not an error: the last
// attempt's result is returned and the cursor stays on it. Generation
// failures propagate immediately.
func RetryUntil(ctx context.Context, s *session.Session, promptFn func() string, stop StopFunc, maxAttempts int) (Step, error) {
	observer := eventSink(s)
	origin := s.Current()

	var last Step
	for attempt := 0; attempt < maxAttempts; attempt++ {
		s.MoveTo(origin)

		prompt := promptFn()
		node, err := s.Advance(ctx, prompt, protocol.RoleUser)
		if err != nil {
			return Step{}, &ChainError{StepIndex: attempt, Prompt: prompt, Err: err}
		}
		last = Step{Text: node.Content(), Node: node}

		observer.OnEvent(ctx, observability.Event{
			Type:      EventRetryAttempt,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "orchestrate.RetryUntil",
			Data:      map[string]any{"attempt": attempt + 1, "max_attempts": maxAttempts},
		})

		if stop(s) {
			return last, nil
		}
	}
	return last, nil
}

// PromptFor maps items through promptFn and dispatches the resulting prompts
// through Chain, or through Branch when branch is true.
func PromptFor[T any](ctx context.Context, s *session.Session, items []T, promptFn func(T) string, branch bool) ([]Step, error) {
	prompts := make([]string, 0, len(items))
	for _, item := range items {
		prompts = append(prompts, promptFn(item))
	}

	if branch {
		return Branch(ctx, s, prompts)
	}
	return Chain(ctx, s, prompts)
}

// eventSink returns the observer orchestration events go to: the session's
// own sink, so round-level and pattern-level events land in one stream.
func eventSink(s *session.Session) observability.Observer {
	return s.Observer()
}
