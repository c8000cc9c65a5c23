package orchestrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arborworks/arbor/core/protocol"
	"github.com/arborworks/arbor/observability"
	"github.com/arborworks/arbor/session"
	"github.com/arborworks/arbor/tree"
)

// DispatchResult holds the outcome of a parallel fan-out. Values is aligned
// 1:1 with input order regardless of completion order; a failed unit leaves
// a zero value in its slot and an entry in Errors.
type DispatchResult[R any] struct {
	// Values holds one slot per unit, in input order.
	Values []R

	// Errors lists the failed units by input index, ascending.
	Errors []SlotError
}

// Ok reports whether the unit at index i produced a value.
func (r DispatchResult[R]) Ok(i int) bool {
	for _, se := range r.Errors {
		if se.Index == i {
			return false
		}
	}
	return i >= 0 && i < len(r.Values)
}

// DoneFunc runs once after all workers of a fan-out complete, with the full
// ordered result set. A panic inside the callback is caught and does not
// affect the already-computed results.
type DoneFunc[R any] func(DispatchResult[R])

// WorkFunc is one unit of parallel work executed against a private session
// fork. The fork starts positioned at the unit's assigned node; everything
// the unit attaches stays invisible to the shared tree until the coordinator
// splices it.
type WorkFunc[A, R any] func(ctx context.Context, fork *session.Session, args A) (R, error)

type indexedResult[R any] struct {
	index int
	value R
	err   error
}

// dispatch runs units of work over a bounded worker pool and collects
// results in input order. The pool exists only for the duration of the call.
func dispatch[R any](
	ctx context.Context,
	cfg DispatchConfig,
	observer observability.Observer,
	units int,
	run func(ctx context.Context, index int) (R, error),
) DispatchResult[R] {
	result := DispatchResult[R]{Values: make([]R, units)}
	if units == 0 {
		return result
	}

	workers := workerCount(cfg, units)

	observer.OnEvent(ctx, observability.Event{
		Type:      EventDispatchStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "orchestrate.dispatch",
		Data:      map[string]any{"unit_count": units, "worker_count": workers},
	})

	workQueue := make(chan int, units)
	results := make(chan indexedResult[R], units)
	collected := make(chan struct{})

	errByIndex := make(map[int]error)

	go func() {
		for r := range results {
			if r.err != nil {
				errByIndex[r.index] = r.err
			} else {
				result.Values[r.index] = r.value
			}
		}
		close(collected)
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-workQueue:
					if !ok {
						return
					}

					observer.OnEvent(ctx, observability.Event{
						Type:      EventWorkerStart,
						Level:     observability.LevelVerbose,
						Timestamp: time.Now(),
						Source:    "orchestrate.dispatch",
						Data:      map[string]any{"worker_id": workerID, "unit_index": i},
					})

					value, err := run(ctx, i)
					results <- indexedResult[R]{index: i, value: value, err: err}

					observer.OnEvent(ctx, observability.Event{
						Type:      EventWorkerComplete,
						Level:     observability.LevelVerbose,
						Timestamp: time.Now(),
						Source:    "orchestrate.dispatch",
						Data:      map[string]any{"worker_id": workerID, "unit_index": i, "error": err != nil},
					})
				}
			}
		}(w)
	}

	for i := 0; i < units; i++ {
		workQueue <- i
	}
	close(workQueue)

	wg.Wait()
	close(results)
	<-collected

	// Units still queued after the workers exit were never run; that only
	// happens on cancellation, and those slots fail rather than report a
	// zero value as a success.
	for i := range workQueue {
		errByIndex[i] = fmt.Errorf("unit %d not dispatched: %w", i, ctx.Err())
	}

	for i := 0; i < units; i++ {
		if err, failed := errByIndex[i]; failed {
			result.Errors = append(result.Errors, SlotError{Index: i, Err: err})
		}
	}

	observer.OnEvent(ctx, observability.Event{
		Type:      EventDispatchComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "orchestrate.dispatch",
		Data: map[string]any{
			"unit_count":   units,
			"units_failed": len(result.Errors),
		},
	})

	return result
}

// finish invokes the optional completion callback and converts total failure
// into a DispatchError. Callback panics are contained.
func finish[R any](result DispatchResult[R], units int, done DoneFunc[R]) (DispatchResult[R], error) {
	if done != nil {
		func() {
			defer func() { _ = recover() }()
			done(result)
		}()
	}

	if units > 0 && len(result.Errors) == units {
		return result, &DispatchError{Errors: result.Errors}
	}
	return result, nil
}

// ParBranch is Branch with one worker per prompt: each prompt's round runs
// against a private fork positioned at the origin, and after all workers
// complete the new subtrees are spliced under the origin in input order,
// independent of completion order. The cursor returns to the origin. A
// failed unit leaves a zero Step slot; its siblings are unaffected.
func ParBranch(ctx context.Context, cfg DispatchConfig, s *session.Session, prompts []string, done DoneFunc[Step]) (DispatchResult[Step], error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return DispatchResult[Step]{}, fmt.Errorf("failed to resolve observer: %w", err)
	}

	origin := s.Current()
	if !origin.Populated() {
		return DispatchResult[Step]{}, ErrEmptyOrigin
	}

	forks := make([]*session.Session, len(prompts))
	for i := range prompts {
		forks[i] = s.Fork()
	}

	result := dispatch(ctx, cfg, observer, len(prompts), func(ctx context.Context, i int) (Step, error) {
		node, err := forks[i].Advance(ctx, prompts[i], protocol.RoleUser)
		if err != nil {
			return Step{}, err
		}
		return Step{Text: node.Content(), Node: node}, nil
	})

	commitInOrder(forks, result.Errors)
	s.MoveTo(origin)

	return finish(result, len(prompts), done)
}

// ParBranchWhile is ChainWhile with one worker per prompt: each prompt's
// iterate-until loop runs against its own fork, with stop evaluated against
// that fork. Each unit's result is the final step of its loop; the loop's
// whole chain is spliced under the origin in input order.
func ParBranchWhile(ctx context.Context, cfg DispatchConfig, s *session.Session, prompts []string, cont string, stop StopFunc, done DoneFunc[Step]) (DispatchResult[Step], error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return DispatchResult[Step]{}, fmt.Errorf("failed to resolve observer: %w", err)
	}

	origin := s.Current()
	if !origin.Populated() {
		return DispatchResult[Step]{}, ErrEmptyOrigin
	}

	forks := make([]*session.Session, len(prompts))
	for i := range prompts {
		forks[i] = s.Fork()
	}

	result := dispatch(ctx, cfg, observer, len(prompts), func(ctx context.Context, i int) (Step, error) {
		steps, err := PromptWhile(ctx, forks[i], prompts[i], cont, stop)
		forks[i].ClearPendingToolState()
		if err != nil {
			return Step{}, err
		}
		return steps[len(steps)-1], nil
	})

	commitInOrder(forks, result.Errors)
	s.MoveTo(origin)

	return finish(result, len(prompts), done)
}

// ParDispatch is the generic fan-out: it runs work concurrently once per
// already-positioned fork, passing each the shared args, and returns results
// aligned 1:1 with input order. One fork's failure yields a zero slot
// without aborting the others. Successful forks are spliced onto the shared
// tree by the coordinator, in input order.
func ParDispatch[A, R any](ctx context.Context, cfg DispatchConfig, forks []*session.Session, work WorkFunc[A, R], args A, done DoneFunc[R]) (DispatchResult[R], error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return DispatchResult[R]{}, fmt.Errorf("failed to resolve observer: %w", err)
	}

	result := dispatch(ctx, cfg, observer, len(forks), func(ctx context.Context, i int) (R, error) {
		var zero R
		if !forks[i].Current().Populated() {
			return zero, ErrEmptyOrigin
		}
		return work(ctx, forks[i], args)
	})

	commitInOrder(forks, result.Errors)

	return finish(result, len(forks), done)
}

// Broadcast fans work out over every leaf under the cursor, excluding leaves
// carrying any of skipLabels. Each remaining leaf gets a fork positioned on
// it; results align with the depth-first leaf order. The cursor is restored
// to its pre-call position.
func Broadcast[A, R any](ctx context.Context, cfg DispatchConfig, s *session.Session, work WorkFunc[A, R], skipLabels []string, args A, done DoneFunc[R]) (DispatchResult[R], error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return DispatchResult[R]{}, fmt.Errorf("failed to resolve observer: %w", err)
	}

	origin := s.Current()

	var targets []*tree.Node
	for _, leaf := range tree.Leaves(origin) {
		if leafSkipped(leaf, skipLabels) {
			continue
		}
		targets = append(targets, leaf)
	}

	forks := make([]*session.Session, len(targets))
	for i, leaf := range targets {
		forks[i] = s.Fork()
		forks[i].MoveTo(leaf)
	}

	result := dispatch(ctx, cfg, observer, len(forks), func(ctx context.Context, i int) (R, error) {
		var zero R
		if !forks[i].Current().Populated() {
			return zero, ErrEmptyOrigin
		}
		return work(ctx, forks[i], args)
	})

	commitInOrder(forks, result.Errors)
	s.MoveTo(origin)

	return finish(result, len(forks), done)
}

// commitInOrder splices each successful fork's results onto the shared tree,
// sequentially on the coordinator goroutine and in input order. Failed
// units' partial work is discarded rather than spliced.
func commitInOrder(forks []*session.Session, errs []SlotError) {
	failed := make(map[int]bool, len(errs))
	for _, se := range errs {
		failed[se.Index] = true
	}

	for i, fork := range forks {
		if failed[i] {
			continue
		}
		fork.Commit()
	}
}

func leafSkipped(leaf *tree.Node, skipLabels []string) bool {
	for _, name := range skipLabels {
		if leaf.HasLabel(name) {
			return true
		}
	}
	return false
}
