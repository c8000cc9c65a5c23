package orchestrate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyOrigin is returned by parallel primitives when the cursor sits on
// a node that has not been populated: detached children cannot hang under an
// empty node without breaking the lifecycle invariant.
var ErrEmptyOrigin = errors.New("parallel origin node is not populated")

// ChainError wraps a generation failure inside a sequential primitive,
// preserving the step index and the prompt being processed. Supports
// errors.Is and errors.As through Unwrap.
type ChainError struct {
	// StepIndex is the 0-based index of the round that failed.
	StepIndex int

	// Prompt is the prompt text being processed when the failure occurred.
	Prompt string

	// Err is the underlying error.
	Err error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("chain failed at step %d: %v", e.StepIndex, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// SlotError records one failed unit of parallel work by its input index.
type SlotError struct {
	// Index is the unit's position in the input order.
	Index int

	// Err is the underlying error returned by the unit.
	Err error
}

// DispatchError is returned when every unit of a parallel fan-out failed.
// Partial failure is not an error: failed units simply leave zero-valued
// slots in the result.
type DispatchError struct {
	Errors []SlotError
}

func (e *DispatchError) Error() string {
	if len(e.Errors) == 0 {
		return "parallel dispatch failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("parallel dispatch failed: unit %d: %v",
			e.Errors[0].Index, e.Errors[0].Err)
	}

	counts := make(map[string]int)
	for _, se := range e.Errors {
		counts[se.Err.Error()]++
	}

	type summary struct {
		msg   string
		count int
	}
	summaries := make([]summary, 0, len(counts))
	for msg, count := range counts {
		summaries = append(summaries, summary{msg, count})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].count != summaries[j].count {
			return summaries[i].count > summaries[j].count
		}
		return summaries[i].msg < summaries[j].msg
	})

	parts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		parts = append(parts, fmt.Sprintf("%q (%d units)", s.msg, s.count))
	}
	return fmt.Sprintf("parallel dispatch failed: %d units failed: %s",
		len(e.Errors), strings.Join(parts, ", "))
}

// Unwrap returns all underlying unit errors, enabling errors.Is and
// errors.As across the whole fan-out.
func (e *DispatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, se := range e.Errors {
		errs = append(errs, se.Err)
	}
	return errs
}
