package stageflow

import "github.com/xraph/stageflow/either"

// Handle observes one detached unit of work. The workflow never joins on
// detached chains; a Handle — delivered through the hook.DetachedSpawned
// extension point — is the only way to learn their outcome.
//
// The result fields are written exactly once, before Done is closed.
// Callers must wait for Done before calling Failed, Cause, or Result.
type Handle[P, E any] struct {
	stage  string
	done   chan struct{}
	result either.Either[E, P]
}

func newHandle[P, E any](stage string) *Handle[P, E] {
	return &Handle[P, E]{stage: stage, done: make(chan struct{})}
}

// complete records the chain's outcome and releases Done waiters.
func (h *Handle[P, E]) complete(res either.Either[E, P]) {
	h.result = res
	close(h.done)
}

// Stage returns the name of the detached stage or branch that spawned
// the work.
func (h *Handle[P, E]) Stage() string { return h.stage }

// Done is closed when the detached chain finishes, whatever the outcome.
func (h *Handle[P, E]) Done() <-chan struct{} { return h.done }

// Failed reports whether the chain ended in a domain error.
func (h *Handle[P, E]) Failed() bool { return h.result.IsLeft() }

// Cause returns the opaque domain error of a failed chain, or nil.
func (h *Handle[P, E]) Cause() any {
	if cause, ok := h.result.Left(); ok {
		return cause
	}
	return nil
}

// Result returns the chain's full outcome: the domain error or the
// payload it produced. The payload is never merged back into the run
// that spawned it.
func (h *Handle[P, E]) Result() either.Either[E, P] { return h.result }
