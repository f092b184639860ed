// Package either provides the two result primitives threaded through every
// stageflow pipeline: Either, a two-case union holding exactly one of an
// error or a value, and Option, a presence/absence wrapper used by
// validations.
//
// Both types are immutable value types built only through their
// constructors. The zero value of Either is not meaningful; always use
// [Left] or [Right].
//
// # Either
//
//	res := either.Right[PaymentError](receipt)
//	if cause, ok := res.Left(); ok {
//	    return cause
//	}
//	receipt, _ := res.Right()
//
// By convention Left carries the error case and Right the value case,
// matching the stage contract Activity: P -> Either[E, P].
//
// # Option
//
//	if e, ok := validate(req).Get(); ok {
//	    // validation produced an error
//	}
package either
