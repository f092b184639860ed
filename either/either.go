package either

// Either holds exactly one of two cases: Left (conventionally the error)
// or Right (conventionally the value). It is a tagged union; the tag is
// set by the constructors and never changes.
//
// Either values are immutable and safe to share across goroutines.
type Either[L, R any] struct {
	left   L
	right  R
	isLeft bool
}

// Left constructs an Either holding the left case.
func Left[L, R any](l L) Either[L, R] {
	return Either[L, R]{left: l, isLeft: true}
}

// Right constructs an Either holding the right case.
func Right[L, R any](r R) Either[L, R] {
	return Either[L, R]{right: r}
}

// IsLeft reports whether the left case is populated.
func (e Either[L, R]) IsLeft() bool { return e.isLeft }

// IsRight reports whether the right case is populated.
func (e Either[L, R]) IsRight() bool { return !e.isLeft }

// Left returns the left value and true when the left case is populated.
func (e Either[L, R]) Left() (L, bool) {
	if !e.isLeft {
		var zero L
		return zero, false
	}
	return e.left, true
}

// Right returns the right value and true when the right case is populated.
func (e Either[L, R]) Right() (R, bool) {
	if e.isLeft {
		var zero R
		return zero, false
	}
	return e.right, true
}

// MustLeft returns the left value. It panics if the right case is populated.
func (e Either[L, R]) MustLeft() L {
	if !e.isLeft {
		panic("either: MustLeft on Right value")
	}
	return e.left
}

// MustRight returns the right value. It panics if the left case is populated.
func (e Either[L, R]) MustRight() R {
	if e.isLeft {
		panic("either: MustRight on Left value")
	}
	return e.right
}

// Fold collapses an Either into a single value by applying exactly one of
// the two functions, making the match exhaustive at the call site.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func Fold[L, R, T any](e Either[L, R], onLeft func(L) T, onRight func(R) T) T {
	if e.isLeft {
		return onLeft(e.left)
	}
	return onRight(e.right)
}

// MapRight transforms the right case, leaving a Left untouched.
func MapRight[L, R, R2 any](e Either[L, R], f func(R) R2) Either[L, R2] {
	if e.isLeft {
		return Left[L, R2](e.left)
	}
	return Right[L](f(e.right))
}

// MapLeft transforms the left case, leaving a Right untouched.
func MapLeft[L, R, L2 any](e Either[L, R], f func(L) L2) Either[L2, R] {
	if e.isLeft {
		return Left[L2, R](f(e.left))
	}
	return Right[L2](e.right)
}
