package either

// Option represents presence or absence of a single value. Validations use
// Option[E] to report "no error" (None) or "one error" (Some).
//
// The zero value of Option is None.
type Option[T any] struct {
	value   T
	present bool
}

// Some constructs an Option holding a value.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, present: true}
}

// None constructs an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.present }

// IsNone reports whether the Option is empty.
func (o Option[T]) IsNone() bool { return !o.present }

// Get returns the value and true when present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

// GetOrElse returns the value when present, else the fallback.
func (o Option[T]) GetOrElse(fallback T) T {
	if !o.present {
		return fallback
	}
	return o.value
}

// FoldOption collapses an Option into a single value by applying exactly
// one of the two functions.
func FoldOption[T, U any](o Option[T], onSome func(T) U, onNone func() U) U {
	if o.present {
		return onSome(o.value)
	}
	return onNone()
}

// MapOption transforms the value of a Some, leaving a None untouched.
func MapOption[T, U any](o Option[T], f func(T) U) Option[U] {
	if !o.present {
		return None[U]()
	}
	return Some(f(o.value))
}
