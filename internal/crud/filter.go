package crud

import "strings"

// Predicate reports whether an entity passes one filter dimension.
type Predicate[T any] func(T) bool

// Apply keeps the items passing every predicate, in input order.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
next:
	for _, it := range items {
		for _, p := range preds {
			if p != nil && !p(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// Text matches when query is a case-insensitive substring of any field.
// A blank query matches everything.
func Text[T any](query string, fields func(T) []string) Predicate[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	return func(it T) bool {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}
}

// Equal matches an exact categorical value. A nil selection means "all".
func Equal[T any, V comparable](selected *V, get func(T) V) Predicate[T] {
	if selected == nil {
		return nil
	}
	want := *selected
	return func(it T) bool { return get(it) == want }
}

// EqualOptional is Equal for optional attributes: an entity without the
// attribute never matches a concrete selection.
func EqualOptional[T any, V comparable](selected *V, get func(T) *V) Predicate[T] {
	if selected == nil {
		return nil
	}
	want := *selected
	return func(it T) bool {
		v := get(it)
		return v != nil && *v == want
	}
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
