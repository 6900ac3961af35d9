package depgraph

// State pairs a transformed value with the effects collected while producing it.
type State[T any] struct {
	Agg   Aggregator
	Value T
}

// Wrap lifts v into a State with no effects.
func Wrap[T any](v T) State[T] {
	return State[T]{Value: v}
}

// Map transforms the value and keeps the aggregator.
func Map[T, R any](s State[T], f func(T) R) State[R] {
	return State[R]{Agg: s.Agg, Value: f(s.Value)}
}

// AndThen sequences a step that produces its own effects; both aggregators are merged.
func AndThen[T, R any](s State[T], f func(T) State[R]) State[R] {
	next := f(s.Value)
	return State[R]{Agg: Merge(s.Agg, next.Agg), Value: next.Value}
}

// MapWith transforms the value while letting f append to the in-flight
// aggregator. s's aggregator is handed to f as is, so s must not be used
// afterwards; pass a Clone when it is shared.
func MapWith[T, R any](s State[T], f func(T, *Aggregator) R) State[R] {
	agg := s.Agg
	v := f(s.Value, &agg)
	return State[R]{Agg: agg, Value: v}
}

// Flatten collects the values in order and unions every aggregator into a fresh
// one, so its result may be handed to MapWith.
func Flatten[T any](states []State[T]) State[[]T] {
	values := make([]T, 0, len(states))
	var agg Aggregator
	for _, s := range states {
		values = append(values, s.Value)
		agg.Include(s.Agg)
	}
	return State[[]T]{Agg: agg, Value: values}
}
