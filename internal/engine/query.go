package engine

import "context"

// runOnActor schedules fn to run on a's own goroutine and waits for its
// result, giving read-only queries the same exclusive-access guarantee
// writes get without needing a separate lock around the book.
func runOnActor[T any](ctx context.Context, a *symbolActor, fn func(a *symbolActor) T) (T, error) {
	result := make(chan T, 1)

	select {
	case a.reads <- func() { result <- fn(a) }:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}

	select {
	case v := <-result:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
