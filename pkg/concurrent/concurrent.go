package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for each element of items on at most workers goroutines and waits for all
// of them. With workers <= 1 it runs serially on the caller goroutine. It returns the first error
// encountered; once an action fails or ctx is cancelled, elements not yet started are skipped.
func ForEach[T any](ctx context.Context, items []T, workers int, action func(context.Context, T) error) error {
	if workers <= 1 {
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := action(ctx, item); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return action(gctx, item)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Chunks splits items into at most n contiguous, near-equal slices that share items' backing
// array. It returns nil for empty input.
func Chunks[T any](items []T, n int) [][]T {
	if len(items) == 0 {
		return nil
	}
	n = max(1, min(n, len(items)))
	out := make([][]T, 0, n)
	size, rest := len(items)/n, len(items)%n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rest {
			end++
		}
		out = append(out, items[start:end:end])
		start = end
	}
	return out
}
