package core

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FetchFunc is one named read operation inside an aggregate.
type FetchFunc func(ctx context.Context) (any, error)

// FetchAll runs every named operation concurrently and joins on all of
// them. The first failure cancels the remaining operations and fails
// the whole aggregate; partial results are never returned. Cancellation
// of the caller's ctx propagates into every branch.
func FetchAll(ctx context.Context, ops map[string]FetchFunc) (map[string]any, error) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make(map[string]any, len(ops))

	for name, op := range ops {
		name, op := name, op
		g.Go(func() error {
			v, err := op(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			mu.Lock()
			results[name] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
