package service

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// sharedCall runs fn once per key across concurrent callers. fn gets a
// context that keeps ctx's values but not its cancellation, so one caller
// leaving does not fail the others; that caller returns ctx.Err() while the
// work continues for whoever is still waiting.
func sharedCall(ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	detached := ctx
	if ctx.Done() != nil {
		detached = context.WithoutCancel(ctx)
	}
	ch := g.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	}
}
