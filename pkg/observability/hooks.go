package observability

import (
	"context"

	"github.com/aretw0/weave/pkg/domain"
)

// MergeHooks fans each callback out to every non-nil callback in hooks, in
// order.
func MergeHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	var conns []func(context.Context, *domain.ConnectionEvent)
	var dels []func(context.Context, *domain.DeletionEvent)
	var vars []func(context.Context, *domain.VariableEvent)
	for _, h := range hooks {
		if h.OnConnection != nil {
			conns = append(conns, h.OnConnection)
		}
		if h.OnDeletion != nil {
			dels = append(dels, h.OnDeletion)
		}
		if h.OnVariable != nil {
			vars = append(vars, h.OnVariable)
		}
	}
	if len(conns) > 0 {
		out.OnConnection = func(ctx context.Context, e *domain.ConnectionEvent) {
			for _, fn := range conns {
				fn(ctx, e)
			}
		}
	}
	if len(dels) > 0 {
		out.OnDeletion = func(ctx context.Context, e *domain.DeletionEvent) {
			for _, fn := range dels {
				fn(ctx, e)
			}
		}
	}
	if len(vars) > 0 {
		out.OnVariable = func(ctx context.Context, e *domain.VariableEvent) {
			for _, fn := range vars {
				fn(ctx, e)
			}
		}
	}
	return out
}
