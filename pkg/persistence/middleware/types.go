// Package middleware decorates a ports.VariableStore with at-rest
// protections for custom variable values.
package middleware

import "github.com/aretw0/weave/pkg/ports"

// Middleware allows wrapping a VariableStore to add behavior.
type Middleware func(ports.VariableStore) ports.VariableStore

// Chain applies mws to store so that the first middleware is the outermost.
func Chain(store ports.VariableStore, mws ...Middleware) ports.VariableStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
