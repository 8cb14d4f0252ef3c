// Package forms derives, for each node kind, the input fields currently
// relevant to a node's configuration and a short label summarizing it.
//
// All functions are pure: they take a domain.NodeData and return a new one,
// never mutating the input. Types of variable references are looked up
// through a TypeResolver, usually a *variables.Registry.
//
// Switching a sub-mode (trigger event, action type, condition mode) resets
// every dependent value and clears validation errors.
package forms
