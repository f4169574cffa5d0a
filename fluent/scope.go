package fluent

import (
	"fmt"
	"strings"
)

// Scope is the mutable context of a single format call.
// It holds the external variables supplied by the caller, the local
// variables bound by term calls, the errors accumulated so far and the set
// of identifiers currently being resolved (used for cycle detection).
// A fresh Scope is created per format call and discarded afterwards; it is
// never shared between concurrent callers.
type Scope struct {
	bundle    *Bundle
	args      map[string]Value
	locals    map[string]Value
	functions map[string]Function
	errors    []error
	dirty     map[string]struct{}
}

// Variable looks up a variable, locals taking precedence over external args.
// Absence yields nil; the resolver turns that into a placeholder plus an error.
func (scope *Scope) Variable(name string) Value {
	if value, ok := scope.locals[name]; ok {
		return value
	}
	if value, ok := scope.args[name]; ok {
		return value
	}
	return nil
}

// SetLocal binds a local variable, always overwriting
func (scope *Scope) SetLocal(name string, value Value) {
	if scope.locals == nil {
		scope.locals = make(map[string]Value)
	}
	scope.locals[strings.TrimSpace(name)] = value
}

// ClearLocals removes all local variables
func (scope *Scope) ClearLocals() {
	scope.locals = nil
}

// AllVariables returns a merged view of external args and locals, locals winning
func (scope *Scope) AllVariables() map[string]Value {
	merged := make(map[string]Value, len(scope.args)+len(scope.locals))
	for name, value := range scope.args {
		merged[name] = value
	}
	for name, value := range scope.locals {
		merged[name] = value
	}
	return merged
}

// Track marks an identifier as currently being resolved.
// If the identifier is already being resolved, a circular reference error is
// recorded and false is returned; the caller has to bail out then.
// Every successful Track has to be paired with a later Release.
func (scope *Scope) Track(id string) bool {
	if _, tracking := scope.dirty[id]; tracking {
		scope.AddError(fmt.Errorf("Circular reference: %s", id))
		return false
	}
	scope.dirty[id] = struct{}{}
	return true
}

// Release removes an identifier from the tracking set (idempotent)
func (scope *Scope) Release(id string) {
	delete(scope.dirty, id)
}

// Tracking returns whether an identifier is currently being resolved
func (scope *Scope) Tracking(id string) bool {
	_, tracking := scope.dirty[id]
	return tracking
}

// AddError appends a resolution error
func (scope *Scope) AddError(err error) {
	scope.errors = append(scope.errors, err)
}

// Errors returns the resolution errors accumulated so far
func (scope *Scope) Errors() []error {
	return scope.errors
}

// Child creates a scope for nested resolution.
// The external args are the union of the parent's args and extra (extra
// winning on conflicts). Locals and the tracking set are copied by value so
// that mutations in the child never leak into the parent or its siblings.
// The child starts with a fresh error list; whoever creates a child is
// responsible for observing (and usually merging) its errors.
func (scope *Scope) Child(extra map[string]Value) *Scope {
	args := make(map[string]Value, len(scope.args)+len(extra))
	for name, value := range scope.args {
		args[name] = value
	}
	for name, value := range extra {
		args[name] = value
	}

	var locals map[string]Value
	if scope.locals != nil {
		locals = make(map[string]Value, len(scope.locals))
		for name, value := range scope.locals {
			locals[name] = value
		}
	}

	dirty := make(map[string]struct{}, len(scope.dirty))
	for id := range scope.dirty {
		dirty[id] = struct{}{}
	}

	return &Scope{
		bundle:    scope.bundle,
		args:      args,
		locals:    locals,
		functions: scope.functions,
		dirty:     dirty,
	}
}
