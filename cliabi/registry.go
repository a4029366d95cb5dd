// Package cliabi is the C-ABI surface described in spec §6: the shared
// library symbols an application or driver manager links against, both
// narrow (UTF-8/"A"-suffixed or unsuffixed) and wide (UTF-16/"W"-suffixed)
// forms. It owns the opaque-handle registry and marshals C buffers into
// calls on internal/handle, internal/execdrv, internal/fetch,
// internal/catalog, and internal/info.
package cliabi

import (
	"sync"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/handle"
)

// registry maps opaque handle tokens to the Go object behind them. Spec §9
// design note: handles are an int-keyed arena rather than raw boxed
// pointers, so the C side only ever sees an opaque integer token cast to
// a pointer-sized value, never a real Go pointer (which the Go garbage
// collector must remain free to move/collect independently of any value
// a C caller might retain).
type registry struct {
	mu      sync.Mutex
	next    uintptr
	objects map[uintptr]any
	kinds   map[uintptr]clicode.HandleType
	tokens  map[any]uintptr // reverse index, for cascading frees by object identity
}

var reg = &registry{
	objects: make(map[uintptr]any),
	kinds:   make(map[uintptr]clicode.HandleType),
	tokens:  make(map[any]uintptr),
}

func (r *registry) register(kind clicode.HandleType, obj any) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	token := r.next
	r.objects[token] = obj
	r.kinds[token] = kind
	r.tokens[obj] = token
	return token
}

func (r *registry) lookup(token uintptr) (any, clicode.HandleType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[token]
	if !ok {
		return nil, 0, false
	}
	return obj, r.kinds[token], true
}

// tokenFor resolves the token behind obj, so a cascading free can drop a
// descendant's registry entry without the caller having to track the
// token itself (spec §8 "free without freeing children leaks nothing" —
// the registry is the resource tracker).
func (r *registry) tokenFor(obj any) (uintptr, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[obj]
	return token, ok
}

func (r *registry) free(token uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if obj, ok := r.objects[token]; ok {
		delete(r.tokens, obj)
	}
	delete(r.objects, token)
	delete(r.kinds, token)
}

func lookupEnv(token uintptr) (*handle.Environment, bool) {
	obj, kind, ok := reg.lookup(token)
	if !ok || kind != clicode.HandleEnv {
		return nil, false
	}
	env, ok := obj.(*handle.Environment)
	return env, ok
}

func lookupConn(token uintptr) (*handle.Connection, bool) {
	obj, kind, ok := reg.lookup(token)
	if !ok || kind != clicode.HandleConn {
		return nil, false
	}
	conn, ok := obj.(*handle.Connection)
	return conn, ok
}

func lookupStmt(token uintptr) (*handle.Statement, bool) {
	obj, kind, ok := reg.lookup(token)
	if !ok || kind != clicode.HandleStmt {
		return nil, false
	}
	stmt, ok := obj.(*handle.Statement)
	return stmt, ok
}

// diagQueueForObj resolves the diagnostic queue behind an already-looked-
// up handle object (spec §4.2: every handle but Environment carries a
// real queue; Environment's is always empty).
func diagQueueForObj(obj any, kind clicode.HandleType) (*handle.DiagQueue, bool) {
	switch kind {
	case clicode.HandleConn:
		return obj.(*handle.Connection).Diagnostics, true
	case clicode.HandleStmt:
		return obj.(*handle.Statement).Diagnostics, true
	case clicode.HandleEnv:
		return handle.NewDiagQueue(), true // always empty
	default:
		return nil, false
	}
}
