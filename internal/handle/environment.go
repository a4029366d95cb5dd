package handle

import "sync"

// Environment is the top-level handle (spec §3). It owns an unordered
// collection of live Connections and carries no diagnostics of its own.
type Environment struct {
	mu      sync.Mutex
	Version int16 // CLI version code: 3 or 2
	conns   map[*Connection]struct{}
}

// NewEnvironment allocates a fresh Environment.
func NewEnvironment() *Environment {
	return &Environment{conns: make(map[*Connection]struct{})}
}

// SetVersion implements SetEnvAttr's CLI-version attribute (spec §4.10).
func (env *Environment) SetVersion(v int16) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.Version = v
}

// AddConnection registers conn as a child of env.
func (env *Environment) AddConnection(conn *Connection) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.conns[conn] = struct{}{}
}

// RemoveConnection deregisters conn, if present.
func (env *Environment) RemoveConnection(conn *Connection) {
	env.mu.Lock()
	defer env.mu.Unlock()
	delete(env.conns, conn)
}

// Connections returns a snapshot of the currently owned connections.
func (env *Environment) Connections() []*Connection {
	env.mu.Lock()
	defer env.mu.Unlock()
	out := make([]*Connection, 0, len(env.conns))
	for c := range env.conns {
		out = append(out, c)
	}
	return out
}

// Free cascades through any still-live connections (and their
// statements), closing them; the connections stay registered with env
// (spec §4.1 "freeing an environment with live connections cascades").
func (env *Environment) Free() {
	for _, conn := range env.Connections() {
		conn.closeCascade()
	}
}
