package handle

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/mssql-cli/mssqlcli/internal/tds"
)

// Connection is the middle-tier handle (spec §3). Invariant:
// InTransaction implies !Autocommit && Connected && Client != nil.
type Connection struct {
	mu sync.Mutex

	Env *Environment

	// Connection string fields (spec §4.3).
	Server   string // host:port
	Database string
	Username string
	Password string
	Encrypt  bool

	Connected     bool
	Autocommit    bool
	InTransaction bool

	// Connect attributes recognised by SetConnectAttr (spec §4.10).
	// Accepted but not enforced, per spec §5 "Login and connection
	// timeout attributes are accepted but not enforced."
	LoginTimeoutSeconds int32
	ConnTimeoutSeconds  int32

	Client tds.Client

	Diagnostics *DiagQueue

	statements map[*Statement]struct{}

	// io gates the "one I/O operation per connection at any time"
	// concurrency invariant (spec §5), the way app.App gates startup
	// probes with a golang.org/x/sync/semaphore.Weighted.
	io *semaphore.Weighted
}

// NewConnection allocates a fresh, not-yet-connected Connection owned by
// env.
func NewConnection(env *Environment) *Connection {
	conn := &Connection{
		Env:         env,
		Autocommit:  true,
		Diagnostics: NewDiagQueue(),
		statements:  make(map[*Statement]struct{}),
		io:          semaphore.NewWeighted(1),
	}
	env.AddConnection(conn)
	return conn
}

// CheckInvariant returns an error if InTransaction holds without its
// required preconditions, and nil otherwise. Not on any hot path.
func (c *Connection) CheckInvariant() error {
	if c.InTransaction && (c.Autocommit || !c.Connected || c.Client == nil) {
		return fmt.Errorf("handle: invariant violated: in_transaction requires !autocommit && connected && client != nil")
	}
	return nil
}

// AcquireIO blocks until this connection's single in-flight I/O slot is
// free, honoring ctx cancellation.
func (c *Connection) AcquireIO(ctx context.Context) error {
	return c.io.Acquire(ctx, 1)
}

// ReleaseIO releases the I/O slot acquired by AcquireIO.
func (c *Connection) ReleaseIO() {
	c.io.Release(1)
}

// AddStatement registers stmt as a child of c.
func (c *Connection) AddStatement(stmt *Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements[stmt] = struct{}{}
}

// RemoveStatement deregisters stmt, if present.
func (c *Connection) RemoveStatement(stmt *Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.statements, stmt)
}

// Statements returns a snapshot of statements currently owned by c.
func (c *Connection) Statements() []*Statement {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Statement, 0, len(c.statements))
	for s := range c.statements {
		out = append(out, s)
	}
	return out
}

// Free detaches c from its environment, cascading through any live
// statements first (spec §4.1 "freeing a connection with live statements
// cascades").
func (c *Connection) Free() {
	c.closeCascade()
	c.Env.RemoveConnection(c)
}

// Disconnect closes the underlying client and resets any owned
// statements, but leaves the handle itself allocated and attached to its
// environment so a subsequent Connect/DriverConnect can reuse it.
func (c *Connection) Disconnect() {
	c.closeCascade()
	c.InTransaction = false
}

func (c *Connection) closeCascade() {
	for _, stmt := range c.Statements() {
		stmt.closeCascade()
	}
	c.mu.Lock()
	client := c.Client
	c.Client = nil
	c.Connected = false
	c.mu.Unlock()
	if client != nil {
		client.Close()
	}
}
