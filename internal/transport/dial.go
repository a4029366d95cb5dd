package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"golang.org/x/sys/unix"

	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/telemetry"
	"github.com/mssql-cli/mssqlcli/internal/tds"
)

// ClientFactory wraps a dialed (and, when encryption is on, TLS-wrapped)
// net.Conn into a tds.Client; Connect performs the TDS login afterwards.
// The TDS codec itself is out of scope for this module (spec §1); callers
// supply the factory, the way cowsql-go-cowsql's protocol.Connector takes
// a DialFunc rather than hard-coding net.Dial.
type ClientFactory func(conn net.Conn) tds.Client

// DialOptions tunes the connect/retry behavior, grounded on
// internal/protocol.Connector's NewConnector defaults in cowsql-go-cowsql.
type DialOptions struct {
	BackoffFactor time.Duration
	BackoffCap    time.Duration
	RetryLimit    uint
	Log           telemetry.Func
}

func (o DialOptions) withDefaults() DialOptions {
	if o.BackoffFactor == 0 {
		o.BackoffFactor = 100 * time.Millisecond
	}
	if o.BackoffCap == 0 {
		o.BackoffCap = time.Second
	}
	if o.Log == nil {
		o.Log = telemetry.Discard
	}
	return o
}

// Connect dials Host:Port, disables Nagle, performs a TLS handshake when
// p.Encrypt is set, retries transient failures with exponential backoff,
// then hands the established connection to newClient and performs the TDS
// login (spec §4.3).
//
// On failure the caller, which owns the Connection whose diagnostics
// queue this belongs to, pushes the "08001" diagnostic via
// PushLoginFailure; Connect itself only returns the error.
func Connect(ctx context.Context, p Params, newClient ClientFactory, opts DialOptions) (tds.Client, error) {
	opts = opts.withDefaults()

	strategies := makeRetryStrategies(opts.BackoffFactor, opts.BackoffCap, opts.RetryLimit)

	var client tds.Client
	err := retry.Retry(func(attempt uint) error {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		c, err := dialOnce(ctx, p, newClient)
		if err != nil {
			opts.Log(telemetry.Warn, "attempt %d: dial %s:%d failed: %v", attempt, p.Host, p.Port, err)
			return err
		}
		client = c
		return nil
	}, strategies...)

	if err != nil {
		return nil, fmt.Errorf("transport: connect to %s:%d: %w", p.Host, p.Port, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if client == nil {
		return nil, fmt.Errorf("transport: connect to %s:%d: no client established", p.Host, p.Port)
	}

	cfg := tds.LoginConfig{Host: p.Host, Database: p.Database, Username: p.Username, Password: p.Password, Encrypt: p.Encrypt}
	if err := client.Login(ctx, cfg); err != nil {
		client.Close()
		return nil, fmt.Errorf("transport: login: %w", err)
	}

	return client, nil
}

func dialOnce(ctx context.Context, p Params, newClient ClientFactory) (tds.Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", p.Host, p.Port))
	if err != nil {
		return nil, err
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		disableNagle(tcpConn)
	}

	if p.Encrypt {
		conn = tls.Client(conn, &tls.Config{ServerName: p.Host})
	}

	return newClient(conn), nil
}

// disableNagle sets TCP_NODELAY directly via the socket option, grounded
// on cowsql-go-cowsql/cmd/cowsql-demo.go's golang.org/x/sys/unix usage
// (there for signal handling; here for the raw socket option spec §4.3
// calls for explicitly: "disable Nagle").
func disableNagle(conn *net.TCPConn) {
	raw, err := conn.SyscallConn()
	if err != nil {
		_ = conn.SetNoDelay(true)
		return
	}
	raw.Control(func(fd uintptr) {
		unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	})
}

func makeRetryStrategies(backoffFactor, backoffCap time.Duration, limit uint) []strategy.Strategy {
	backoffStrategy := backoff.BinaryExponential(backoffFactor)
	capped := func(attempt uint) time.Duration {
		d := backoffStrategy(attempt)
		if d > backoffCap {
			d = backoffCap
		}
		return d
	}
	strategies := []strategy.Strategy{strategy.Backoff(capped)}
	if limit > 0 {
		strategies = append([]strategy.Strategy{strategy.Limit(limit)}, strategies...)
	}
	return strategies
}

// PushLoginFailure records the "08001" diagnostic for a failed Connect
// call (spec §4.3).
func PushLoginFailure(conn *handle.Connection, err error) {
	conn.Diagnostics.Push(handle.DiagRecord{
		SQLState: handle.StateTransportLogin,
		Message:  err.Error(),
	})
}
