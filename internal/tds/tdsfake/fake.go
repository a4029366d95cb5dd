// Package tdsfake provides an in-memory tds.Client used by this module's
// own tests, standing in for the real TDS codec that spec §1 places out of
// scope. It is grounded on cowsql-go-cowsql/driver/driver_test.go's
// fixture style (a minimal fake collaborator constructed directly by the
// test, rather than a mock framework).
package tdsfake

import (
	"context"
	"errors"

	"github.com/mssql-cli/mssqlcli/internal/tds"
)

// Batch is one scripted response to an ExecBatch call: the ordered list
// of tokens the fake will hand back from Next.
type Batch struct {
	SQL    string
	Tokens []tds.Token
}

// Client is a scripted tds.Client: each ExecBatch call consumes the next
// scripted Batch regardless of the SQL text, in call order.
type Client struct {
	Batches []Batch
	LoggedIn bool
	Closed   bool

	// SubmittedSQL records every ExecBatch argument in call order, so
	// tests can assert on synthesized SQL text.
	SubmittedSQL []string

	batchIdx int
	tokenIdx int
}

var errNoMoreBatches = errors.New("tdsfake: no more scripted batches")

// Login records that login was attempted and succeeds unconditionally.
func (c *Client) Login(ctx context.Context, cfg tds.LoginConfig) error {
	c.LoggedIn = true
	return nil
}

// ExecBatch advances to the next scripted batch.
func (c *Client) ExecBatch(ctx context.Context, sql string) error {
	c.SubmittedSQL = append(c.SubmittedSQL, sql)
	if c.batchIdx >= len(c.Batches) {
		return errNoMoreBatches
	}
	c.tokenIdx = 0
	c.batchIdx++
	return nil
}

// Next returns the next scripted token for the batch currently in
// progress.
func (c *Client) Next(ctx context.Context) (tds.Token, error) {
	if c.batchIdx == 0 || c.batchIdx > len(c.Batches) {
		return tds.Token{}, errors.New("tdsfake: Next called before ExecBatch")
	}
	b := c.Batches[c.batchIdx-1]
	if c.tokenIdx >= len(b.Tokens) {
		return tds.Token{Kind: tds.TokenDone}, nil
	}
	tok := b.Tokens[c.tokenIdx]
	c.tokenIdx++
	return tok, nil
}

// Close records that the client was closed.
func (c *Client) Close() error {
	c.Closed = true
	return nil
}
