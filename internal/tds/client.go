// Package tds defines the narrow interface this module expects from the
// underlying Tabular Data Stream client. The TDS codec itself, TLS/TCP
// transport, and SQL Server login negotiation are out of scope for this
// module (spec §1); they are treated as a black-box streaming collaborator
// behind this interface, the way cowsql-go-cowsql's driver.Conn wraps
// *protocol.Protocol and sarathkumarsivan-go-hdb's driver.Conn wraps
// *protocol.Session.
package tds

import (
	"context"

	"github.com/mssql-cli/mssqlcli/internal/cell"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
)

// TokenKind discriminates the token variants the execution driver and the
// fetch layer need to interleave (spec §4.4, §4.5).
type TokenKind int

const (
	TokenColumnMetadata TokenKind = iota
	TokenRow
	TokenDone
	TokenError
	TokenInfo
)

// Token is one decoded unit from the response stream of a submitted batch.
type Token struct {
	Kind TokenKind

	// TokenColumnMetadata
	Columns []sqltype.ColumnDescriptor

	// TokenRow
	Row []cell.CellValue

	// TokenDone
	DoneRowCount int64
	DoneMore     bool

	// TokenError
	ErrorMessage string
	ErrorNative  int32

	// TokenInfo
	InfoMessage string
	InfoNative  int32
}

// LoginConfig carries the parameters needed to negotiate a SQL-Server
// authenticated, encrypted TDS login (spec §4.3).
type LoginConfig struct {
	Host, Database, Username, Password string
	Encrypt                            bool
}

// Client is the streaming TDS collaborator. Implementations own one TCP
// connection and are not safe for concurrent use (spec §5): only one
// caller may be driving I/O on a Client at a time.
type Client interface {
	// Login performs the TDS login sequence over an already-established
	// (and, if requested, already-TLS-wrapped) connection.
	Login(ctx context.Context, cfg LoginConfig) error

	// ExecBatch submits sql as a single batch. Subsequent Next calls
	// stream the response tokens.
	ExecBatch(ctx context.Context, sql string) error

	// Next returns the next token in the current batch's response
	// stream. After a TokenDone token with DoneMore == false, the batch
	// is finished; calling Next again without a new ExecBatch is an
	// error.
	Next(ctx context.Context) (Token, error)

	// Close releases the underlying connection.
	Close() error
}
