// Package fetch implements streaming row prefetch (spec §4.5) and the
// cell converter behind SQLGetData (spec §4.6).
package fetch

import (
	"context"

	"github.com/mssql-cli/mssqlcli/internal/cell"
	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/tds"
)

// prefetchBatchSize is the number of rows pulled from the TDS stream in a
// single cooperative block (spec §4.5).
const prefetchBatchSize = 256

// Fetch advances the statement's row cursor, refilling the prefetch
// buffer from the streaming tds.Client when it runs dry, per the
// contract in spec §4.5.
func Fetch(ctx context.Context, stmt *handle.Statement) (clicode.Return, error) {
	if !stmt.Executed || len(stmt.Columns) == 0 {
		return clicode.Error, errNotExecuted
	}

	stmt.ResetOffsets()

	if stmt.RowCursor+1 >= len(stmt.Rows) && stmt.Terminal.Kind == handle.TerminalNone {
		if err := refill(ctx, stmt); err != nil {
			return clicode.Error, err
		}
	}

	if stmt.RowCursor+1 < len(stmt.Rows) {
		stmt.RowCursor++
		return clicode.Success, nil
	}

	switch stmt.Terminal.Kind {
	case handle.TerminalDone, handle.TerminalMoreResults:
		return clicode.NoData, nil
	case handle.TerminalError:
		conn := stmt.Conn
		state, native := handle.SQLStateForError(stmt.Terminal.Message)
		conn.Diagnostics.Push(handle.DiagRecord{SQLState: state, Native: native, Message: stmt.Terminal.Message})
		return clicode.Error, errTerminalError
	default:
		return clicode.NoData, nil
	}
}

var errNotExecuted = fetchError("fetch: statement has no open result set")
var errTerminalError = fetchError("fetch: stream terminated with a server error")

type fetchError string

func (e fetchError) Error() string { return string(e) }

// refill pulls up to prefetchBatchSize rows from the TDS stream,
// replacing the consumed prefetch buffer (spec §4.5 "pull up to 256 rows
// ... in a single cooperative block").
func refill(ctx context.Context, stmt *handle.Statement) error {
	conn := stmt.Conn
	if err := conn.AcquireIO(ctx); err != nil {
		return err
	}
	defer conn.ReleaseIO()

	rows := make([][]cell.CellValue, 0, prefetchBatchSize) // bounded ring buffer, not an unbounded accumulator
	stmt.RowCursor = -1

	for len(rows) < prefetchBatchSize {
		tok, err := conn.Client.Next(ctx)
		if err != nil {
			stmt.Terminal = handle.Terminal{Kind: handle.TerminalError, Message: err.Error()}
			break
		}

		switch tok.Kind {
		case tds.TokenRow:
			rows = append(rows, tok.Row)
		case tds.TokenInfo:
			conn.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateInfo, Native: tok.InfoNative, Message: tok.InfoMessage})
		case tds.TokenDone:
			if tok.DoneMore {
				stmt.Terminal = handle.Terminal{Kind: handle.TerminalMoreResults}
			} else {
				stmt.Terminal = handle.Terminal{Kind: handle.TerminalDone}
			}
			stmt.Rows = rows
			return nil
		case tds.TokenError:
			stmt.Terminal = handle.Terminal{Kind: handle.TerminalError, Message: tok.ErrorMessage}
			stmt.Rows = rows
			return nil
		case tds.TokenColumnMetadata:
			// Ignored here: a new result set's metadata is only relevant
			// once MoreResults is implemented (spec §9 design note).
		}
		if stmt.Terminal.Kind != handle.TerminalNone {
			break
		}
	}

	stmt.Rows = rows
	return nil
}
