// Package execdrv implements the execution driver (spec §4.4): driving a
// textual batch against the streaming tds.Client, interleaving
// result-set metadata, row tokens, done tokens, and info/error messages.
package execdrv

import (
	"context"
	"fmt"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/tds"
)

// ExecDirect drives sql as a single batch on stmt's connection, per the
// contract in spec §4.4.
func ExecDirect(ctx context.Context, stmt *handle.Statement, sql string) (clicode.Return, error) {
	conn := stmt.Conn

	if !conn.Connected || conn.Client == nil {
		conn.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateNotConnected, Message: "connection is not established"})
		return clicode.Error, fmt.Errorf("execdrv: connection not established")
	}

	if err := conn.AcquireIO(ctx); err != nil {
		return clicode.Error, err
	}
	defer conn.ReleaseIO()

	if !conn.Autocommit && !conn.InTransaction {
		if err := beginTransaction(ctx, conn); err != nil {
			conn.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateGeneral, Message: err.Error()})
			return clicode.Error, err
		}
	}

	if stmt.Streaming && stmt.Terminal.Kind == handle.TerminalNone {
		drain(ctx, conn.Client)
	}

	if err := conn.Client.ExecBatch(ctx, sql); err != nil {
		conn.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateGeneral, Message: err.Error()})
		return clicode.Error, err
	}

	return readUntilShape(ctx, stmt)
}

// beginTransaction sends BEGIN TRANSACTION synchronously and marks the
// connection as in a transaction (spec §4.4 step 2).
func beginTransaction(ctx context.Context, conn *handle.Connection) error {
	if err := conn.Client.ExecBatch(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("execdrv: begin transaction: %w", err)
	}
	for {
		tok, err := conn.Client.Next(ctx)
		if err != nil {
			return fmt.Errorf("execdrv: begin transaction: %w", err)
		}
		if tok.Kind == tds.TokenDone {
			conn.InTransaction = true
			return nil
		}
		if tok.Kind == tds.TokenError {
			return fmt.Errorf("execdrv: begin transaction: %s", tok.ErrorMessage)
		}
	}
}

// drain consumes and discards remaining tokens of an unterminated
// streaming run (spec §4.4 step 3).
func drain(ctx context.Context, client tds.Client) {
	for {
		tok, err := client.Next(ctx)
		if err != nil {
			return
		}
		if tok.Kind == tds.TokenDone && !tok.DoneMore {
			return
		}
		if tok.Kind == tds.TokenError {
			return
		}
	}
}

// readUntilShape reads the response stream until either the first result
// set's column metadata token, or a terminal done/error token, populating
// stmt accordingly (spec §4.4 step 4).
func readUntilShape(ctx context.Context, stmt *handle.Statement) (clicode.Return, error) {
	conn := stmt.Conn
	hasInfo := false

	for {
		tok, err := conn.Client.Next(ctx)
		if err != nil {
			conn.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateGeneral, Message: err.Error()})
			return clicode.Error, err
		}

		switch tok.Kind {
		case tds.TokenInfo:
			conn.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateInfo, Native: tok.InfoNative, Message: tok.InfoMessage})
			hasInfo = true

		case tds.TokenColumnMetadata:
			stmt.Columns = tok.Columns
			stmt.Streaming = true
			stmt.RowCount = -1
			stmt.Executed = true
			stmt.Terminal = handle.Terminal{Kind: handle.TerminalNone}
			stmt.ResetOffsets()
			if hasInfo {
				return clicode.SuccessWithInfo, nil
			}
			return clicode.Success, nil

		case tds.TokenDone:
			stmt.Columns = nil
			stmt.Streaming = false
			stmt.Executed = true
			if tok.DoneRowCount != 0 {
				stmt.RowCount = tok.DoneRowCount
			} else {
				stmt.RowCount = -1
			}
			stmt.Terminal = handle.Terminal{Kind: handle.TerminalDone}
			if tok.DoneMore {
				stmt.PendingResultSets = append(stmt.PendingResultSets, handle.PendingResultSet{})
			}
			if hasInfo {
				return clicode.SuccessWithInfo, nil
			}
			return clicode.Success, nil

		case tds.TokenError:
			state, native := handle.SQLStateForError(tok.ErrorMessage)
			conn.Diagnostics.Push(handle.DiagRecord{SQLState: state, Native: native, Message: tok.ErrorMessage})
			stmt.Executed = false
			stmt.Terminal = handle.Terminal{Kind: handle.TerminalError, Message: tok.ErrorMessage}
			return clicode.Error, fmt.Errorf("execdrv: %s", tok.ErrorMessage)

		case tds.TokenRow:
			// A row token before any metadata token would be a protocol
			// violation from the TDS client; ignore defensively.
		}
	}
}
