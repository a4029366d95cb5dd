package cliabi

/*
#include "cliabi.h"
*/
import "C"

import (
	"context"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/execdrv"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/params"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
)

// MssqlExecDirect drives sql as a single batch (spec §4.4).
//
//export MssqlExecDirect
func MssqlExecDirect(stmtHandle C.SQLHANDLE, sqlText *C.SQLCHAR, textLen C.SQLINTEGER) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	sql := goStringFromC(sqlText, textLen)
	ret, _ := execdrv.ExecDirect(context.Background(), stmt, sql)
	return C.SQLRETURN(ret)
}

// MssqlPrepare stores sql for a later MssqlExecute (spec §4.7).
//
//export MssqlPrepare
func MssqlPrepare(stmtHandle C.SQLHANDLE, sqlText *C.SQLCHAR, textLen C.SQLINTEGER) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.PreparedSQL = goStringFromC(sqlText, textLen)
	return C.SQLRETURN(clicode.Success)
}

// MssqlExecute rewrites the prepared SQL's `?` placeholders against the
// bound parameter store and drives the result as a single batch (spec
// §4.7), resetting the bindings afterward.
//
//export MssqlExecute
func MssqlExecute(stmtHandle C.SQLHANDLE) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()

	if stmt.PreparedSQL == "" {
		stmt.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateInvalidState, Message: "execute without prepare"})
		return C.SQLRETURN(clicode.Error)
	}

	sql, err := params.Rewrite(stmt.PreparedSQL, stmt.Params)
	if err != nil {
		stmt.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateGeneral, Message: err.Error()})
		return C.SQLRETURN(clicode.Error)
	}

	ret, _ := execdrv.ExecDirect(context.Background(), stmt, sql)
	stmt.Params.Reset()
	return C.SQLRETURN(ret)
}

// MssqlBindParameter stores a parameter binding (spec §3, §4.7). The
// source buffer is read lazily at MssqlExecute time, not here, because
// the application only guarantees it is stable across execution and row
// delivery, not across the whole binding lifetime.
//
//export MssqlBindParameter
func MssqlBindParameter(stmtHandle C.SQLHANDLE,
	position C.SQLUSMALLINT, ctype C.SQLSMALLINT, sqlType C.SQLSMALLINT,
	columnSize C.SQLULEN, decimalDigits C.SQLSMALLINT,
	buffer C.SQLPOINTER, bufferLen C.SQLLEN, lenInd *C.SQLLEN) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	cType := sqltype.CType(ctype)
	source := func() ([]byte, int64) {
		if lenInd != nil {
			li := int64(*lenInd)
			if li == clicode.NullData {
				return nil, clicode.NullData
			}
			if li >= 0 {
				return readFixedBytes(buffer, int(li)), li
			}
		}
		if cType == sqltype.CWChar {
			b := readNTSWide(buffer)
			return b, int64(len(b))
		}
		b := readNTSNarrow(buffer)
		return b, int64(len(b))
	}

	stmt.Params.Bind(&params.BoundParam{
		Position:      int(position),
		CType:         cType,
		SQLType:       sqltype.CLIType(sqlType),
		ColumnSize:    uint32(columnSize),
		DecimalDigits: int16(decimalDigits),
		Source:        source,
	})
	return C.SQLRETURN(clicode.Success)
}

// MssqlNumResultCols reports the current result set's column count
// (spec §4.4; 0 for a non-query batch).
//
//export MssqlNumResultCols
func MssqlNumResultCols(stmtHandle C.SQLHANDLE, out *C.SQLSMALLINT) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	if out != nil {
		*out = C.SQLSMALLINT(len(stmt.Columns))
	}
	return C.SQLRETURN(clicode.Success)
}

// MssqlNumParams reports the highest bound parameter position (spec
// §4.7).
//
//export MssqlNumParams
func MssqlNumParams(stmtHandle C.SQLHANDLE, out *C.SQLSMALLINT) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	if out != nil {
		*out = C.SQLSMALLINT(stmt.Params.Len())
	}
	return C.SQLRETURN(clicode.Success)
}

// MssqlRowCount reports the affected-row count of the last DML batch
// (spec §4.4; -1 for a streaming SELECT or when unknown).
//
//export MssqlRowCount
func MssqlRowCount(stmtHandle C.SQLHANDLE, out *C.SQLLEN) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	if out != nil {
		*out = C.SQLLEN(stmt.RowCount)
	}
	return C.SQLRETURN(clicode.Success)
}

// MssqlMoreResults always reports NO_DATA: this design's statement
// queues pending result sets (spec §3 PendingResultSet) but does not
// surface them through a second active result set (spec §9 design
// note, Open Question decision).
//
//export MssqlMoreResults
func MssqlMoreResults(stmtHandle C.SQLHANDLE) C.SQLRETURN {
	if _, ok := lookupStmt(handleToToken(stmtHandle)); !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	return C.SQLRETURN(clicode.NoData)
}

// MssqlEndTran commits or rolls back an open transaction (spec §4.4
// step 2, §8 example 6). completionType 0 = COMMIT, 1 = ROLLBACK.
//
//export MssqlEndTran
func MssqlEndTran(connHandle C.SQLHANDLE, completionType C.SQLSMALLINT) C.SQLRETURN {
	conn, ok := lookupConn(handleToToken(connHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	sql := "COMMIT"
	if completionType == 1 {
		sql = "ROLLBACK"
	}

	stmt := handle.NewStatement(conn)
	defer stmt.Free()
	ret, err := execdrv.ExecDirect(context.Background(), stmt, sql)
	if err == nil {
		conn.InTransaction = false
	}
	return C.SQLRETURN(ret)
}

// MssqlCloseCursor is the SQL_CLOSE SQLFreeStmt option under its own
// standalone entrypoint name (spec §4.1, §6).
//
//export MssqlCloseCursor
func MssqlCloseCursor(stmtHandle C.SQLHANDLE) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.ResetForClose()
	return C.SQLRETURN(clicode.Success)
}

// MssqlCancel is a no-op: this design has no asynchronous execution mode
// to interrupt (spec §5 "cancel is a no-op").
//
//export MssqlCancel
func MssqlCancel(anyHandle C.SQLHANDLE) C.SQLRETURN {
	if _, _, ok := reg.lookup(handleToToken(anyHandle)); !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	return C.SQLRETURN(clicode.Success)
}
