package cliabi

/*
#include "cliabi.h"
*/
import "C"

import (
	"github.com/mssql-cli/mssqlcli/internal/clicode"
)

// MssqlGetDiagRec reads one 1-based diagnostic record off the queue
// attached to handle (spec §4.2). Reading never removes the record.
//
//export MssqlGetDiagRec
func MssqlGetDiagRec(handleType C.SQLSMALLINT, h C.SQLHANDLE, recNumber C.SQLSMALLINT,
	sqlState *C.SQLCHAR, nativeError *C.SQLINTEGER,
	messageText *C.SQLCHAR, bufferLen C.SQLSMALLINT, textLenOut *C.SQLSMALLINT) C.SQLRETURN {

	obj, kind, ok := reg.lookup(handleToToken(h))
	if !ok || kind != clicode.HandleType(handleType) {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	queue, ok := diagQueueForObj(obj, kind)
	if !ok {
		return C.SQLRETURN(clicode.Error)
	}

	rec, ok := queue.Get(int(recNumber))
	if !ok {
		return C.SQLRETURN(clicode.NoData)
	}

	writeCString(sqlState, 6, nil, rec.SQLState)
	if nativeError != nil {
		*nativeError = C.SQLINTEGER(rec.Native)
	}
	writeCString(messageText, bufferLen, textLenOut, rec.Message)
	return C.SQLRETURN(clicode.Success)
}

// MssqlGetDiagField always returns NO_DATA: this design exposes only the
// fixed SQLSTATE/native/message triple via MssqlGetDiagRec, not the
// open-ended per-field diagnostic accessor (spec §6 entrypoint table).
//
//export MssqlGetDiagField
func MssqlGetDiagField(handleType C.SQLSMALLINT, h C.SQLHANDLE, recNumber C.SQLSMALLINT, diagID C.SQLSMALLINT,
	diagInfo C.SQLPOINTER, bufferLen C.SQLSMALLINT, strLenOut *C.SQLSMALLINT) C.SQLRETURN {
	return C.SQLRETURN(clicode.NoData)
}

// MssqlError is the 2.x-compat diagnostic accessor: it reads record 1 off
// whichever of hstmt/hdbc/henv is non-null, preferring the narrowest
// handle, matching legacy SQLError's "most specific handle" convention.
//
//export MssqlError
func MssqlError(envHandle, connHandle, stmtHandle C.SQLHANDLE,
	sqlState *C.SQLCHAR, nativeError *C.SQLINTEGER,
	messageText *C.SQLCHAR, bufferLen C.SQLSMALLINT, textLenOut *C.SQLSMALLINT) C.SQLRETURN {

	switch {
	case stmtHandle != nil:
		return MssqlGetDiagRec(C.SQLSMALLINT(clicode.HandleStmt), stmtHandle, 1, sqlState, nativeError, messageText, bufferLen, textLenOut)
	case connHandle != nil:
		return MssqlGetDiagRec(C.SQLSMALLINT(clicode.HandleConn), connHandle, 1, sqlState, nativeError, messageText, bufferLen, textLenOut)
	case envHandle != nil:
		return MssqlGetDiagRec(C.SQLSMALLINT(clicode.HandleEnv), envHandle, 1, sqlState, nativeError, messageText, bufferLen, textLenOut)
	default:
		return C.SQLRETURN(clicode.InvalidHandle)
	}
}
