package cliabi

/*
#include "cliabi.h"
*/
import "C"

import (
	"context"

	"github.com/mssql-cli/mssqlcli/internal/catalog"
	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/execdrv"
	"github.com/mssql-cli/mssqlcli/internal/info"
)

// The wide ("W"-suffixed) forms below marshal UTF-16LE buffers instead of
// UTF-8/Latin-ish ones (spec §6 "both narrow and wide forms"), then defer
// to the same internal packages the narrow forms use. Entrypoints with no
// string-bearing argument (NumResultCols, RowCount, Cancel, EndTran,
// CloseCursor, and the rest of exec.go/handles.go) have exactly one
// exported symbol apiece, the same as real ODBC drivers: the A/W split
// only exists where character-set marshalling is actually involved.

//export MssqlDriverConnectW
func MssqlDriverConnectW(connHandle C.SQLHANDLE,
	inConnStr *C.SQLWCHAR, inConnStrLen C.SQLSMALLINT,
	outConnStr *C.SQLWCHAR, outConnStrMax C.SQLSMALLINT, outConnStrLen *C.SQLSMALLINT) C.SQLRETURN {

	conn, ok := lookupConn(handleToToken(connHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	connStr := goStringFromWide(inConnStr, inConnStrLen)
	ret := connect(conn, connStr, "", "")
	writeWideString(outConnStr, outConnStrMax, outConnStrLen, connStr)
	return C.SQLRETURN(ret)
}

//export MssqlExecDirectW
func MssqlExecDirectW(stmtHandle C.SQLHANDLE, sqlText *C.SQLWCHAR, textLen C.SQLINTEGER) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	sql := goStringFromWide(sqlText, C.SQLSMALLINT(textLen))
	ret, _ := execdrv.ExecDirect(context.Background(), stmt, sql)
	return C.SQLRETURN(ret)
}

//export MssqlPrepareW
func MssqlPrepareW(stmtHandle C.SQLHANDLE, sqlText *C.SQLWCHAR, textLen C.SQLINTEGER) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.PreparedSQL = goStringFromWide(sqlText, C.SQLSMALLINT(textLen))
	return C.SQLRETURN(clicode.Success)
}

//export MssqlDescribeColW
func MssqlDescribeColW(stmtHandle C.SQLHANDLE, col C.SQLUSMALLINT,
	nameBuf *C.SQLWCHAR, nameBufMax C.SQLSMALLINT, nameLenOut *C.SQLSMALLINT,
	dataType *C.SQLSMALLINT, columnSize *C.SQLULEN, decimalDigits *C.SQLSMALLINT, nullable *C.SQLSMALLINT) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	idx := int(col) - 1
	if idx < 0 || idx >= len(stmt.Columns) {
		return C.SQLRETURN(clicode.Error)
	}
	desc := stmt.Columns[idx]

	writeWideString(nameBuf, nameBufMax, nameLenOut, desc.Name)
	if dataType != nil {
		*dataType = C.SQLSMALLINT(desc.Type)
	}
	if columnSize != nil {
		*columnSize = C.SQLULEN(desc.Size)
	}
	if decimalDigits != nil {
		*decimalDigits = C.SQLSMALLINT(desc.Scale)
	}
	if nullable != nil {
		if desc.Nullable {
			*nullable = 1
		} else {
			*nullable = 0
		}
	}
	return C.SQLRETURN(clicode.Success)
}

//export MssqlGetDiagRecW
func MssqlGetDiagRecW(handleType C.SQLSMALLINT, h C.SQLHANDLE, recNumber C.SQLSMALLINT,
	sqlState *C.SQLWCHAR, nativeError *C.SQLINTEGER,
	messageText *C.SQLWCHAR, bufferLen C.SQLSMALLINT, textLenOut *C.SQLSMALLINT) C.SQLRETURN {

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

	writeWideString(sqlState, 6, nil, rec.SQLState)
	if nativeError != nil {
		*nativeError = C.SQLINTEGER(rec.Native)
	}
	writeWideString(messageText, bufferLen, textLenOut, rec.Message)
	return C.SQLRETURN(clicode.Success)
}

//export MssqlGetInfoW
func MssqlGetInfoW(connHandle C.SQLHANDLE, infoType C.SQLUSMALLINT,
	infoValue C.SQLPOINTER, bufferLen C.SQLSMALLINT, strLenOut *C.SQLSMALLINT) C.SQLRETURN {

	if _, ok := lookupConn(handleToToken(connHandle)); !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	strVal, numVal, ok := info.GetInfo(info.InfoID(infoType))
	if !ok {
		return C.SQLRETURN(clicode.Error)
	}
	if strVal != "" {
		writeWideString((*C.SQLWCHAR)(infoValue), bufferLen/2, strLenOut, strVal)
		if strLenOut != nil {
			*strLenOut *= 2 // SQLGetInfoW reports the string length in bytes, not code units
		}
		return C.SQLRETURN(clicode.Success)
	}
	if infoValue != nil && bufferLen >= 4 {
		*(*uint32)(infoValue) = uint32(numVal)
	}
	if strLenOut != nil {
		*strLenOut = 4
	}
	return C.SQLRETURN(clicode.Success)
}

//export MssqlNativeSqlW
func MssqlNativeSqlW(connHandle C.SQLHANDLE, inSQL *C.SQLWCHAR, inSQLLen C.SQLINTEGER,
	outSQL *C.SQLWCHAR, outMax C.SQLINTEGER, outLen *C.SQLINTEGER) C.SQLRETURN {

	if _, ok := lookupConn(handleToToken(connHandle)); !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	sql := goStringFromWide(inSQL, C.SQLSMALLINT(inSQLLen))
	writeWideString(outSQL, C.SQLSMALLINT(outMax), (*C.SQLSMALLINT)(nil), sql)
	if outLen != nil {
		*outLen = C.SQLINTEGER(len(sql))
	}
	return C.SQLRETURN(clicode.Success)
}

//export MssqlTablesW
func MssqlTablesW(stmtHandle C.SQLHANDLE,
	catalogName *C.SQLWCHAR, catalogLen C.SQLSMALLINT,
	schemaName *C.SQLWCHAR, schemaLen C.SQLSMALLINT,
	tableName *C.SQLWCHAR, tableLen C.SQLSMALLINT,
	tableType *C.SQLWCHAR, tableTypeLen C.SQLSMALLINT) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	ret, _ := catalog.Tables(context.Background(), stmt,
		goStringFromWide(catalogName, catalogLen),
		goStringFromWide(schemaName, schemaLen),
		goStringFromWide(tableName, tableLen),
		goStringFromWide(tableType, tableTypeLen))
	return C.SQLRETURN(ret)
}

//export MssqlColumnsW
func MssqlColumnsW(stmtHandle C.SQLHANDLE,
	catalogName *C.SQLWCHAR, catalogLen C.SQLSMALLINT,
	schemaName *C.SQLWCHAR, schemaLen C.SQLSMALLINT,
	tableName *C.SQLWCHAR, tableLen C.SQLSMALLINT,
	columnName *C.SQLWCHAR, columnLen C.SQLSMALLINT) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	ret, _ := catalog.Columns(context.Background(), stmt,
		goStringFromWide(catalogName, catalogLen),
		goStringFromWide(schemaName, schemaLen),
		goStringFromWide(tableName, tableLen),
		goStringFromWide(columnName, columnLen))
	return C.SQLRETURN(ret)
}
