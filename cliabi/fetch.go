package cliabi

/*
#include "cliabi.h"
*/
import "C"

import (
	"context"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/fetch"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/info"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
)

// fetchOrientNext is the only scroll orientation this design supports
// (spec §4.5 "FETCH_NEXT only").
const fetchOrientNext C.SQLSMALLINT = 1

// MssqlFetch advances the row cursor, refilling the prefetch buffer as
// needed (spec §4.5).
//
//export MssqlFetch
func MssqlFetch(stmtHandle C.SQLHANDLE) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Conn.Diagnostics.Clear()
	ret, _ := fetch.Fetch(context.Background(), stmt)
	return C.SQLRETURN(ret)
}

// MssqlFetchScroll implements SQLFetchScroll for the single supported
// orientation; any other orientation is rejected rather than silently
// treated as FETCH_NEXT (spec §4.5).
//
//export MssqlFetchScroll
func MssqlFetchScroll(stmtHandle C.SQLHANDLE, orientation C.SQLSMALLINT, offset C.SQLLEN) C.SQLRETURN {
	if orientation != fetchOrientNext {
		return C.SQLRETURN(clicode.Error)
	}
	return MssqlFetch(stmtHandle)
}

// MssqlGetData implements the cell converter behind SQLGetData (spec
// §4.6), serving CHAR/WCHAR/BINARY targets in successive buffer-sized
// chunks.
//
//export MssqlGetData
func MssqlGetData(stmtHandle C.SQLHANDLE, col C.SQLUSMALLINT, targetType C.SQLSMALLINT,
	targetValue C.SQLPOINTER, bufferLen C.SQLLEN, strLenOrInd *C.SQLLEN) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	result, ret, _ := fetch.GetData(stmt, int(col), sqltype.CType(targetType), int(bufferLen))
	if ret == clicode.Success || ret == clicode.SuccessWithInfo {
		writeBytes(targetValue, int(bufferLen), result.Data)
	}
	if strLenOrInd != nil {
		*strLenOrInd = C.SQLLEN(result.Indicator)
	}
	return C.SQLRETURN(ret)
}

// MssqlDescribeCol reports one column's name, type, size, scale, and
// nullability (spec §4.10).
//
//export MssqlDescribeCol
func MssqlDescribeCol(stmtHandle C.SQLHANDLE, col C.SQLUSMALLINT,
	nameBuf *C.SQLCHAR, nameBufMax C.SQLSMALLINT, nameLenOut *C.SQLSMALLINT,
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

	writeCString(nameBuf, nameBufMax, nameLenOut, desc.Name)
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

// MssqlColAttribute exposes one attribute of one column's descriptor
// (spec §4.10), choosing a string or numeric output slot per attr.
//
//export MssqlColAttribute
func MssqlColAttribute(stmtHandle C.SQLHANDLE, col C.SQLUSMALLINT, fieldID C.SQLSMALLINT,
	charAttr *C.SQLCHAR, bufferLen C.SQLSMALLINT, strLenOut *C.SQLSMALLINT, numAttr *C.SQLLEN) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	idx := int(col) - 1
	if idx < 0 || idx >= len(stmt.Columns) {
		return C.SQLRETURN(clicode.Error)
	}

	strVal, numVal, ok := info.ColAttribute(stmt.Columns[idx], info.ColAttr(fieldID))
	if !ok {
		return C.SQLRETURN(clicode.Error)
	}
	if strVal != "" {
		writeCString(charAttr, bufferLen, strLenOut, strVal)
	}
	if numAttr != nil {
		*numAttr = C.SQLLEN(numVal)
	}
	return C.SQLRETURN(clicode.Success)
}
