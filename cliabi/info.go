package cliabi

/*
#include "cliabi.h"
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/info"
)

// allFunctions is the bulk "ask for every function at once" pseudo-id,
// answered with info.GetFunctionsBitmap's 250-word bitmap.
const allFunctions C.SQLUSMALLINT = 999

// MssqlSetEnvAttr records the CLI version code (spec §4.10).
//
//export MssqlSetEnvAttr
func MssqlSetEnvAttr(envHandle C.SQLHANDLE, attribute C.SQLINTEGER, value C.SQLINTEGER) C.SQLRETURN {
	env, ok := lookupEnv(handleToToken(envHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	info.SetEnvAttr(env, int16(value))
	return C.SQLRETURN(clicode.Success)
}

// MssqlSetConnectAttr applies autocommit/login-timeout/conn-timeout
// (spec §4.10).
//
//export MssqlSetConnectAttr
func MssqlSetConnectAttr(connHandle C.SQLHANDLE, attribute C.SQLINTEGER, value C.SQLINTEGER) C.SQLRETURN {
	conn, ok := lookupConn(handleToToken(connHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	ret, _ := info.SetConnectAttr(context.Background(), conn, info.ConnectAttr(attribute), int32(value))
	return C.SQLRETURN(ret)
}

// MssqlGetConnectAttr reads back a connect attribute set via
// MssqlSetConnectAttr.
//
//export MssqlGetConnectAttr
func MssqlGetConnectAttr(connHandle C.SQLHANDLE, attribute C.SQLINTEGER, value *C.SQLINTEGER) C.SQLRETURN {
	conn, ok := lookupConn(handleToToken(connHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	switch info.ConnectAttr(attribute) {
	case info.AttrAutocommit:
		if value != nil {
			if conn.Autocommit {
				*value = 1
			} else {
				*value = 0
			}
		}
	case info.AttrLoginTimeout:
		if value != nil {
			*value = C.SQLINTEGER(conn.LoginTimeoutSeconds)
		}
	case info.AttrConnTimeout:
		if value != nil {
			*value = C.SQLINTEGER(conn.ConnTimeoutSeconds)
		}
	default:
		return C.SQLRETURN(clicode.Error)
	}
	return C.SQLRETURN(clicode.Success)
}

// MssqlGetInfo returns one driver/DBMS metadata value, as either a string
// or a 32-bit integer depending on the requested id (spec §4.10).
//
//export MssqlGetInfo
func MssqlGetInfo(connHandle C.SQLHANDLE, infoType C.SQLUSMALLINT,
	infoValue C.SQLPOINTER, bufferLen C.SQLSMALLINT, strLenOut *C.SQLSMALLINT) C.SQLRETURN {

	if _, ok := lookupConn(handleToToken(connHandle)); !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	strVal, numVal, ok := info.GetInfo(info.InfoID(infoType))
	if !ok {
		return C.SQLRETURN(clicode.Error)
	}
	if strVal != "" {
		writeCString((*C.SQLCHAR)(infoValue), bufferLen, strLenOut, strVal)
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

// MssqlGetFunctions answers either the full support bitmap (functionID ==
// 999, SQL_API_ODBC3_ALL_FUNCTIONS) or a single function's support flag (spec
// §4.10, every individual id reports "supported").
//
//export MssqlGetFunctions
func MssqlGetFunctions(connHandle C.SQLHANDLE, functionID C.SQLUSMALLINT, supported *C.SQLUSMALLINT) C.SQLRETURN {
	if _, ok := lookupConn(handleToToken(connHandle)); !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	if functionID == allFunctions {
		bitmap := info.GetFunctionsBitmap()
		if supported != nil {
			dst := unsafe.Slice((*uint16)(unsafe.Pointer(supported)), len(bitmap))
			copy(dst, bitmap[:])
		}
		return C.SQLRETURN(clicode.Success)
	}

	if supported != nil {
		if info.GetFunctionsSingle(int16(functionID)) {
			*supported = 1
		} else {
			*supported = 0
		}
	}
	return C.SQLRETURN(clicode.Success)
}

// MssqlNativeSql returns sql unchanged: this design performs no
// vendor-escape-sequence rewriting ahead of execution, only the `?`
// parameter substitution SQLExecute already applies (spec §4.7).
//
//export MssqlNativeSql
func MssqlNativeSql(connHandle C.SQLHANDLE, inSQL *C.SQLCHAR, inSQLLen C.SQLINTEGER,
	outSQL *C.SQLCHAR, outMax C.SQLINTEGER, outLen *C.SQLINTEGER) C.SQLRETURN {

	if _, ok := lookupConn(handleToToken(connHandle)); !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	sql := goStringFromC(inSQL, inSQLLen)
	writeCStringLong(outSQL, outMax, outLen, sql)
	return C.SQLRETURN(clicode.Success)
}
