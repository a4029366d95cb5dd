package cliabi

/*
#include "cliabi.h"
*/
import "C"

import (
	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/handle"
)

// MssqlAllocHandle allocates an Environment, Connection, or Statement
// handle depending on handleType (spec §4.1, §6).
//
//export MssqlAllocHandle
func MssqlAllocHandle(handleType C.SQLSMALLINT, inputHandle C.SQLHANDLE, outputHandle *C.SQLHANDLE) C.SQLRETURN {
	if outputHandle == nil {
		return C.SQLRETURN(clicode.Error)
	}

	switch clicode.HandleType(handleType) {
	case clicode.HandleEnv:
		env := handle.NewEnvironment()
		*outputHandle = tokenToHandle(reg.register(clicode.HandleEnv, env))
		return C.SQLRETURN(clicode.Success)

	case clicode.HandleConn:
		env, ok := lookupEnv(handleToToken(inputHandle))
		if !ok {
			return C.SQLRETURN(clicode.InvalidHandle)
		}
		conn := handle.NewConnection(env)
		*outputHandle = tokenToHandle(reg.register(clicode.HandleConn, conn))
		return C.SQLRETURN(clicode.Success)

	case clicode.HandleStmt:
		conn, ok := lookupConn(handleToToken(inputHandle))
		if !ok {
			return C.SQLRETURN(clicode.InvalidHandle)
		}
		stmt := handle.NewStatement(conn)
		*outputHandle = tokenToHandle(reg.register(clicode.HandleStmt, stmt))
		return C.SQLRETURN(clicode.Success)

	default:
		return C.SQLRETURN(clicode.Error)
	}
}

// MssqlFreeHandle frees an Environment, Connection, or Statement handle,
// cascading through any owned children (spec §4.1).
//
//export MssqlFreeHandle
func MssqlFreeHandle(handleType C.SQLSMALLINT, h C.SQLHANDLE) C.SQLRETURN {
	token := handleToToken(h)
	obj, kind, ok := reg.lookup(token)
	if !ok || kind != clicode.HandleType(handleType) {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	switch kind {
	case clicode.HandleEnv:
		env := obj.(*handle.Environment)
		for _, conn := range env.Connections() {
			freeStmtTokens(conn)
			if t, ok := reg.tokenFor(conn); ok {
				reg.free(t)
			}
		}
		env.Free()
	case clicode.HandleConn:
		freeStmtTokens(obj.(*handle.Connection))
		obj.(*handle.Connection).Free()
	case clicode.HandleStmt:
		obj.(*handle.Statement).Free()
	}
	reg.free(token)
	return C.SQLRETURN(clicode.Success)
}

// freeStmtTokens drops the registry entries for every statement conn
// still owns, so a cascading MssqlFreeHandle on an ancestor leaves no
// stale child tokens behind (spec §8 "free without freeing children leaks
// nothing" — the registry is the resource tracker). Snapshot the
// statement list before the caller cascades the handle objects
// themselves, since Free()/closeCascade() do not mutate the registry.
func freeStmtTokens(conn *handle.Connection) {
	for _, stmt := range conn.Statements() {
		if t, ok := reg.tokenFor(stmt); ok {
			reg.free(t)
		}
	}
}

// MssqlFreeStmt implements the four SQLFreeStmt options (spec §4.1):
// SQL_CLOSE, SQL_UNBIND, SQL_RESET_PARAMS, SQL_DROP.
//
//export MssqlFreeStmt
func MssqlFreeStmt(stmtHandle C.SQLHANDLE, option C.SQLSMALLINT) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	switch clicode.FreeStmtOption(option) {
	case clicode.FreeClose:
		stmt.ResetForClose()
	case clicode.FreeUnbindColumns:
		stmt.UnbindColumns()
	case clicode.FreeResetParams:
		stmt.ResetParams()
	case clicode.FreeDrop:
		token := handleToToken(stmtHandle)
		stmt.Free()
		reg.free(token)
	default:
		return C.SQLRETURN(clicode.Error)
	}
	return C.SQLRETURN(clicode.Success)
}

// The 2.x-compat allocators are thin wrappers over MssqlAllocHandle,
// matching the equivalent ODBC legacy symbols (spec §6).

//export MssqlAllocEnv
func MssqlAllocEnv(out *C.SQLHANDLE) C.SQLRETURN {
	return MssqlAllocHandle(C.SQLSMALLINT(clicode.HandleEnv), nil, out)
}

//export MssqlAllocConnect
func MssqlAllocConnect(envHandle C.SQLHANDLE, out *C.SQLHANDLE) C.SQLRETURN {
	return MssqlAllocHandle(C.SQLSMALLINT(clicode.HandleConn), envHandle, out)
}

//export MssqlAllocStmt
func MssqlAllocStmt(connHandle C.SQLHANDLE, out *C.SQLHANDLE) C.SQLRETURN {
	return MssqlAllocHandle(C.SQLSMALLINT(clicode.HandleStmt), connHandle, out)
}
