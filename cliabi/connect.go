package cliabi

/*
#include "cliabi.h"
*/
import "C"

import (
	"context"
	"fmt"
	"strings"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/transport"
)

// DialFunc wraps a dialed socket into a tds.Client. The TDS wire codec is
// an external collaborator (spec §1a): this package drives it through
// internal/transport but does not implement the protocol. A production
// build sets DialFunc to a real implementation before any Connect call;
// left nil, Connect fails cleanly with a "08001" diagnostic instead of
// silently talking a protocol nobody wrote — the same pattern
// cmd/mssqlcli-shell and cmd/mssqlcli-bench use for their newClient hook.
var DialFunc transport.ClientFactory

func connect(conn *handle.Connection, dsnOrConnStr, user, pass string) clicode.Return {
	conn.Diagnostics.Clear()

	var params transport.Params
	var err error

	if strings.Contains(dsnOrConnStr, "=") {
		params, err = transport.ParseConnectionString(dsnOrConnStr)
	} else {
		params, err = transport.ResolveDSN(dsnOrConnStr, user, pass)
	}
	if err != nil {
		conn.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateTransportLogin, Message: err.Error()})
		return clicode.Error
	}
	if user != "" {
		params.Username = user
	}
	if pass != "" {
		params.Password = pass
	}

	if DialFunc == nil {
		conn.Diagnostics.Push(handle.DiagRecord{SQLState: handle.StateTransportLogin, Message: "no TDS client factory configured"})
		return clicode.Error
	}

	client, err := transport.Connect(context.Background(), params, DialFunc, transport.DialOptions{})
	if err != nil {
		transport.PushLoginFailure(conn, err)
		return clicode.Error
	}

	conn.Client = client
	conn.Connected = true
	conn.Server = fmt.Sprintf("%s:%d", params.Host, params.Port)
	conn.Database = params.Database
	conn.Username = params.Username
	conn.Encrypt = params.Encrypt
	return clicode.Success
}

// MssqlConnect establishes a connection from discrete server/user/auth
// arguments (spec §4.3).
//
//export MssqlConnect
func MssqlConnect(connHandle C.SQLHANDLE,
	serverName *C.SQLCHAR, serverNameLen C.SQLSMALLINT,
	userName *C.SQLCHAR, userNameLen C.SQLSMALLINT,
	authStr *C.SQLCHAR, authStrLen C.SQLSMALLINT) C.SQLRETURN {

	conn, ok := lookupConn(handleToToken(connHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	server := goStringFromC(serverName, C.SQLINTEGER(serverNameLen))
	user := goStringFromC(userName, C.SQLINTEGER(userNameLen))
	pass := goStringFromC(authStr, C.SQLINTEGER(authStrLen))

	return C.SQLRETURN(connect(conn, server, user, pass))
}

// MssqlDriverConnect establishes a connection from a single semicolon-
// delimited connection string, echoing it back as the "completed"
// connection string (spec §4.3; no prompting UI in this design).
//
//export MssqlDriverConnect
func MssqlDriverConnect(connHandle C.SQLHANDLE,
	inConnStr *C.SQLCHAR, inConnStrLen C.SQLSMALLINT,
	outConnStr *C.SQLCHAR, outConnStrMax C.SQLSMALLINT, outConnStrLen *C.SQLSMALLINT) C.SQLRETURN {

	conn, ok := lookupConn(handleToToken(connHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}

	connStr := goStringFromC(inConnStr, C.SQLINTEGER(inConnStrLen))
	ret := connect(conn, connStr, "", "")
	writeCString(outConnStr, outConnStrMax, outConnStrLen, connStr)
	return C.SQLRETURN(ret)
}

// MssqlDisconnect closes the connection's client but leaves the handle
// itself allocated for reuse (spec §4.1).
//
//export MssqlDisconnect
func MssqlDisconnect(connHandle C.SQLHANDLE) C.SQLRETURN {
	conn, ok := lookupConn(handleToToken(connHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	conn.Disconnect()
	return C.SQLRETURN(clicode.Success)
}
