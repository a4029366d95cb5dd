package cliabi

/*
#include "cliabi.h"
*/
import "C"

import (
	"context"

	"github.com/mssql-cli/mssqlcli/internal/catalog"
	"github.com/mssql-cli/mssqlcli/internal/clicode"
)

// Every catalog entrypoint re-enters the execution driver with a
// synthesized sys.* query (spec §4.9); the statement's result set is then
// read the same way any other SELECT's would be, via MssqlFetch/
// MssqlGetData.

//export MssqlTables
func MssqlTables(stmtHandle C.SQLHANDLE,
	catalogName *C.SQLCHAR, catalogLen C.SQLSMALLINT,
	schemaName *C.SQLCHAR, schemaLen C.SQLSMALLINT,
	tableName *C.SQLCHAR, tableLen C.SQLSMALLINT,
	tableType *C.SQLCHAR, tableTypeLen C.SQLSMALLINT) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	ret, _ := catalog.Tables(context.Background(), stmt,
		goStringFromC(catalogName, C.SQLINTEGER(catalogLen)),
		goStringFromC(schemaName, C.SQLINTEGER(schemaLen)),
		goStringFromC(tableName, C.SQLINTEGER(tableLen)),
		goStringFromC(tableType, C.SQLINTEGER(tableTypeLen)))
	return C.SQLRETURN(ret)
}

//export MssqlColumns
func MssqlColumns(stmtHandle C.SQLHANDLE,
	catalogName *C.SQLCHAR, catalogLen C.SQLSMALLINT,
	schemaName *C.SQLCHAR, schemaLen C.SQLSMALLINT,
	tableName *C.SQLCHAR, tableLen C.SQLSMALLINT,
	columnName *C.SQLCHAR, columnLen C.SQLSMALLINT) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	ret, _ := catalog.Columns(context.Background(), stmt,
		goStringFromC(catalogName, C.SQLINTEGER(catalogLen)),
		goStringFromC(schemaName, C.SQLINTEGER(schemaLen)),
		goStringFromC(tableName, C.SQLINTEGER(tableLen)),
		goStringFromC(columnName, C.SQLINTEGER(columnLen)))
	return C.SQLRETURN(ret)
}

//export MssqlPrimaryKeys
func MssqlPrimaryKeys(stmtHandle C.SQLHANDLE,
	catalogName *C.SQLCHAR, catalogLen C.SQLSMALLINT,
	schemaName *C.SQLCHAR, schemaLen C.SQLSMALLINT,
	tableName *C.SQLCHAR, tableLen C.SQLSMALLINT) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	ret, _ := catalog.PrimaryKeys(context.Background(), stmt,
		goStringFromC(catalogName, C.SQLINTEGER(catalogLen)),
		goStringFromC(schemaName, C.SQLINTEGER(schemaLen)),
		goStringFromC(tableName, C.SQLINTEGER(tableLen)))
	return C.SQLRETURN(ret)
}

//export MssqlForeignKeys
func MssqlForeignKeys(stmtHandle C.SQLHANDLE,
	pkCatalogName *C.SQLCHAR, pkCatalogLen C.SQLSMALLINT,
	pkSchemaName *C.SQLCHAR, pkSchemaLen C.SQLSMALLINT,
	pkTableName *C.SQLCHAR, pkTableLen C.SQLSMALLINT,
	fkCatalogName *C.SQLCHAR, fkCatalogLen C.SQLSMALLINT,
	fkSchemaName *C.SQLCHAR, fkSchemaLen C.SQLSMALLINT,
	fkTableName *C.SQLCHAR, fkTableLen C.SQLSMALLINT) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	ret, _ := catalog.ForeignKeys(context.Background(), stmt,
		goStringFromC(pkCatalogName, C.SQLINTEGER(pkCatalogLen)),
		goStringFromC(pkSchemaName, C.SQLINTEGER(pkSchemaLen)),
		goStringFromC(pkTableName, C.SQLINTEGER(pkTableLen)),
		goStringFromC(fkCatalogName, C.SQLINTEGER(fkCatalogLen)),
		goStringFromC(fkSchemaName, C.SQLINTEGER(fkSchemaLen)),
		goStringFromC(fkTableName, C.SQLINTEGER(fkTableLen)))
	return C.SQLRETURN(ret)
}

//export MssqlStatistics
func MssqlStatistics(stmtHandle C.SQLHANDLE,
	catalogName *C.SQLCHAR, catalogLen C.SQLSMALLINT,
	schemaName *C.SQLCHAR, schemaLen C.SQLSMALLINT,
	tableName *C.SQLCHAR, tableLen C.SQLSMALLINT,
	unique C.SQLUSMALLINT, reserved C.SQLUSMALLINT) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	ret, _ := catalog.Statistics(context.Background(), stmt,
		goStringFromC(catalogName, C.SQLINTEGER(catalogLen)),
		goStringFromC(schemaName, C.SQLINTEGER(schemaLen)),
		goStringFromC(tableName, C.SQLINTEGER(tableLen)),
		unique == 0)
	return C.SQLRETURN(ret)
}

//export MssqlSpecialColumns
func MssqlSpecialColumns(stmtHandle C.SQLHANDLE,
	identifierType C.SQLSMALLINT,
	catalogName *C.SQLCHAR, catalogLen C.SQLSMALLINT,
	schemaName *C.SQLCHAR, schemaLen C.SQLSMALLINT,
	tableName *C.SQLCHAR, tableLen C.SQLSMALLINT,
	scope C.SQLSMALLINT, nullable C.SQLSMALLINT) C.SQLRETURN {

	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	ret, _ := catalog.SpecialColumns(context.Background(), stmt,
		goStringFromC(catalogName, C.SQLINTEGER(catalogLen)),
		goStringFromC(schemaName, C.SQLINTEGER(schemaLen)),
		goStringFromC(tableName, C.SQLINTEGER(tableLen)))
	return C.SQLRETURN(ret)
}

//export MssqlGetTypeInfo
func MssqlGetTypeInfo(stmtHandle C.SQLHANDLE, dataType C.SQLSMALLINT) C.SQLRETURN {
	stmt, ok := lookupStmt(handleToToken(stmtHandle))
	if !ok {
		return C.SQLRETURN(clicode.InvalidHandle)
	}
	stmt.Diagnostics.Clear()
	stmt.Conn.Diagnostics.Clear()
	ret, _ := catalog.GetTypeInfo(context.Background(), stmt, int16(dataType))
	return C.SQLRETURN(ret)
}
