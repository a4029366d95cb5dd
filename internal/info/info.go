// Package info implements the attribute and metadata surface of spec
// §4.10: SetEnvAttr, SetConnectAttr, GetInfo, ColAttribute, and the
// GetFunctions bitmap.
package info

import (
	"context"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/execdrv"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
)

// ConnectAttr identifies a SetConnectAttr/GetConnectAttr attribute code
// (spec §4.10).
type ConnectAttr int32

const (
	AttrAutocommit    ConnectAttr = 102
	AttrLoginTimeout  ConnectAttr = 103
	AttrConnTimeout   ConnectAttr = 113
)

// SetEnvAttr records the CLI version code on env (spec §4.10).
func SetEnvAttr(env *handle.Environment, version int16) {
	env.SetVersion(version)
}

// SetConnectAttr applies one connect attribute to conn. Toggling
// autocommit on while a transaction is open issues COMMIT synchronously
// and clears in_transaction, per spec §4.10. Login/connection timeout
// values are recorded but never enforced (spec §5).
func SetConnectAttr(ctx context.Context, conn *handle.Connection, attr ConnectAttr, value int32) (clicode.Return, error) {
	switch attr {
	case AttrAutocommit:
		autocommit := value != 0
		if autocommit && !conn.Autocommit && conn.InTransaction {
			stmt := handle.NewStatement(conn)
			defer stmt.Free()
			if _, err := execdrv.ExecDirect(ctx, stmt, "COMMIT"); err != nil {
				return clicode.Error, err
			}
			conn.InTransaction = false
		}
		conn.Autocommit = autocommit
	case AttrLoginTimeout:
		conn.LoginTimeoutSeconds = value
	case AttrConnTimeout:
		conn.ConnTimeoutSeconds = value
	}
	return clicode.Success, nil
}

// InfoID identifies a GetInfo metadata value (spec §4.10; a representative
// subset of the "40+ driver/DBMS metadata values" the spec describes,
// covering every category it names explicitly).
type InfoID int16

const (
	InfoDriverName          InfoID = 6
	InfoDriverVersion       InfoID = 7
	InfoDBMSName            InfoID = 17
	InfoDBMSVersion         InfoID = 18
	InfoIdentifierQuoteChar InfoID = 29
	InfoMaxColumnNameLen    InfoID = 30
	InfoMaxTableNameLen     InfoID = 35
	InfoMaxSchemaNameLen    InfoID = 32
	InfoMaxCatalogNameLen   InfoID = 34
	InfoTxnCapable          InfoID = 46
	InfoDefaultTxnIsolation InfoID = 26
	InfoSearchPatternEscape InfoID = 14
	InfoCatalogTerm         InfoID = 10
	InfoSchemaTerm          InfoID = 39
	InfoTableTerm           InfoID = 45
	InfoScrollConcurrency   InfoID = 43
)

// TxnCapable values (spec §4.10 "transaction capability = ALL").
const TxnCapableAll = 3

// DefaultTxnIsolationReadCommitted is the isolation-level bitmask for
// READ COMMITTED (spec §4.10 "default isolation = READ COMMITTED").
const DefaultTxnIsolationReadCommitted = 2

// driverName/driverVersion are the fixed identity strings this module
// reports through GetInfo.
const (
	driverName    = "mssqlcli"
	driverVersion = "01.00.0000"
)

// GetInfo resolves a single metadata value for id, as a string (narrow
// form); wide-form marshalling happens at the C-ABI boundary. Unknown ids
// return ok == false.
func GetInfo(id InfoID) (value string, numeric int32, ok bool) {
	switch id {
	case InfoDriverName:
		return driverName, 0, true
	case InfoDriverVersion:
		return driverVersion, 0, true
	case InfoDBMSName:
		return "Microsoft SQL Server", 0, true
	case InfoDBMSVersion:
		return "16.00.0000", 0, true
	case InfoIdentifierQuoteChar:
		return "\"", 0, true
	case InfoMaxColumnNameLen, InfoMaxTableNameLen, InfoMaxSchemaNameLen, InfoMaxCatalogNameLen:
		return "", 128, true
	case InfoTxnCapable:
		return "", TxnCapableAll, true
	case InfoDefaultTxnIsolation:
		return "", DefaultTxnIsolationReadCommitted, true
	case InfoSearchPatternEscape:
		return "\\", 0, true
	case InfoCatalogTerm:
		return "database", 0, true
	case InfoSchemaTerm:
		return "schema", 0, true
	case InfoTableTerm:
		return "table", 0, true
	case InfoScrollConcurrency:
		return "", 1, true
	default:
		return "", 0, false
	}
}

// ColAttribute exposes one per-column attribute computed from a
// ColumnDescriptor (spec §4.10).
type ColAttr int16

const (
	ColAttrName         ColAttr = 1
	ColAttrConciseType  ColAttr = 2
	ColAttrLength       ColAttr = 3
	ColAttrDisplaySize  ColAttr = 6
	ColAttrPrecision    ColAttr = 7
	ColAttrScale        ColAttr = 8
	ColAttrNullable     ColAttr = 9
	ColAttrTypeName     ColAttr = 10
)

// ColAttribute resolves one attribute of col. String-valued attributes
// are returned in strVal; numeric ones in numVal.
func ColAttribute(col sqltype.ColumnDescriptor, attr ColAttr) (strVal string, numVal int32, ok bool) {
	switch attr {
	case ColAttrName:
		return col.Name, 0, true
	case ColAttrConciseType:
		return "", int32(col.Type), true
	case ColAttrLength:
		return "", int32(col.Size), true
	case ColAttrDisplaySize:
		return "", displaySize(col), true
	case ColAttrPrecision:
		return "", int32(col.Size), true
	case ColAttrScale:
		return "", int32(col.Scale), true
	case ColAttrNullable:
		if col.Nullable {
			return "", 1, true
		}
		return "", 0, true
	case ColAttrTypeName:
		return typeName(col.Type), 0, true
	default:
		return "", 0, false
	}
}

func displaySize(col sqltype.ColumnDescriptor) int32 {
	switch col.Type {
	case sqltype.CLIDecimal:
		size := int32(col.Size) + 1 // sign
		if col.Scale > 0 {
			size++ // decimal point
		}
		return size
	case sqltype.CLITypeTimestamp, sqltype.CLITypeDate, sqltype.CLITypeTime:
		return int32(col.Size)
	default:
		return int32(col.Size)
	}
}

func typeName(t sqltype.CLIType) string {
	switch t {
	case sqltype.CLIInteger:
		return "int"
	case sqltype.CLISmallint:
		return "smallint"
	case sqltype.CLITinyint:
		return "tinyint"
	case sqltype.CLIBigint:
		return "bigint"
	case sqltype.CLIDouble:
		return "float"
	case sqltype.CLIReal:
		return "real"
	case sqltype.CLIBit:
		return "bit"
	case sqltype.CLIChar:
		return "char"
	case sqltype.CLIVarchar:
		return "varchar"
	case sqltype.CLILongvarchar:
		return "text"
	case sqltype.CLIWChar:
		return "nchar"
	case sqltype.CLIWVarchar:
		return "nvarchar"
	case sqltype.CLIWLongvarchar:
		return "ntext"
	case sqltype.CLIBinary:
		return "binary"
	case sqltype.CLIVarbinary:
		return "varbinary"
	case sqltype.CLILongvarbinary:
		return "image"
	case sqltype.CLIDecimal:
		return "decimal"
	case sqltype.CLITypeTimestamp:
		return "datetime"
	case sqltype.CLITypeDate:
		return "date"
	case sqltype.CLITypeTime:
		return "time"
	case sqltype.CLIGuid:
		return "uniqueidentifier"
	default:
		return "char"
	}
}

// functionsBitmapWords is the word count of the GetFunctions bulk bitmap
// (spec §6 "250-word bitmap").
const functionsBitmapWords = 250

// supportedFunctionIDs enumerates the API IDs this driver claims to
// support for the bulk pseudo-id 999 query (spec §6). It is a fixed list
// of the six IDs below; the other entrypoints this module exports have no
// bit set in the bulk bitmap.
var supportedFunctionIDs = []int{
	1,  // SQLFetch
	4,  // SQLGetData
	40, // SQLDescribeCol
	6,  // SQLRowCount
	8,  // SQLColAttribute
	41, // SQLBindParameter
}

// GetFunctionsBitmap fills a 250-word (16-bit) bitmap setting bits for
// every API ID in supportedFunctionIDs (spec §6 bulk query id 999).
func GetFunctionsBitmap() [functionsBitmapWords]uint16 {
	var bitmap [functionsBitmapWords]uint16
	for _, id := range supportedFunctionIDs {
		word := id / 16
		bit := uint(id % 16)
		if word < len(bitmap) {
			bitmap[word] |= 1 << bit
		}
	}
	return bitmap
}

// GetFunctionsSingle answers the non-bulk form of GetFunctions: every
// individual API ID is reported supported (spec §6 "individual queries
// return 1 (supported) for every ID").
func GetFunctionsSingle(functionID int16) bool {
	return true
}
