// Package sqltype holds the CLI type codes, application C-type codes, and
// the SQL Server → CLI type mapping table described in spec §4.4. It is a
// small, dependency-free leaf package consumed by the execution driver,
// the cell converter, the parameter binder, and the catalog synthesizer.
package sqltype

// CLIType is the CLI column/parameter type code (a 16-bit signed enum on
// the wire, spec §3 ColumnDescriptor).
type CLIType int16

// CLI type codes. Values follow the standard CLI numbering so that a
// driver-manager expecting the canonical constants receives familiar
// numbers; they are not meaningful beyond identity/ordering within this
// module.
const (
	CLIUnknown         CLIType = 0
	CLIChar            CLIType = 1
	CLINumeric         CLIType = 2
	CLIDecimal         CLIType = 3
	CLIInteger         CLIType = 4
	CLISmallint        CLIType = 5
	CLIFloat           CLIType = 6
	CLIReal            CLIType = 7
	CLIDouble          CLIType = 8
	CLIVarchar         CLIType = 12
	CLITypeDate        CLIType = 91
	CLITypeTime        CLIType = 92
	CLITypeTimestamp   CLIType = 93
	CLILongvarchar     CLIType = -1
	CLIBinary          CLIType = -2
	CLIVarbinary       CLIType = -3
	CLILongvarbinary   CLIType = -4
	CLIBigint          CLIType = -5
	CLITinyint         CLIType = -6
	CLIBit             CLIType = -7
	CLIWChar           CLIType = -8
	CLIWVarchar        CLIType = -9
	CLIWLongvarchar    CLIType = -10
	CLIGuid            CLIType = -11
)

// CType is the application-buffer C type code passed to
// SQLBindParameter/SQLGetData (spec §4.6, §4.7).
type CType int16

const (
	CDefault CType = 99
	CChar    CType = 1
	CWChar   CType = -8
	CSLong   CType = 4
	CLong    CType = 4
	CShort   CType = 5
	CSBigint CType = -25
	CUTinyint CType = -28
	CDouble  CType = 8
	CFloat   CType = 7
	CBit     CType = -7
	CBinary  CType = -2
	CGuid    CType = -11
	CTypeDate      CType = 91
	CTypeTime      CType = 92
	CTypeTimestamp CType = 93
)

// ColumnType describes the CLI-level shape of a server column: its type
// code, column size (characters for text, bytes for binary), and decimal
// digits (spec §4.4 SQL→CLI type mapping table).
type ColumnType struct {
	Type  CLIType
	Size  uint32
	Scale int16
}

// ColumnDescriptor is the full per-column metadata surfaced by result-set
// shape discovery and consumed by SQLDescribeCol/SQLColAttribute (spec §3
// ColumnDescriptor: "Name (UTF-8), CLI type code ..., column size ...,
// decimal digits, nullable flag").
type ColumnDescriptor struct {
	Name     string
	Type     CLIType
	Size     uint32
	Scale    int16
	Nullable bool
}

// maxVarlenSentinels are the server's "MAX" varlen markers; a column
// declared with one of these maps to size 0 per spec §4.4.
const (
	varlenSentinel32 = 0xFFFFFFFE
	varlenSentinel64 = 0xFFFFFFFF
)

// FromServerType maps a SQL Server column type name plus its declared
// length/precision/scale to a CLI ColumnType, per the table in spec §4.4.
func FromServerType(serverType string, declaredLen int64, precision, scale uint8) ColumnType {
	size := func(n int64) uint32 {
		if n == varlenSentinel32 || n == varlenSentinel64 || n < 0 {
			return 0
		}
		return uint32(n)
	}

	switch serverType {
	case "int":
		return ColumnType{CLIInteger, 10, 0}
	case "smallint":
		return ColumnType{CLISmallint, 5, 0}
	case "tinyint":
		return ColumnType{CLITinyint, 3, 0}
	case "bigint":
		return ColumnType{CLIBigint, 19, 0}
	case "float", "floatn8":
		return ColumnType{CLIDouble, 53, 0}
	case "real", "floatn4":
		return ColumnType{CLIReal, 24, 0}
	case "bit":
		return ColumnType{CLIBit, 1, 0}
	case "varchar", "char", "text":
		t := CLIChar
		if serverType == "varchar" {
			t = CLIVarchar
		} else if serverType == "text" {
			t = CLILongvarchar
		}
		return ColumnType{t, size(declaredLen), 0}
	case "nvarchar", "nchar", "ntext":
		t := CLIWChar
		switch serverType {
		case "nvarchar":
			t = CLIWVarchar
		case "ntext":
			t = CLIWLongvarchar
		}
		n := size(declaredLen)
		if n > 0 {
			n /= 2
		}
		return ColumnType{t, n, 0}
	case "binary", "varbinary", "image":
		t := CLIBinary
		switch serverType {
		case "varbinary":
			t = CLIVarbinary
		case "image":
			t = CLILongvarbinary
		}
		return ColumnType{t, size(declaredLen), 0}
	case "decimal", "numeric", "money":
		return ColumnType{CLIDecimal, uint32(precision), int16(scale)}
	case "datetime", "datetime2":
		return ColumnType{CLITypeTimestamp, 23, 0}
	case "date":
		return ColumnType{CLITypeDate, 10, 0}
	case "time":
		return ColumnType{CLITypeTime, 16, 0}
	case "uniqueidentifier":
		return ColumnType{CLIGuid, 36, 0}
	default:
		return ColumnType{CLIChar, size(declaredLen), 0}
	}
}

// DefaultCType maps a column's CLI type to its "natural" application C
// type, used when SQLGetData is called with CDefault (spec §4.6 step 3).
func DefaultCType(t CLIType) CType {
	switch t {
	case CLIInteger, CLISmallint, CLITinyint:
		return CSLong
	case CLIBigint:
		return CSBigint
	case CLIDouble, CLIFloat:
		return CDouble
	case CLIReal:
		return CFloat
	case CLIBit:
		return CBit
	case CLITypeTimestamp:
		return CTypeTimestamp
	case CLITypeDate:
		return CTypeDate
	case CLITypeTime:
		return CTypeTime
	case CLIBinary, CLIVarbinary, CLILongvarbinary:
		return CBinary
	case CLIGuid:
		return CGuid
	default:
		return CChar
	}
}
