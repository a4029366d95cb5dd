package fetch

import (
	"fmt"
	"math"

	"github.com/mssql-cli/mssqlcli/internal/cell"
	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
)

// chunkExhausted marks a column's ReadOffsets slot as fully drained; a
// further GetData call for that column before the next Fetch returns
// NO_DATA without touching the buffer (spec §4.6 "subsequent read after
// drain returns NO_DATA").
const chunkExhausted = -1

// GetDataResult is the outcome of one SQLGetData call (spec §4.6).
type GetDataResult struct {
	// Data holds the bytes copied into the caller's buffer this call.
	Data []byte
	// Indicator is the length/NULL indicator: the byte length still to
	// be delivered (first call: total length) for chunked targets, or
	// clicode.NullData for a NULL cell.
	Indicator int64
}

// GetData implements the cell converter behind SQLGetData (spec §4.6):
// resolves the default C type when requested, applies the matching
// conversion rule, and for CHAR/WCHAR/BINARY targets serves the value in
// successive buffer-sized chunks tracked by stmt.ReadOffsets.
// TYPE_TIMESTAMP, TYPE_DATE and TYPE_TIME targets (the default C types of
// date/time columns) are not converted to C date/time structs: like any
// other target without its own case, they receive the value's text
// through the chunked CHAR path.
func GetData(stmt *handle.Statement, col1Based int, target sqltype.CType, bufLen int) (GetDataResult, clicode.Return, error) {
	if stmt.RowCursor < 0 || stmt.RowCursor >= len(stmt.Rows) {
		return GetDataResult{}, clicode.Error, fmt.Errorf("fetch: no current row")
	}
	if col1Based < 1 || col1Based > len(stmt.Columns) {
		return GetDataResult{}, clicode.Error, fmt.Errorf("fetch: column number %d out of range", col1Based)
	}
	idx := col1Based - 1
	row := stmt.CurrentRow()
	v := row[idx]

	if v.IsNull() {
		return GetDataResult{Indicator: clicode.NullData}, clicode.Success, nil
	}

	if target == sqltype.CDefault {
		target = sqltype.DefaultCType(stmt.Columns[idx].Type)
	}

	switch target {
	case sqltype.CChar:
		return getChunked(stmt, idx, []byte(cell.ToText(v)), bufLen, 1)
	case sqltype.CWChar:
		return getChunked(stmt, idx, utf16LEBytes(cell.ToText(v)), bufLen, 2)
	case sqltype.CBinary:
		raw, err := cell.ToBytes(v)
		if err != nil {
			return GetDataResult{}, clicode.Error, err
		}
		return getChunked(stmt, idx, raw, bufLen, 0)
	case sqltype.CGuid:
		g, err := cell.ToGuid(v)
		if err != nil {
			return GetDataResult{}, clicode.Error, err
		}
		return GetDataResult{Data: g[:], Indicator: 16}, clicode.Success, nil
	case sqltype.CBit:
		return GetDataResult{Data: []byte{cell.ToBit(v)}, Indicator: 1}, clicode.Success, nil
	case sqltype.CSLong, sqltype.CShort:
		return fixedResult(int64Bytes(cell.ToInt64(v), target))
	case sqltype.CSBigint:
		return fixedResult(int64Bytes(cell.ToInt64(v), target))
	case sqltype.CUTinyint:
		return GetDataResult{Data: []byte{byte(cell.ToInt64(v))}, Indicator: 1}, clicode.Success, nil
	case sqltype.CDouble, sqltype.CFloat:
		return fixedResult(floatBytes(cell.ToFloat64(v), target))
	default:
		return getChunked(stmt, idx, []byte(cell.ToText(v)), bufLen, 1)
	}
}

func fixedResult(data []byte) (GetDataResult, clicode.Return, error) {
	return GetDataResult{Data: data, Indicator: int64(len(data))}, clicode.Success, nil
}

// getChunked serves encoded in successive bufLen-sized windows, tracking
// progress in stmt.ReadOffsets[idx] across calls (spec §4.6 "Chunked
// CHAR/WCHAR/BINARY retrieval").
//
// nulUnitSize is 1 for CHAR, 2 for WCHAR, and 0 for BINARY (no NUL
// terminator reserved or appended).
func getChunked(stmt *handle.Statement, idx int, encoded []byte, bufLen int, nulUnitSize int) (GetDataResult, clicode.Return, error) {
	if stmt.ReadOffsets == nil || len(stmt.ReadOffsets) != len(stmt.Columns) {
		stmt.ResetOffsets()
	}
	offset := stmt.ReadOffsets[idx]

	if offset == chunkExhausted {
		return GetDataResult{}, clicode.NoData, nil
	}

	total := len(encoded)
	remaining := total - offset

	avail := bufLen
	if nulUnitSize > 0 {
		avail -= nulUnitSize // reserve room for the NUL terminator
	}
	if avail < 0 {
		avail = 0
	}

	n := remaining
	if n > avail {
		n = avail
	}
	if n < 0 {
		n = 0
	}

	out := make([]byte, 0, n+nulUnitSize)
	out = append(out, encoded[offset:offset+n]...)
	if nulUnitSize > 0 {
		out = append(out, make([]byte, nulUnitSize)...) // NUL terminator
	}

	newOffset := offset + n
	indicator := int64(remaining)

	if newOffset >= total {
		stmt.ReadOffsets[idx] = chunkExhausted
		return GetDataResult{Data: out, Indicator: indicator}, clicode.Success, nil
	}

	stmt.ReadOffsets[idx] = newOffset
	return GetDataResult{Data: out, Indicator: indicator}, clicode.SuccessWithInfo, nil
}

func utf16LEBytes(s string) []byte {
	units := cell.StringToUtf16(s)
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[i*2] = byte(u)
		out[i*2+1] = byte(u >> 8)
	}
	return out
}

func int64Bytes(n int64, target sqltype.CType) []byte {
	switch target {
	case sqltype.CShort:
		v := int16(n)
		return []byte{byte(v), byte(v >> 8)}
	case sqltype.CSBigint:
		v := n
		out := make([]byte, 8)
		for i := 0; i < 8; i++ {
			out[i] = byte(v >> (8 * i))
		}
		return out
	default: // CSLong
		v := int32(n)
		return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	}
}

func floatBytes(f float64, target sqltype.CType) []byte {
	if target == sqltype.CFloat {
		bits := math.Float32bits(float32(f))
		return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
	}
	bits := math.Float64bits(f)
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(bits >> (8 * i))
	}
	return out
}
