package cliabi

/*
#include "cliabi.h"
*/
import "C"

import (
	"unsafe"

	"github.com/mssql-cli/mssqlcli/internal/cell"
	"github.com/mssql-cli/mssqlcli/internal/clicode"
)

// tokenToHandle/handleToToken convert between a registry token and the
// opaque SQLHANDLE the C side holds. The token is never a real Go
// pointer — it is an arbitrary integer smuggled through a pointer-shaped
// C type, per spec §9's int-keyed arena design note — so storing or
// round-tripping it across the cgo boundary carries none of the usual
// Go-pointer-into-C-memory hazards.
func tokenToHandle(token uintptr) C.SQLHANDLE {
	return C.SQLHANDLE(unsafe.Pointer(token)) //nolint:govet
}

func handleToToken(h C.SQLHANDLE) uintptr {
	return uintptr(unsafe.Pointer(h))
}

// goStringFromC reads a narrow (UTF-8/Latin-ish) C string. length ==
// clicode.NTS means NUL-terminated; otherwise it is an exact byte count.
func goStringFromC(s *C.SQLCHAR, length C.SQLINTEGER) string {
	if s == nil {
		return ""
	}
	if int64(length) == clicode.NTS {
		return C.GoString((*C.char)(unsafe.Pointer(s)))
	}
	if length <= 0 {
		return ""
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(s)), int(length))
	return string(b)
}

// goStringFromWide reads a wide (UTF-16LE) C string. length == SQL_NTS
// scans for a zero code unit; otherwise it is an exact unit count.
func goStringFromWide(s *C.SQLWCHAR, length C.SQLSMALLINT) string {
	if s == nil {
		return ""
	}
	if int64(length) == clicode.NTS {
		n := 0
		for {
			u := *(*uint16)(unsafe.Pointer(uintptr(unsafe.Pointer(s)) + uintptr(n)*2))
			if u == 0 {
				break
			}
			n++
		}
		units := unsafe.Slice((*uint16)(unsafe.Pointer(s)), n)
		return cell.Utf16ToString(units)
	}
	if length <= 0 {
		return ""
	}
	units := unsafe.Slice((*uint16)(unsafe.Pointer(s)), int(length))
	return cell.Utf16ToString(units)
}

// writeCString copies value into buf (capacity bufLen, NUL-terminated
// when room allows) and reports the untruncated length in outLen — the
// same "always report the full length, copy only what fits" contract
// SQLDescribeCol/SQLGetInfo/SQLGetDiagRec use throughout spec §4.10.
func writeCString(buf *C.SQLCHAR, bufLen C.SQLSMALLINT, outLen *C.SQLSMALLINT, value string) {
	if outLen != nil {
		*outLen = C.SQLSMALLINT(len(value))
	}
	if buf == nil || bufLen <= 0 {
		return
	}
	n := int(bufLen) - 1
	if n < 0 {
		n = 0
	}
	if n > len(value) {
		n = len(value)
	}
	if n > 0 {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), n)
		copy(dst, value[:n])
	}
	*(*byte)(unsafe.Pointer(uintptr(unsafe.Pointer(buf)) + uintptr(n))) = 0
}

// writeWideString is writeCString's UTF-16LE counterpart.
func writeWideString(buf *C.SQLWCHAR, bufLen C.SQLSMALLINT, outLen *C.SQLSMALLINT, value string) {
	units := cell.StringToUtf16(value)
	if outLen != nil {
		*outLen = C.SQLSMALLINT(len(units))
	}
	if buf == nil || bufLen <= 0 {
		return
	}
	n := int(bufLen) - 1
	if n < 0 {
		n = 0
	}
	if n > len(units) {
		n = len(units)
	}
	if n > 0 {
		dst := unsafe.Slice((*uint16)(unsafe.Pointer(buf)), n)
		copy(dst, units[:n])
	}
	*(*uint16)(unsafe.Pointer(uintptr(unsafe.Pointer(buf)) + uintptr(n)*2)) = 0
}

// writeCStringLong is writeCString's SQLINTEGER-length-field counterpart,
// the shape SQLNativeSql uses in place of the SQLSMALLINT lengths every
// other narrow string accessor takes.
func writeCStringLong(buf *C.SQLCHAR, bufLen C.SQLINTEGER, outLen *C.SQLINTEGER, value string) {
	if outLen != nil {
		*outLen = C.SQLINTEGER(len(value))
	}
	if buf == nil || bufLen <= 0 {
		return
	}
	n := int(bufLen) - 1
	if n < 0 {
		n = 0
	}
	if n > len(value) {
		n = len(value)
	}
	if n > 0 {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), n)
		copy(dst, value[:n])
	}
	*(*byte)(unsafe.Pointer(uintptr(unsafe.Pointer(buf)) + uintptr(n))) = 0
}

// writeBytes copies data (truncated to bufLen) into an untyped output
// buffer, the shape SQLGetData's binary/char targets need.
func writeBytes(buf C.SQLPOINTER, bufLen int, data []byte) int {
	if buf == nil || bufLen <= 0 || len(data) == 0 {
		return 0
	}
	n := len(data)
	if n > bufLen {
		n = bufLen
	}
	dst := unsafe.Slice((*byte)(buf), n)
	copy(dst, data[:n])
	return n
}

// readFixedBytes copies n bytes out of a caller-owned C buffer into Go
// memory, for BindParameter sources with a known explicit length.
func readFixedBytes(buf C.SQLPOINTER, n int) []byte {
	if buf == nil || n <= 0 {
		return nil
	}
	src := unsafe.Slice((*byte)(buf), n)
	out := make([]byte, n)
	copy(out, src)
	return out
}

// readNTSNarrow/readNTSWide copy a NUL-terminated buffer of unknown
// length out of caller-owned memory, used when BindParameter's indicator
// is SQL_NTS rather than an explicit byte count.
func readNTSNarrow(buf C.SQLPOINTER) []byte {
	if buf == nil {
		return nil
	}
	n := 0
	for {
		b := *(*byte)(unsafe.Pointer(uintptr(buf) + uintptr(n)))
		if b == 0 {
			break
		}
		n++
	}
	return readFixedBytes(buf, n)
}

func readNTSWide(buf C.SQLPOINTER) []byte {
	if buf == nil {
		return nil
	}
	n := 0
	for {
		u := *(*uint16)(unsafe.Pointer(uintptr(buf) + uintptr(n)*2))
		if u == 0 {
			break
		}
		n++
	}
	return readFixedBytes(buf, n*2)
}
