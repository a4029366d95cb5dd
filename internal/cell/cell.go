// Package cell implements the CellValue tagged union (spec §3), the
// per-column textual rendering rules (spec §4.8), and the C-type cell
// converter used by SQLGetData (spec §4.6).
//
// The teacher repo represents wire values as a driver.Value-shaped
// interface{} (see cowsql-go-cowsql/internal/protocol rows decoding); here
// the spec calls for an explicit Rust-style tagged union, so CellValue is
// modeled as a Kind discriminant plus a struct of typed fields rather than
// an interface{}, matching the "union-typed cells" design note (spec §9).
package cell

import (
	"math/big"
)

// Kind discriminates the variant held by a CellValue.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindU8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindString
	KindUtf16
	KindBytes
	KindDate
	KindTime
	KindDateTime
	KindDateTimeOffset
	KindDecimal
	KindGuid
)

// Decimal is a fixed-point value: the decimal point sits Scale digits from
// the right of the unsigned magnitude of Value, with Value's sign carrying
// the overall sign (spec §4.8 decimal rendering algorithm).
type Decimal struct {
	Value     *big.Int
	Precision uint8
	Scale     uint8
}

// CellValue is the tagged union described in spec §3.
type CellValue struct {
	Kind Kind

	Bool bool
	U8   uint8
	I16  int16
	I32  int32
	I64  int64
	F32  float32
	F64  float64

	Str   string // KindString: UTF-8
	Utf16 []uint16
	Bytes []byte

	DateDays        int32 // KindDate: days since epoch
	TimeNanos       int64 // KindTime: nanoseconds since midnight
	DateTimeMicros  int64 // KindDateTime: microseconds since epoch
	OffsetMinutes   int16 // KindDateTimeOffset
	Decimal         Decimal
	Guid            [16]byte
}

// Null returns the NULL cell value.
func Null() CellValue { return CellValue{Kind: KindNull} }

// IsNull reports whether the cell is SQL NULL.
func (c CellValue) IsNull() bool { return c.Kind == KindNull }
