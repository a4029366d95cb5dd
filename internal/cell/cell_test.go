package cell_test

import (
	"math/big"
	"testing"

	"github.com/mssql-cli/mssqlcli/internal/cell"
)

func TestGuidRoundTrip(t *testing.T) {
	want := [16]byte{0x55, 0x0E, 0x84, 0x00, 0xE2, 0x9B, 0x41, 0xD4, 0xA7, 0x16, 0x44, 0x66, 0x55, 0x44, 0x00, 0x00}

	got, err := cell.ParseGuid("550E8400-E29B-41D4-A716-446655440000")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %x want %x", got, want)
	}

	if s := cell.RenderGuid(want); s != "550E8400-E29B-41D4-A716-446655440000" {
		t.Fatalf("unexpected render: %s", s)
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	d := cell.Decimal{Value: big.NewInt(-12345), Precision: 7, Scale: 2}
	s := cell.RenderDecimal(d)
	if s != "-123.45" {
		t.Fatalf("got %q want -123.45", s)
	}

	v := cell.CellValue{Kind: cell.KindDecimal, Decimal: d}
	if f := cell.ToFloat64(v); f != -123.45 {
		t.Fatalf("got %v want -123.45", f)
	}
}

func TestRenderDate(t *testing.T) {
	// 2024-01-15 is 19737 days after the epoch.
	if got := cell.RenderDate(19737); got != "2024-01-15" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderTime(t *testing.T) {
	nanos := int64((1*3600 + 2*60 + 3) * 1_000_000_000) + 456_000_000
	if got := cell.RenderTime(nanos); got != "01:02:03.456" {
		t.Fatalf("got %q", got)
	}
}

func TestToIntLossyParse(t *testing.T) {
	v := cell.CellValue{Kind: cell.KindString, Str: "not a number"}
	if got := cell.ToInt64(v); got != 0 {
		t.Fatalf("got %d want 0", got)
	}
}

func TestToBitNonZero(t *testing.T) {
	if cell.ToBit(cell.CellValue{Kind: cell.KindI32, I32: 0}) != 0 {
		t.Fatal("expected 0")
	}
	if cell.ToBit(cell.CellValue{Kind: cell.KindI32, I32: 5}) != 1 {
		t.Fatal("expected 1")
	}
	if cell.ToBit(cell.CellValue{Kind: cell.KindString, Str: "x"}) != 1 {
		t.Fatal("expected 1")
	}
}

func TestUtf16RoundTrip(t *testing.T) {
	s := "hello, 世界"
	u := cell.StringToUtf16(s)
	if got := cell.Utf16ToString(u); got != s {
		t.Fatalf("got %q want %q", got, s)
	}
}
