package cell

import (
	"fmt"
	"math/big"
	"strings"
)

// RenderDate renders a KindDate cell as "YYYY-MM-DD" (spec §4.8).
func RenderDate(days int32) string {
	y, m, d := civilFromDays(int64(days))
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// RenderTime renders a KindTime cell as "HH:MM:SS.fff" (spec §4.8).
func RenderTime(nanos int64) string {
	if nanos < 0 {
		nanos = 0
	}
	const nsPerSec = int64(1e9)
	totalSec := nanos / nsPerSec
	ms := (nanos % nsPerSec) / int64(1e6)
	h := totalSec / 3600
	min := (totalSec % 3600) / 60
	s := totalSec % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, min, s, ms)
}

// decompose splits a microsecond-since-epoch timestamp into civil
// components: year, month, day, hour, minute, second, nanosecond.
func decompose(micros int64) (y int64, mo, d, h, mi, se int, ns int64) {
	const usPerDay = int64(24 * 60 * 60 * 1_000_000)
	days := micros / usPerDay
	rem := micros % usPerDay
	if rem < 0 {
		rem += usPerDay
		days--
	}
	y, mo, d = civilFromDays(days)
	totalSec := rem / 1_000_000
	usRemainder := rem % 1_000_000
	h = int(totalSec / 3600)
	mi = int((totalSec % 3600) / 60)
	se = int(totalSec % 60)
	ns = usRemainder * 1000
	return
}

// RenderDateTime renders a KindDateTime cell as
// "YYYY-MM-DD HH:MM:SS.fff" (spec §4.8).
func RenderDateTime(micros int64) string {
	y, mo, d, h, mi, se, ns := decompose(micros)
	ms := ns / 1_000_000
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d", y, mo, d, h, mi, se, ms)
}

// RenderDateTimeOffset renders a KindDateTimeOffset cell, appending the
// " ±HH:MM" offset suffix (spec §4.8).
func RenderDateTimeOffset(micros int64, offsetMinutes int16) string {
	base := RenderDateTime(micros)
	sign := "+"
	om := offsetMinutes
	if om < 0 {
		sign = "-"
		om = -om
	}
	return fmt.Sprintf("%s %s%02d:%02d", base, sign, om/60, om%60)
}

// RenderDecimal renders a Decimal by unsigned-stringifying |value|,
// left-padding with zeros to scale+1 digits, then inserting a decimal
// point scale digits from the right; a leading '-' is added when negative
// (spec §4.8).
func RenderDecimal(dec Decimal) string {
	if dec.Value == nil {
		return "0"
	}
	neg := dec.Value.Sign() < 0
	abs := new(big.Int).Abs(dec.Value).String()

	scale := int(dec.Scale)
	if scale == 0 {
		if neg {
			return "-" + abs
		}
		return abs
	}

	for len(abs) < scale+1 {
		abs = "0" + abs
	}
	cut := len(abs) - scale
	out := abs[:cut] + "." + abs[cut:]
	if neg {
		out = "-" + out
	}
	return out
}

// RenderGuid renders a 16-byte GUID as
// "XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX" with big-endian data1/2/3
// (spec §4.8, round-trip property in spec §8).
func RenderGuid(g [16]byte) string {
	return fmt.Sprintf("%02X%02X%02X%02X-%02X%02X-%02X%02X-%02X%02X-%02X%02X%02X%02X%02X%02X",
		g[0], g[1], g[2], g[3],
		g[4], g[5],
		g[6], g[7],
		g[8], g[9],
		g[10], g[11], g[12], g[13], g[14], g[15])
}

// ParseGuid parses a GUID string by filtering hex digits and decoding
// big-endian data1/2/3 plus the trailing 8 raw bytes (spec §4.6 GUID
// conversion rule, round-trip property in spec §8).
func ParseGuid(s string) ([16]byte, error) {
	var hex strings.Builder
	for _, r := range s {
		if isHexDigit(r) {
			hex.WriteRune(r)
		}
	}
	h := hex.String()
	if len(h) != 32 {
		return [16]byte{}, fmt.Errorf("cell: invalid GUID string %q", s)
	}
	var out [16]byte
	for i := 0; i < 16; i++ {
		b, err := parseHexByte(h[i*2 : i*2+2])
		if err != nil {
			return [16]byte{}, err
		}
		out[i] = b
	}
	return out, nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func parseHexByte(s string) (byte, error) {
	var v byte
	for _, r := range s {
		v <<= 4
		switch {
		case r >= '0' && r <= '9':
			v |= byte(r - '0')
		case r >= 'a' && r <= 'f':
			v |= byte(r-'a') + 10
		case r >= 'A' && r <= 'F':
			v |= byte(r-'A') + 10
		default:
			return 0, fmt.Errorf("cell: invalid hex byte %q", s)
		}
	}
	return v, nil
}

// RenderBytes renders raw bytes as lowercase hex (spec §4.8).
func RenderBytes(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}
