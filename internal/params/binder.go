// Package params implements the bound-parameter store and the `?`
// positional SQL rewriter described in spec §4.7.
package params

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
)

// BufferSource reads the current contents of a bound application buffer.
// lenOrInd follows the ODBC convention: clicode.NullData (-1) means NULL,
// clicode.NTS (-3) means the buffer is NUL-terminated, and any
// non-negative value is a byte length. It is invoked lazily, at execute
// time, because the application only guarantees the buffer's contents are
// stable for the duration of execution and row delivery (spec §3
// Ownership), not for the whole lifetime of the binding.
type BufferSource func() (data []byte, lenOrInd int64)

// BoundParam is a single SQLBindParameter binding (spec §3, §4.7).
type BoundParam struct {
	Position      int
	CType         sqltype.CType
	SQLType       sqltype.CLIType
	ColumnSize    uint32
	DecimalDigits int16
	Source        BufferSource
}

// Store holds the parameters bound to one statement, keyed by 1-based
// position. Binding the same position twice replaces the previous
// binding (spec §4.7).
type Store struct {
	byPosition map[int]*BoundParam
}

// NewStore returns an empty parameter store.
func NewStore() *Store {
	return &Store{byPosition: make(map[int]*BoundParam)}
}

// Bind records (or replaces) the binding at p.Position.
func (s *Store) Bind(p *BoundParam) {
	s.byPosition[p.Position] = p
}

// Get returns the binding at the given 1-based position, if any.
func (s *Store) Get(position int) (*BoundParam, bool) {
	p, ok := s.byPosition[position]
	return p, ok
}

// Reset clears all bindings. Called after every execute (spec §4.7).
func (s *Store) Reset() {
	s.byPosition = make(map[int]*BoundParam)
}

// Len reports the highest bound position, used by SQLNumParams.
func (s *Store) Len() int {
	max := 0
	for pos := range s.byPosition {
		if pos > max {
			max = pos
		}
	}
	return max
}

// Rewrite scans sql character-by-character and, for each `?` placeholder,
// substitutes the literal rendering of the next positional parameter
// (spec §4.7). Placeholders inside quoted string literals are NOT
// special-cased by this design: the scan is a literal character scan, as
// specified. A placeholder with no matching binding substitutes the
// keyword NULL rather than failing the rewrite.
func Rewrite(sql string, store *Store) (string, error) {
	var out strings.Builder
	position := 0

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if c != '?' {
			out.WriteByte(c)
			continue
		}
		position++
		p, ok := store.Get(position)
		if !ok {
			out.WriteString("NULL")
			continue
		}
		literal, err := renderLiteral(p)
		if err != nil {
			return "", err
		}
		out.WriteString(literal)
	}

	return out.String(), nil
}

func renderLiteral(p *BoundParam) (string, error) {
	data, lenOrInd := p.Source()

	if lenOrInd == clicode.NullData {
		return "NULL", nil
	}

	switch p.CType {
	case sqltype.CSLong, sqltype.CShort:
		return strconv.FormatInt(int64(decodeSignedInt(data)), 10), nil
	case sqltype.CSBigint:
		return strconv.FormatInt(decodeInt64(data), 10), nil
	case sqltype.CDouble:
		return strconv.FormatFloat(decodeFloat64(data), 'g', -1, 64), nil
	case sqltype.CFloat:
		return strconv.FormatFloat(float64(decodeFloat32(data)), 'g', -1, 32), nil
	case sqltype.CWChar:
		s := decodeUtf16String(data, lenOrInd)
		return "N'" + escapeQuotes(s) + "'", nil
	case sqltype.CChar:
		s := decodeCString(data, lenOrInd)
		if isNumericSQLType(p.SQLType) {
			return s, nil
		}
		return "N'" + escapeQuotes(s) + "'", nil
	default:
		s := decodeCString(data, lenOrInd)
		return "N'" + escapeQuotes(s) + "'", nil
	}
}

func isNumericSQLType(t sqltype.CLIType) bool {
	switch t {
	case sqltype.CLIInteger, sqltype.CLISmallint, sqltype.CLITinyint, sqltype.CLIBigint,
		sqltype.CLIFloat, sqltype.CLIReal, sqltype.CLIDouble, sqltype.CLIDecimal, sqltype.CLINumeric, sqltype.CLIBit:
		return true
	default:
		return false
	}
}

// escapeQuotes doubles every single quote, per spec §4.7.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func decodeCString(data []byte, lenOrInd int64) string {
	if lenOrInd == clicode.NTS {
		if idx := indexZero(data); idx >= 0 {
			return string(data[:idx])
		}
		return string(data)
	}
	n := int(lenOrInd)
	if n < 0 || n > len(data) {
		n = len(data)
	}
	return string(data[:n])
}

func decodeUtf16String(data []byte, lenOrInd int64) string {
	units := make([]uint16, 0, len(data)/2)
	if lenOrInd == clicode.NTS {
		for i := 0; i+1 < len(data); i += 2 {
			u := binary.LittleEndian.Uint16(data[i : i+2])
			if u == 0 {
				break
			}
			units = append(units, u)
		}
	} else {
		n := int(lenOrInd)
		if n < 0 || n > len(data) {
			n = len(data)
		}
		for i := 0; i+1 < n; i += 2 {
			units = append(units, binary.LittleEndian.Uint16(data[i:i+2]))
		}
	}
	return utf16ToString(units)
}

func indexZero(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

func decodeSignedInt(data []byte) int32 {
	switch len(data) {
	case 2:
		return int32(int16(binary.LittleEndian.Uint16(data)))
	case 4:
		return int32(binary.LittleEndian.Uint32(data))
	default:
		return 0
	}
}

func decodeInt64(data []byte) int64 {
	if len(data) < 8 {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(data))
}

func decodeFloat32(data []byte) float32 {
	if len(data) < 4 {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(data))
}

func decodeFloat64(data []byte) float64 {
	if len(data) < 8 {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(data))
}

// utf16ToString decodes UTF-16 code units without importing the cell
// package, to avoid a dependency cycle (cell imports nothing from
// params, but keeping this leaf package self-contained is simpler).
func utf16ToString(u []uint16) string {
	runes := make([]rune, 0, len(u))
	for i := 0; i < len(u); i++ {
		r := rune(u[i])
		if r >= 0xD800 && r <= 0xDBFF && i+1 < len(u) {
			r2 := rune(u[i+1])
			if r2 >= 0xDC00 && r2 <= 0xDFFF {
				runes = append(runes, ((r-0xD800)<<10)+(r2-0xDC00)+0x10000)
				i++
				continue
			}
		}
		runes = append(runes, r)
	}
	return string(runes)
}
