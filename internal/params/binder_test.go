package params_test

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/params"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
)

func utf16LE(s string) []byte {
	out := make([]byte, 0, len(s)*2+2)
	for _, r := range s {
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(r))
		out = append(out, buf...)
	}
	out = append(out, 0, 0)
	return out
}

func TestRewriteQuoteEscaping(t *testing.T) {
	store := params.NewStore()
	buf := utf16LE("O'Brien")
	store.Bind(&params.BoundParam{
		Position: 1,
		CType:    sqltype.CWChar,
		SQLType:  sqltype.CLIWVarchar,
		Source: func() ([]byte, int64) {
			return buf, clicode.NTS
		},
	})

	out, err := params.Rewrite("SELECT ?", store)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "N'O''Brien'") {
		t.Fatalf("got %q", out)
	}
}

func TestRewriteNull(t *testing.T) {
	store := params.NewStore()
	store.Bind(&params.BoundParam{
		Position: 1,
		CType:    sqltype.CSLong,
		Source: func() ([]byte, int64) {
			return nil, clicode.NullData
		},
	})
	out, err := params.Rewrite("INSERT INTO t VALUES (?)", store)
	if err != nil {
		t.Fatal(err)
	}
	if out != "INSERT INTO t VALUES (NULL)" {
		t.Fatalf("got %q", out)
	}
}

func TestRewriteUnboundPositionIsNull(t *testing.T) {
	store := params.NewStore()
	out, err := params.Rewrite("INSERT INTO t VALUES (?, ?)", store)
	if err != nil {
		t.Fatal(err)
	}
	if out != "INSERT INTO t VALUES (NULL, NULL)" {
		t.Fatalf("got %q", out)
	}
}

func TestRewriteNumericBare(t *testing.T) {
	store := params.NewStore()
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(int32(42)))
	store.Bind(&params.BoundParam{
		Position: 1,
		CType:    sqltype.CSLong,
		SQLType:  sqltype.CLIInteger,
		Source: func() ([]byte, int64) {
			return buf, 4
		},
	})
	out, err := params.Rewrite("SELECT ?", store)
	if err != nil {
		t.Fatal(err)
	}
	if out != "SELECT 42" {
		t.Fatalf("got %q", out)
	}
}
