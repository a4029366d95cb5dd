package fetch_test

import (
	"context"
	"testing"

	"github.com/mssql-cli/mssqlcli/internal/cell"
	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/fetch"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
	"github.com/mssql-cli/mssqlcli/internal/tds"
	"github.com/mssql-cli/mssqlcli/internal/tds/tdsfake"
)

func newStreamingStatement(rows [][]cell.CellValue, done tds.Token) (*handle.Statement, *tdsfake.Client) {
	tokens := make([]tds.Token, 0, len(rows)+1)
	for _, r := range rows {
		tokens = append(tokens, tds.Token{Kind: tds.TokenRow, Row: r})
	}
	tokens = append(tokens, done)

	fake := &tdsfake.Client{Batches: []tdsfake.Batch{{Tokens: tokens}}}
	env := handle.NewEnvironment()
	conn := handle.NewConnection(env)
	conn.Client = fake
	conn.Connected = true
	stmt := handle.NewStatement(conn)
	stmt.Columns = []sqltype.ColumnDescriptor{{Name: "name", Type: sqltype.CLIVarchar, Size: 10}}
	stmt.Streaming = true
	stmt.Executed = true
	stmt.RowCount = -1
	stmt.ResetOffsets()

	if err := fake.ExecBatch(context.Background(), "SELECT name FROM t"); err != nil {
		panic(err)
	}
	return stmt, fake
}

func TestFetchStreamsRowsThenNoData(t *testing.T) {
	rows := [][]cell.CellValue{
		{{Kind: cell.KindString, Str: "alice"}},
		{{Kind: cell.KindString, Str: "bob"}},
	}
	stmt, _ := newStreamingStatement(rows, tds.Token{Kind: tds.TokenDone})

	ret, err := fetch.Fetch(context.Background(), stmt)
	if err != nil || ret != clicode.Success {
		t.Fatalf("fetch 1: ret=%v err=%v", ret, err)
	}
	if got := cell.ToText(stmt.CurrentRow()[0]); got != "alice" {
		t.Fatalf("row 1: got %q", got)
	}

	ret, err = fetch.Fetch(context.Background(), stmt)
	if err != nil || ret != clicode.Success {
		t.Fatalf("fetch 2: ret=%v err=%v", ret, err)
	}
	if got := cell.ToText(stmt.CurrentRow()[0]); got != "bob" {
		t.Fatalf("row 2: got %q", got)
	}

	ret, err = fetch.Fetch(context.Background(), stmt)
	if err != nil || ret != clicode.NoData {
		t.Fatalf("fetch 3: ret=%v err=%v want NoData", ret, err)
	}
}

func TestFetchNotExecuted(t *testing.T) {
	env := handle.NewEnvironment()
	conn := handle.NewConnection(env)
	stmt := handle.NewStatement(conn)

	ret, err := fetch.Fetch(context.Background(), stmt)
	if err == nil || ret != clicode.Error {
		t.Fatalf("got ret=%v err=%v, want Error", ret, err)
	}
}

func TestFetchServerErrorPushesDiagnostic(t *testing.T) {
	fake := &tdsfake.Client{Batches: []tdsfake.Batch{{Tokens: []tds.Token{
		{Kind: tds.TokenError, ErrorMessage: "Invalid object name 'missing' (code: 208)"},
	}}}}
	env := handle.NewEnvironment()
	conn := handle.NewConnection(env)
	conn.Client = fake
	conn.Connected = true
	stmt := handle.NewStatement(conn)
	stmt.Columns = []sqltype.ColumnDescriptor{{Name: "name", Type: sqltype.CLIVarchar, Size: 10}}
	stmt.Streaming = true
	stmt.Executed = true
	stmt.ResetOffsets()
	if err := fake.ExecBatch(context.Background(), "SELECT name FROM missing"); err != nil {
		t.Fatal(err)
	}

	ret, err := fetch.Fetch(context.Background(), stmt)
	if err == nil || ret != clicode.Error {
		t.Fatalf("got ret=%v err=%v, want Error", ret, err)
	}
	rec, ok := stmt.Conn.Diagnostics.Get(1)
	if !ok || rec.SQLState != handle.StateTableNotFound {
		t.Fatalf("expected 42S02 diagnostic, got %+v ok=%v", rec, ok)
	}
}

func TestGetDataChunkedCharRead(t *testing.T) {
	rows := [][]cell.CellValue{
		{{Kind: cell.KindString, Str: "abcdefghij"}}, // 10 chars
	}
	stmt, _ := newStreamingStatement(rows, tds.Token{Kind: tds.TokenDone})

	if ret, err := fetch.Fetch(context.Background(), stmt); err != nil || ret != clicode.Success {
		t.Fatalf("fetch: ret=%v err=%v", ret, err)
	}

	// 4-byte buffer: room for 3 chars + NUL terminator each call.
	res, ret, err := fetch.GetData(stmt, 1, sqltype.CChar, 4)
	if err != nil || ret != clicode.SuccessWithInfo {
		t.Fatalf("call 1: ret=%v err=%v", ret, err)
	}
	if res.Indicator != 10 {
		t.Fatalf("call 1: indicator=%d want 10", res.Indicator)
	}
	if string(res.Data[:3]) != "abc" || res.Data[3] != 0 {
		t.Fatalf("call 1: data=%q", res.Data)
	}

	res, ret, err = fetch.GetData(stmt, 1, sqltype.CChar, 4)
	if err != nil || ret != clicode.SuccessWithInfo || res.Indicator != 7 {
		t.Fatalf("call 2: ret=%v err=%v indicator=%d", ret, err, res.Indicator)
	}
	if string(res.Data[:3]) != "def" {
		t.Fatalf("call 2: data=%q", res.Data)
	}

	res, ret, err = fetch.GetData(stmt, 1, sqltype.CChar, 4)
	if err != nil || ret != clicode.SuccessWithInfo || res.Indicator != 4 {
		t.Fatalf("call 3: ret=%v err=%v indicator=%d", ret, err, res.Indicator)
	}
	if string(res.Data[:3]) != "ghi" {
		t.Fatalf("call 3: data=%q", res.Data)
	}

	res, ret, err = fetch.GetData(stmt, 1, sqltype.CChar, 4)
	if err != nil || ret != clicode.Success || res.Indicator != 1 {
		t.Fatalf("call 4: ret=%v err=%v indicator=%d, want Success/1 (drained)", ret, err, res.Indicator)
	}
	if string(res.Data[:1]) != "j" {
		t.Fatalf("call 4: data=%q", res.Data)
	}

	_, ret, err = fetch.GetData(stmt, 1, sqltype.CChar, 4)
	if err != nil || ret != clicode.NoData {
		t.Fatalf("call 5: ret=%v err=%v, want NoData after drain", ret, err)
	}
}

func TestGetDataNullIndicator(t *testing.T) {
	rows := [][]cell.CellValue{
		{cell.Null()},
	}
	stmt, _ := newStreamingStatement(rows, tds.Token{Kind: tds.TokenDone})
	if ret, err := fetch.Fetch(context.Background(), stmt); err != nil || ret != clicode.Success {
		t.Fatalf("fetch: ret=%v err=%v", ret, err)
	}

	res, ret, err := fetch.GetData(stmt, 1, sqltype.CDefault, 64)
	if err != nil || ret != clicode.Success {
		t.Fatalf("get data: ret=%v err=%v", ret, err)
	}
	if res.Indicator != clicode.NullData {
		t.Fatalf("indicator=%d want %d", res.Indicator, clicode.NullData)
	}
}

func TestGetDataDefaultIntegerCType(t *testing.T) {
	rows := [][]cell.CellValue{
		{{Kind: cell.KindI32, I32: 42}},
	}
	stmt, _ := newStreamingStatement(rows, tds.Token{Kind: tds.TokenDone})
	stmt.Columns[0] = sqltype.ColumnDescriptor{Name: "n", Type: sqltype.CLIInteger}
	if ret, err := fetch.Fetch(context.Background(), stmt); err != nil || ret != clicode.Success {
		t.Fatalf("fetch: ret=%v err=%v", ret, err)
	}

	res, ret, err := fetch.GetData(stmt, 1, sqltype.CDefault, 64)
	if err != nil || ret != clicode.Success {
		t.Fatalf("get data: ret=%v err=%v", ret, err)
	}
	if res.Indicator != 4 || len(res.Data) != 4 {
		t.Fatalf("expected 4-byte SLONG, got indicator=%d len=%d", res.Indicator, len(res.Data))
	}
}
