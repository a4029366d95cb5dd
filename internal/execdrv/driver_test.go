package execdrv_test

import (
	"context"
	"testing"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/execdrv"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
	"github.com/mssql-cli/mssqlcli/internal/tds"
	"github.com/mssql-cli/mssqlcli/internal/tds/tdsfake"
)

func newConnectedStatement(batches []tdsfake.Batch) (*handle.Statement, *tdsfake.Client) {
	env := handle.NewEnvironment()
	conn := handle.NewConnection(env)
	fake := &tdsfake.Client{Batches: batches}
	conn.Client = fake
	conn.Connected = true
	stmt := handle.NewStatement(conn)
	return stmt, fake
}

func TestExecDirectDML(t *testing.T) {
	stmt, _ := newConnectedStatement([]tdsfake.Batch{
		{Tokens: []tds.Token{{Kind: tds.TokenDone, DoneRowCount: 3}}},
	})

	ret, err := execdrv.ExecDirect(context.Background(), stmt, "INSERT INTO t VALUES (1),(2),(3)")
	if err != nil {
		t.Fatal(err)
	}
	if ret != clicode.Success {
		t.Fatalf("got %v want Success", ret)
	}
	if stmt.RowCount != 3 {
		t.Fatalf("got row count %d want 3", stmt.RowCount)
	}
	if len(stmt.Columns) != 0 {
		t.Fatalf("expected no columns for DML")
	}
}

func TestExecDirectSelectStreaming(t *testing.T) {
	stmt, _ := newConnectedStatement([]tdsfake.Batch{
		{Tokens: []tds.Token{
			{Kind: tds.TokenColumnMetadata, Columns: []sqltype.ColumnDescriptor{{Name: "object_id", Type: sqltype.CLIInteger}}},
		}},
	})

	ret, err := execdrv.ExecDirect(context.Background(), stmt, "SELECT TOP 5 object_id FROM sys.tables")
	if err != nil {
		t.Fatal(err)
	}
	if ret != clicode.Success {
		t.Fatalf("got %v want Success", ret)
	}
	if len(stmt.Columns) != 1 {
		t.Fatalf("expected 1 column")
	}
	if stmt.RowCount != -1 {
		t.Fatalf("expected row count -1 for streaming select, got %d", stmt.RowCount)
	}
	if !stmt.Streaming {
		t.Fatal("expected streaming=true")
	}
}

func TestExecDirectNotConnected(t *testing.T) {
	env := handle.NewEnvironment()
	conn := handle.NewConnection(env)
	stmt := handle.NewStatement(conn)

	ret, err := execdrv.ExecDirect(context.Background(), stmt, "SELECT 1")
	if err == nil {
		t.Fatal("expected error")
	}
	if ret != clicode.Error {
		t.Fatalf("got %v want Error", ret)
	}
	rec, ok := conn.Diagnostics.Get(1)
	if !ok || rec.SQLState != handle.StateNotConnected {
		t.Fatalf("expected 08003 diagnostic, got %+v ok=%v", rec, ok)
	}
}

func TestExecDirectServerErrorMapping(t *testing.T) {
	stmt, _ := newConnectedStatement([]tdsfake.Batch{
		{Tokens: []tds.Token{{Kind: tds.TokenError, ErrorMessage: "Violation of UNIQUE KEY constraint (code: 2627)"}}},
	})

	ret, err := execdrv.ExecDirect(context.Background(), stmt, "INSERT INTO t VALUES (1)")
	if err == nil {
		t.Fatal("expected error")
	}
	if ret != clicode.Error {
		t.Fatalf("got %v want Error", ret)
	}
	rec, ok := stmt.Conn.Diagnostics.Get(1)
	if !ok || rec.SQLState != handle.StateIntegrityViol {
		t.Fatalf("expected 23000 diagnostic, got %+v ok=%v", rec, ok)
	}
}
