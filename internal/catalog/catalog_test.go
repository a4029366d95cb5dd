package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mssql-cli/mssqlcli/internal/catalog"
	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
	"github.com/mssql-cli/mssqlcli/internal/tds"
	"github.com/mssql-cli/mssqlcli/internal/tds/tdsfake"
)

func newConnectedStatement() (*handle.Statement, *tdsfake.Client) {
	fake := &tdsfake.Client{Batches: []tdsfake.Batch{
		{Tokens: []tds.Token{{Kind: tds.TokenColumnMetadata, Columns: []sqltype.ColumnDescriptor{{Name: "TABLE_NAME", Type: sqltype.CLIVarchar}}}}},
	}}
	env := handle.NewEnvironment()
	conn := handle.NewConnection(env)
	conn.Client = fake
	conn.Connected = true
	stmt := handle.NewStatement(conn)
	return stmt, fake
}

func TestTablesSynthesizesJoinAndFilter(t *testing.T) {
	stmt, fake := newConnectedStatement()

	ret, err := catalog.Tables(context.Background(), stmt, "", "dbo", "Orders", "TABLE")
	if err != nil || ret != clicode.Success {
		t.Fatalf("ret=%v err=%v", ret, err)
	}
	if len(fake.SubmittedSQL) != 1 {
		t.Fatalf("expected 1 submitted batch, got %d", len(fake.SubmittedSQL))
	}
	sql := fake.SubmittedSQL[0]
	if !strings.Contains(sql, "sys.objects") || !strings.Contains(sql, "sys.schemas") {
		t.Fatalf("expected sys.objects/sys.schemas join, got: %s", sql)
	}
	if !strings.Contains(sql, "s.name LIKE N'dbo'") || !strings.Contains(sql, "o.name LIKE N'Orders'") {
		t.Fatalf("expected schema/table LIKE filters, got: %s", sql)
	}
	if !strings.Contains(sql, "'U'") {
		t.Fatalf("expected TABLE type filtered to 'U', got: %s", sql)
	}
}

func TestTablesEscapesQuotes(t *testing.T) {
	stmt, fake := newConnectedStatement()

	_, err := catalog.Tables(context.Background(), stmt, "", "O'Brien", "%", "")
	if err != nil {
		t.Fatal(err)
	}
	sql := fake.SubmittedSQL[0]
	if !strings.Contains(sql, "O''Brien") {
		t.Fatalf("expected doubled quote escaping, got: %s", sql)
	}
}

func TestTablesNoFilterOmitsLike(t *testing.T) {
	stmt, fake := newConnectedStatement()

	_, err := catalog.Tables(context.Background(), stmt, "", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	sql := fake.SubmittedSQL[0]
	if strings.Contains(sql, "LIKE") {
		t.Fatalf("expected no LIKE filters for empty schema/table args, got: %s", sql)
	}
}

func TestColumnsOrdersByOrdinal(t *testing.T) {
	stmt, fake := newConnectedStatement()

	ret, err := catalog.Columns(context.Background(), stmt, "", "dbo", "Orders", "")
	if err != nil || ret != clicode.Success {
		t.Fatalf("ret=%v err=%v", ret, err)
	}
	sql := fake.SubmittedSQL[0]
	if !strings.Contains(sql, "ORDER BY s.name, o.name, c.column_id") {
		t.Fatalf("expected ordinal ordering, got: %s", sql)
	}
}

func TestGetTypeInfoFiltersBySqlType(t *testing.T) {
	stmt, fake := newConnectedStatement()

	ret, err := catalog.GetTypeInfo(context.Background(), stmt, 4)
	if err != nil || ret != clicode.Success {
		t.Fatalf("ret=%v err=%v", ret, err)
	}
	sql := fake.SubmittedSQL[0]
	if !strings.Contains(sql, "WHERE") || !strings.Contains(sql, "= 4") {
		t.Fatalf("expected DATA_TYPE = 4 filter, got: %s", sql)
	}
}

func TestGetTypeInfoAllTypesOmitsWhere(t *testing.T) {
	stmt, fake := newConnectedStatement()

	_, err := catalog.GetTypeInfo(context.Background(), stmt, 0)
	if err != nil {
		t.Fatal(err)
	}
	sql := fake.SubmittedSQL[0]
	if strings.Contains(sql, "WHERE") {
		t.Fatalf("expected no WHERE clause for sqlType=0, got: %s", sql)
	}
}
