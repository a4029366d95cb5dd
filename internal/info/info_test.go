package info_test

import (
	"context"
	"testing"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/info"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
	"github.com/mssql-cli/mssqlcli/internal/tds"
	"github.com/mssql-cli/mssqlcli/internal/tds/tdsfake"
)

func TestGetInfoDriverName(t *testing.T) {
	val, _, ok := info.GetInfo(info.InfoDriverName)
	if !ok || val == "" {
		t.Fatalf("expected driver name, got %q ok=%v", val, ok)
	}
}

func TestGetInfoMaxNameLengths(t *testing.T) {
	_, n, ok := info.GetInfo(info.InfoMaxColumnNameLen)
	if !ok || n != 128 {
		t.Fatalf("expected 128, got %d ok=%v", n, ok)
	}
}

func TestGetInfoUnknownID(t *testing.T) {
	_, _, ok := info.GetInfo(info.InfoID(9999))
	if ok {
		t.Fatal("expected unknown id to report ok=false")
	}
}

func TestColAttributeName(t *testing.T) {
	col := sqltype.ColumnDescriptor{Name: "order_id", Type: sqltype.CLIInteger, Size: 10}
	name, _, ok := info.ColAttribute(col, info.ColAttrName)
	if !ok || name != "order_id" {
		t.Fatalf("got %q ok=%v", name, ok)
	}
	_, typeCode, ok := info.ColAttribute(col, info.ColAttrConciseType)
	if !ok || typeCode != int32(sqltype.CLIInteger) {
		t.Fatalf("got %d ok=%v", typeCode, ok)
	}
}

func TestColAttributeTypeName(t *testing.T) {
	col := sqltype.ColumnDescriptor{Type: sqltype.CLIGuid}
	name, _, ok := info.ColAttribute(col, info.ColAttrTypeName)
	if !ok || name != "uniqueidentifier" {
		t.Fatalf("got %q ok=%v", name, ok)
	}
}

func TestGetFunctionsBitmapSetsSupportedBits(t *testing.T) {
	bitmap := info.GetFunctionsBitmap()
	word, bit := 1/16, uint(1%16)
	if bitmap[word]&(1<<bit) == 0 {
		t.Fatal("expected SQLFetch (id 1) bit set")
	}
}

func TestGetFunctionsSingleAlwaysSupported(t *testing.T) {
	if !info.GetFunctionsSingle(12345) {
		t.Fatal("expected every individual function id to report supported")
	}
}

func TestSetConnectAttrAutocommitCommitsOpenTransaction(t *testing.T) {
	fake := &tdsfake.Client{Batches: []tdsfake.Batch{
		{Tokens: []tds.Token{{Kind: tds.TokenDone}}},
	}}
	env := handle.NewEnvironment()
	conn := handle.NewConnection(env)
	conn.Client = fake
	conn.Connected = true
	conn.Autocommit = false
	conn.InTransaction = true

	ret, err := info.SetConnectAttr(context.Background(), conn, info.AttrAutocommit, 1)
	if err != nil || ret != clicode.Success {
		t.Fatalf("ret=%v err=%v", ret, err)
	}
	if !conn.Autocommit || conn.InTransaction {
		t.Fatalf("expected autocommit=true, in_transaction=false; got %v %v", conn.Autocommit, conn.InTransaction)
	}
	if len(fake.SubmittedSQL) != 1 || fake.SubmittedSQL[0] != "COMMIT" {
		t.Fatalf("expected COMMIT submitted, got %v", fake.SubmittedSQL)
	}
}

func TestSetConnectAttrLoginTimeoutRecordedNotEnforced(t *testing.T) {
	env := handle.NewEnvironment()
	conn := handle.NewConnection(env)

	if _, err := info.SetConnectAttr(context.Background(), conn, info.AttrLoginTimeout, 30); err != nil {
		t.Fatal(err)
	}
	if conn.LoginTimeoutSeconds != 30 {
		t.Fatalf("got %d want 30", conn.LoginTimeoutSeconds)
	}
}
