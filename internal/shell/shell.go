// Package shell implements an interactive line-editing REPL on top of
// this module's handle/execdrv/fetch stack — operator tooling that
// supplements spec.md rather than a named [MODULE] within it. Grounded on
// cowsql-go-cowsql's internal/shell package (functional options,
// tabular/format output) with peterh/liner supplying line editing and
// history, the same library cowsql-go-cowsql's shell depends on.
package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/peterh/liner"

	"github.com/mssql-cli/mssqlcli/internal/cell"
	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/execdrv"
	"github.com/mssql-cli/mssqlcli/internal/fetch"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
	"github.com/mssql-cli/mssqlcli/internal/store"
	"github.com/mssql-cli/mssqlcli/internal/telemetry"
	"github.com/mssql-cli/mssqlcli/internal/transport"
)

// Shell is a single interactive session: one Environment, one Connection,
// one Statement reused across each submitted batch.
type Shell struct {
	opts *options

	env   *handle.Environment
	conn  *handle.Connection
	stmt  *handle.Statement
	store *store.DSNStore

	line *liner.State
	out  io.Writer
}

// New allocates a Shell with no live connection yet.
func New(out io.Writer, opts ...Option) *Shell {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	env := handle.NewEnvironment()
	conn := handle.NewConnection(env)
	s := &Shell{
		opts: o,
		env:  env,
		conn: conn,
		stmt: handle.NewStatement(conn),
		out:  out,
	}

	if o.DSNStorePath != "" {
		if st, err := store.Open(o.DSNStorePath); err == nil {
			s.store = st
		} else {
			o.Log(telemetry.Warn, "could not open DSN cache %s: %v", o.DSNStorePath, err)
		}
	}

	return s
}

// Connect resolves connStr (a raw connection string, or a bare DSN name
// looked up via .odbc.ini) and establishes the connection, using
// newClient to wrap the dialed socket into a tds.Client (spec §1: the
// wire codec is an external collaborator supplied by the caller).
func (s *Shell) Connect(ctx context.Context, connStr string, newClient transport.ClientFactory) error {
	var params transport.Params
	var err error

	if strings.Contains(connStr, "=") {
		params, err = transport.ParseConnectionString(connStr)
	} else {
		params, err = transport.ResolveDSN(connStr, "", "")
	}
	if err != nil {
		return err
	}

	client, err := transport.Connect(ctx, params, newClient, transport.DialOptions{Log: s.opts.Log})
	if err != nil {
		transport.PushLoginFailure(s.conn, err)
		return err
	}

	s.conn.Client = client
	s.conn.Connected = true
	s.conn.Server = fmt.Sprintf("%s:%d", params.Host, params.Port)
	s.conn.Database = params.Database
	s.conn.Username = params.Username
	s.conn.Encrypt = params.Encrypt

	if s.store != nil && !strings.Contains(connStr, "=") {
		if err := s.store.Remember(connStr, params); err != nil {
			s.opts.Log(telemetry.Warn, "could not cache DSN %s: %v", connStr, err)
		}
	}

	return nil
}

// Run reads lines from prompt until EOF or a "\q" command, submitting
// every other line as a batch and printing its result (spec §4.4/§4.5/
// §4.6 end to end, from the operator's side of the CLI surface).
func (s *Shell) Run(ctx context.Context, prompt string) error {
	s.line = liner.NewLiner()
	defer s.line.Close()
	s.line.SetCtrlCAborts(true)

	if s.opts.HistoryFile != "" {
		loadHistory(s.line, s.opts.HistoryFile)
		defer saveHistory(s.line, s.opts.HistoryFile)
	}

	for {
		text, err := s.line.Prompt(prompt)
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if text == `\q` {
			return nil
		}
		if text == `\genguid` {
			fmt.Fprintln(s.out, uuid.New().String())
			s.line.AppendHistory(text)
			continue
		}

		s.line.AppendHistory(text)
		s.runBatch(ctx, text)
	}
}

func (s *Shell) runBatch(ctx context.Context, sql string) {
	ret, err := execdrv.ExecDirect(ctx, s.stmt, sql)
	if ret == clicode.Error {
		s.printDiagnostics()
		return
	}
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}

	if !s.stmt.Streaming {
		fmt.Fprintf(s.out, "(%d rows affected)\n", s.stmt.RowCount)
		return
	}

	s.printHeader()
	for {
		ret, err := fetch.Fetch(ctx, s.stmt)
		if ret == clicode.NoData {
			return
		}
		if ret == clicode.Error {
			if err != nil {
				fmt.Fprintln(s.out, err)
			}
			s.printDiagnostics()
			return
		}
		s.printRow()
	}
}

func (s *Shell) printHeader() {
	names := make([]string, len(s.stmt.Columns))
	for i, c := range s.stmt.Columns {
		names[i] = c.Name
	}
	fmt.Fprintln(s.out, strings.Join(names, "\t"))
}

func (s *Shell) printRow() {
	row := s.stmt.CurrentRow()
	vals := make([]string, len(row))
	for i, v := range row {
		if v.IsNull() {
			vals[i] = "NULL"
			continue
		}
		vals[i] = cell.ToText(v)
	}
	fmt.Fprintln(s.out, strings.Join(vals, "\t"))
}

func (s *Shell) printDiagnostics() {
	n := s.conn.Diagnostics.Len()
	for i := 1; i <= n; i++ {
		rec, ok := s.conn.Diagnostics.Get(i)
		if !ok {
			break
		}
		fmt.Fprintf(s.out, "[%s] %s\n", rec.SQLState, rec.Message)
	}
	sn := s.stmt.Diagnostics.Len()
	for i := 1; i <= sn; i++ {
		rec, ok := s.stmt.Diagnostics.Get(i)
		if !ok {
			break
		}
		fmt.Fprintf(s.out, "[%s] %s\n", rec.SQLState, rec.Message)
	}
}

// Describe prints every result column's metadata, the shell-side analog of
// ColAttribute (spec §4.10).
func (s *Shell) Describe() {
	for _, c := range s.stmt.Columns {
		fmt.Fprintf(s.out, "%-32s %-16s size=%d scale=%d nullable=%v\n", c.Name, cliTypeLabel(c.Type), c.Size, c.Scale, c.Nullable)
	}
}

func cliTypeLabel(t sqltype.CLIType) string {
	switch t {
	case sqltype.CLIInteger:
		return "INTEGER"
	case sqltype.CLIBigint:
		return "BIGINT"
	case sqltype.CLIVarchar:
		return "VARCHAR"
	case sqltype.CLIWVarchar:
		return "NVARCHAR"
	case sqltype.CLIDecimal:
		return "DECIMAL"
	case sqltype.CLITypeTimestamp:
		return "TIMESTAMP"
	case sqltype.CLIGuid:
		return "GUID"
	default:
		return "UNKNOWN"
	}
}

// Close frees the shell's handles in LIFO order (spec §4.1 lifecycle).
func (s *Shell) Close() {
	s.stmt.Free()
	s.conn.Free()
	s.env.Free()
}
