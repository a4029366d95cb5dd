package handle

import (
	"sync"

	"github.com/mssql-cli/mssqlcli/internal/cell"
	"github.com/mssql-cli/mssqlcli/internal/params"
	"github.com/mssql-cli/mssqlcli/internal/sqltype"
)

// TerminalKind discriminates the terminal state of a streaming result set
// (spec §3).
type TerminalKind int

const (
	TerminalNone TerminalKind = iota
	TerminalDone
	TerminalMoreResults
	TerminalError
)

// Terminal is the streaming terminal indicator (spec §3).
type Terminal struct {
	Kind    TerminalKind
	Message string // set when Kind == TerminalError
}

// PendingResultSet is a not-yet-surfaced result set queued by a
// multi-statement batch (spec §3, §9 design note: the queue exists but is
// not exposed by SQLMoreResults in this design).
type PendingResultSet struct {
	Columns []sqltype.ColumnDescriptor
	Rows    [][]cell.CellValue
}

// Statement is the innermost handle (spec §3).
type Statement struct {
	mu sync.Mutex

	Conn *Connection

	Columns     []sqltype.ColumnDescriptor
	Rows        [][]cell.CellValue
	RowCursor   int // -1 before first row
	Executed    bool
	PreparedSQL string
	Params      *params.Store

	// ReadOffsets tracks per-column chunked-read progress for the
	// current row (spec §3, §4.6).
	ReadOffsets []int

	RowCount int64 // -1 when unknown or streaming SELECT

	PendingResultSets []PendingResultSet

	Streaming bool
	Terminal  Terminal

	Diagnostics *DiagQueue
}

// NewStatement allocates a fresh Statement owned by conn.
func NewStatement(conn *Connection) *Statement {
	stmt := &Statement{
		Conn:        conn,
		RowCursor:   -1,
		RowCount:    -1,
		Params:      params.NewStore(),
		Diagnostics: NewDiagQueue(),
	}
	conn.AddStatement(stmt)
	return stmt
}

// Lock/Unlock expose the statement's mutex so callers driving multi-step
// operations (execute, fetch) can hold it across the whole operation; the
// same pattern as connLock in sarathkumarsivan-go-hdb's driver/connection.go.
func (s *Statement) Lock()   { s.mu.Lock() }
func (s *Statement) Unlock() { s.mu.Unlock() }

// ResetForClose implements the SQL_CLOSE SQLFreeStmt option (spec §4.1):
// clears rows, columns, and the executed flag, but retains bindings.
func (s *Statement) ResetForClose() {
	s.Columns = nil
	s.Rows = nil
	s.RowCursor = -1
	s.Executed = false
	s.RowCount = -1
	s.PendingResultSets = nil
	s.Streaming = false
	s.Terminal = Terminal{}
	s.ReadOffsets = nil
}

// UnbindColumns implements the SQL_UNBIND SQLFreeStmt option. Column
// bindings for buffered retrieval are out of this design's scope (spec
// uses SQLGetData exclusively); retained as a no-op hook for symmetry
// with the four documented options.
func (s *Statement) UnbindColumns() {}

// ResetParams implements the SQL_RESET_PARAMS SQLFreeStmt option.
func (s *Statement) ResetParams() {
	s.Params.Reset()
}

// Free detaches s from its connection.
func (s *Statement) Free() {
	s.closeCascade()
	s.Conn.RemoveStatement(s)
}

func (s *Statement) closeCascade() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ResetForClose()
}

// ResetOffsets clears the per-column chunked-read offsets, sized to the
// current column count (spec §4.5 "Clears per-column read offsets").
func (s *Statement) ResetOffsets() {
	s.ReadOffsets = make([]int, len(s.Columns))
}

// CurrentRow returns the row at the cursor, or nil if the cursor is out
// of range.
func (s *Statement) CurrentRow() []cell.CellValue {
	if s.RowCursor < 0 || s.RowCursor >= len(s.Rows) {
		return nil
	}
	return s.Rows[s.RowCursor]
}
