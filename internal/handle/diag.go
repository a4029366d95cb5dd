// Package handle implements the handle state machine (spec §4.1) and the
// diagnostic record queues (spec §4.2) that sit behind Environment,
// Connection, and Statement handles.
package handle

import (
	"regexp"
	"strconv"
	"sync"
)

// DiagRecord is a single diagnostic record (spec §3).
type DiagRecord struct {
	SQLState string // always exactly 5 ASCII characters
	Native   int32
	Message  string
}

// SQLSTATE classes (spec §4.2, §7).
const (
	StateTransportLogin    = "08001"
	StateNotConnected      = "08003"
	StateInvalidState      = "HY010"
	StateIntegrityViol     = "23000"
	StateTableNotFound     = "42S02"
	StateSyntax            = "42000"
	StateInfo              = "01000"
	StateGeneral           = "HY000"
)

// DiagQueue is the FIFO diagnostic record queue attached to every handle
// (spec §3, §4.2). Reading a record by index never removes it.
type DiagQueue struct {
	mu      sync.Mutex
	records []DiagRecord
}

// NewDiagQueue returns an empty queue.
func NewDiagQueue() *DiagQueue {
	return &DiagQueue{}
}

// Push appends a record to the queue.
func (q *DiagQueue) Push(rec DiagRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = append(q.records, rec)
}

// Clear empties the queue. Called at the start of every CLI entrypoint
// that can produce new diagnostics (spec §7).
func (q *DiagQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = q.records[:0]
}

// Get fetches the 1-based record by number. Out-of-range numbers report
// ok == false, which callers map to NO_DATA (spec §4.2).
func (q *DiagQueue) Get(recNumber int) (DiagRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if recNumber < 1 || recNumber > len(q.records) {
		return DiagRecord{}, false
	}
	return q.records[recNumber-1], true
}

// Len reports the number of queued records.
func (q *DiagQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

var nativeErrorPattern = regexp.MustCompile(`(?i)(?:code|number):\s*(-?\d+)|Msg\s+(-?\d+)`)

// ParseNativeError extracts a native SQL Server error number from a
// transport error string, recognising "code: N", "number: N", and
// "Msg N" patterns (spec §4.2). ok is false if no number was found.
func ParseNativeError(errText string) (native int32, ok bool) {
	m := nativeErrorPattern.FindStringSubmatch(errText)
	if m == nil {
		return 0, false
	}
	numStr := m[1]
	if numStr == "" {
		numStr = m[2]
	}
	n, err := strconv.ParseInt(numStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// MapSQLState maps a native SQL Server error number to a SQLSTATE class
// (spec §4.2).
func MapSQLState(native int32) string {
	switch native {
	case 2627, 2601, 547:
		return StateIntegrityViol
	case 208:
		return StateTableNotFound
	case 156, 102:
		return StateSyntax
	default:
		return StateGeneral
	}
}

// SQLStateForError derives the SQLSTATE that should be pushed for a
// server-side execution failure, parsing the native error number out of
// the transport error text first (spec §4.2).
func SQLStateForError(errText string) (state string, native int32) {
	n, ok := ParseNativeError(errText)
	if !ok {
		return StateGeneral, 0
	}
	return MapSQLState(n), n
}
