package shell

import "github.com/mssql-cli/mssqlcli/internal/telemetry"

// Option tweaks shell parameters, the same functional-option shape as
// cowsql-go-cowsql's internal/shell package.
type Option func(*options)

// WithLog sets a custom diagnostic sink.
func WithLog(log telemetry.Func) Option {
	return func(o *options) {
		o.Log = log
	}
}

// WithFormat records a row output format name in the shell options. The
// shell does not read it: rows are always printed tab-separated.
func WithFormat(format string) Option {
	return func(o *options) {
		o.Format = format
	}
}

// WithHistoryFile sets the path liner uses to persist command history.
func WithHistoryFile(path string) Option {
	return func(o *options) {
		o.HistoryFile = path
	}
}

// WithDSNStorePath sets the path of the cached-DSN YAML file.
func WithDSNStorePath(path string) Option {
	return func(o *options) {
		o.DSNStorePath = path
	}
}

type options struct {
	Log          telemetry.Func
	Format       string
	HistoryFile  string
	DSNStorePath string
}

const (
	formatTabular = "tabular"
	formatCSV     = "csv"
)

// defaultOptions creates a shell options object with sane defaults.
func defaultOptions() *options {
	return &options{
		Log:    telemetry.Discard,
		Format: formatTabular,
	}
}
