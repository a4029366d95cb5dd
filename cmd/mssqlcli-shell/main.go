// Command mssqlcli-shell is an interactive REPL over this module's
// handle/execdrv/fetch stack, grounded on cowsql-go-cowsql's cmd/
// cowsql-demo.go (cobra root command, pkg/errors wrapping, flag set) and
// cmd/cowsql-benchmark.go (SIGINT/SIGTERM handling).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mssql-cli/mssqlcli/internal/shell"
	"github.com/mssql-cli/mssqlcli/internal/tds"
	"github.com/mssql-cli/mssqlcli/internal/telemetry"
)

// newClient wraps a dialed socket into a tds.Client. The TDS wire codec
// is an external collaborator (spec.md §1a): this module defines the
// interface and drives it, but does not implement the protocol itself.
// A production build links this symbol against a real implementation;
// without one, Connect fails cleanly with a diagnostic record instead of
// silently talking a protocol nobody wrote.
var newClient tds.Client

func dialClient(conn net.Conn) tds.Client {
	return newClient
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func main() {
	var connStr string
	var verbose bool
	var historyFile string
	var dsnCachePath string

	cmd := &cobra.Command{
		Use:   "mssqlcli-shell",
		Short: "Interactive shell for the mssqlcli CLI driver",
		Long: `mssqlcli-shell is an interactive client built on this repository's
CLI/ODBC-style driver core: handle manager, execution driver, streaming
fetch, and catalog synthesizer.

Complete documentation is available in SPEC_FULL.md.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if connStr == "" {
				return errors.New("--connection-string is required")
			}

			logFunc := func(l telemetry.Level, format string, a ...any) {
				if !verbose {
					return
				}
				fmt.Fprintf(os.Stderr, "%s: %s\n", l, fmt.Sprintf(format, a...))
			}

			opts := []shell.Option{shell.WithLog(logFunc)}
			if historyFile != "" {
				opts = append(opts, shell.WithHistoryFile(historyFile))
			}
			if dsnCachePath != "" {
				opts = append(opts, shell.WithDSNStorePath(dsnCachePath))
			}

			s := shell.New(os.Stdout, opts...)
			defer s.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if err := s.Connect(ctx, connStr, dialClient); err != nil {
				return errors.Wrap(err, "connect")
			}

			return s.Run(ctx, "mssqlcli> ")
		},
	}

	cmd.Flags().StringVar(&connStr, "connection-string", "", "semicolon-delimited connection string, or a bare DSN name")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log connection and dial attempts")
	cmd.Flags().StringVar(&historyFile, "history-file", "", "path to persist REPL command history")
	cmd.Flags().StringVar(&dsnCachePath, "dsn-cache", "", "path to the cached-DSN YAML file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
