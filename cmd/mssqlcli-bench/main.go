// Command mssqlcli-bench drives a fixed SQL text against a connection in
// a tight loop for a configurable duration, reporting executions and
// average latency — grounded on cowsql-go-cowsql's cmd/cowsql-benchmark.go
// (cobra flags, SIGINT handling, duration-bounded workload loop), scaled
// down to this module's single-connection scope (no cluster/workers
// coordination, since this driver talks to one already-running SQL
// Server instance rather than bootstrapping a cluster).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/execdrv"
	"github.com/mssql-cli/mssqlcli/internal/fetch"
	"github.com/mssql-cli/mssqlcli/internal/handle"
	"github.com/mssql-cli/mssqlcli/internal/tds"
	"github.com/mssql-cli/mssqlcli/internal/transport"
)

const (
	defaultDurationSeconds = 10
	defaultQuery           = "SELECT 1"
)

// newClient is the external TDS collaborator hook (spec.md §1a); see
// cmd/mssqlcli-shell's identical note.
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
	var query string
	var durationSeconds int

	cmd := &cobra.Command{
		Use:   "mssqlcli-bench",
		Short: "Benchmark repeated execution of a query over this driver's core",
		RunE: func(cmd *cobra.Command, args []string) error {
			if connStr == "" {
				return fmt.Errorf("--connection-string is required")
			}

			ctx, cancel := signalContext()
			defer cancel()

			params, err := transport.ParseConnectionString(connStr)
			if err != nil {
				return err
			}
			client, err := transport.Connect(ctx, params, dialClient, transport.DialOptions{})
			if err != nil {
				return err
			}
			defer client.Close()

			env := handle.NewEnvironment()
			conn := handle.NewConnection(env)
			conn.Client = client
			conn.Connected = true
			stmt := handle.NewStatement(conn)
			defer stmt.Free()

			deadline := time.Now().Add(time.Duration(durationSeconds) * time.Second)
			var count int64
			var totalLatency time.Duration

			for time.Now().Before(deadline) {
				select {
				case <-ctx.Done():
					return printResults(count, totalLatency)
				default:
				}

				start := time.Now()
				ret, err := execdrv.ExecDirect(ctx, stmt, query)
				if err != nil {
					return err
				}
				if ret == clicode.Success && stmt.Streaming {
					for {
						fret, ferr := fetch.Fetch(ctx, stmt)
						if ferr != nil || fret != clicode.Success {
							break
						}
					}
				}
				totalLatency += time.Since(start)
				count++
			}

			return printResults(count, totalLatency)
		},
	}

	cmd.Flags().StringVar(&connStr, "connection-string", "", "semicolon-delimited connection string")
	cmd.Flags().StringVar(&query, "query", defaultQuery, "SQL text to execute repeatedly")
	cmd.Flags().IntVar(&durationSeconds, "duration", defaultDurationSeconds, "benchmark duration in seconds")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printResults(count int64, total time.Duration) error {
	if count == 0 {
		fmt.Println("0 executions")
		return nil
	}
	avg := total / time.Duration(count)
	fmt.Printf("%d executions, avg latency %s\n", count, avg)
	return nil
}
