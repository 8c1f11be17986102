package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqflow/seqflow/internal/model"
	"github.com/seqflow/seqflow/pkg/adapters"
	"github.com/seqflow/seqflow/pkg/config"
	"github.com/seqflow/seqflow/pkg/normalize"
	"github.com/seqflow/seqflow/pkg/pipeline"
	"github.com/seqflow/seqflow/pkg/telemetry"
	"github.com/seqflow/seqflow/pkg/tui"
	"github.com/seqflow/seqflow/pkg/watch"
)

// prepare/watch flags
var (
	inputFile       string
	outputFile      string
	eventsParquet   string
	sessionField    string
	timestampField  string
	actionField     string
	delimiterFlag   string
	truncateSeconds bool
	workers         int
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Normalize and encode an event log into mining-ready transactions",
	Long: `Normalize a raw event log (CSV or XLSX) and encode it into the
session-scoped transaction format a sequential-pattern-mining engine expects:
dense sequence IDs, per-session event ordinals, sanitized action symbols.

Examples:
  seqflow prepare -i events.csv -o transactions.csv
  seqflow prepare -i clicks.xlsx -o tx.csv --session-key "Session ID" --action "Event Name"
  seqflow prepare -i events.csv -o tx.csv --events-parquet events.parquet`,
	RunE: runPrepare,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run prepare whenever the input file changes",
	RunE:  runWatch,
}

func init() {
	for _, cmd := range []*cobra.Command{prepareCmd, watchCmd} {
		cfg := config.Global().Get()
		cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (.csv or .xlsx)")
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output transactions CSV path (required)")
		cmd.Flags().StringVar(&eventsParquet, "events-parquet", "", "Also write normalized events as Parquet")
		cmd.Flags().StringVar(&sessionField, "session-key", cfg.Fields.Session, "Session key column name")
		cmd.Flags().StringVar(&timestampField, "timestamp", cfg.Fields.Timestamp, "Timestamp column name")
		cmd.Flags().StringVar(&actionField, "action", cfg.Fields.Action, "Action column name")
		cmd.Flags().StringVar(&delimiterFlag, "delimiter", ",", "CSV field delimiter")
		cmd.Flags().BoolVar(&truncateSeconds, "truncate-seconds", false, "Drop sub-second timestamp precision")
		cmd.Flags().IntVar(&workers, "workers", cfg.Encoding.Workers, "Parallel encoding workers (1 = sequential)")
		cmd.MarkFlagRequired("input")
		cmd.MarkFlagRequired("output")
	}
}

func runPrepare(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	shutdown := initTelemetry(ctx)
	defer shutdown(ctx)

	return prepareOnce(ctx, inputFile)
}

func prepareOnce(ctx context.Context, input string) error {
	if _, err := os.Stat(input); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", input)
	}

	start := time.Now()

	ds, err := readDataset(input)
	if err != nil {
		return err
	}

	p := pipeline.New(pipelineConfig(), nil)
	if verbose {
		p.SetProgressCallback(func(stage string, elapsed time.Duration) {
			fmt.Printf("  %s done in %s\n", stage, elapsed.Round(time.Millisecond))
		})
	}

	prepared, err := p.Prepare(ctx, ds)
	if err != nil {
		return err
	}

	if err := adapters.WriteTransactionsCSV(outputFile, prepared.Transactions); err != nil {
		return err
	}

	if eventsParquet != "" {
		if err := adapters.WriteEventsParquet(eventsParquet, prepared.Events, actionField); err != nil {
			return err
		}
	}

	tui.PrintRunReport(&tui.RunReport{
		RunID:      prepared.RunID,
		Records:    len(prepared.Events),
		Sessions:   prepared.Transactions.Sessions(),
		Symbols:    len(prepared.Transactions.SymbolCodes),
		Duration:   time.Since(start),
		OutputPath: outputFile,
	})

	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	shutdown := initTelemetry(ctx)
	defer shutdown(ctx)

	if err := prepareOnce(ctx, inputFile); err != nil {
		return err
	}

	watcher, err := watch.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watcher.OnChange = func(path string) error {
		fmt.Printf("Change detected: %s\n", path)
		return prepareOnce(ctx, path)
	}
	watcher.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
	}

	if err := watcher.Watch(inputFile); err != nil {
		return err
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", inputFile)
	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// readDataset loads the input by extension.
func readDataset(path string) (*model.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return adapters.ReadXLSX(path)
	default:
		opts := adapters.DefaultCSVOptions()
		if delimiterFlag != "" {
			opts.Delimiter = rune(delimiterFlag[0])
		}
		return adapters.ReadCSV(path, opts)
	}
}

func pipelineConfig() pipeline.Config {
	cfg := config.Global().Get()
	return pipeline.Config{
		SessionField:   sessionField,
		TimestampField: timestampField,
		ActionField:    actionField,
		Normalize:      normalize.Options{TruncateSeconds: truncateSeconds},
		Mining:         cfg.Mining,
		Workers:        workers,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}

// initTelemetry sets up OTLP trace export when enabled in config. Returns a
// shutdown function, a no-op when telemetry is off or fails to initialize.
func initTelemetry(ctx context.Context) func(context.Context) error {
	cfg := config.Global().Get()
	if !cfg.Telemetry.Enabled {
		return func(context.Context) error { return nil }
	}

	otlpCfg := telemetry.DefaultOTLPConfig("seqflow")
	if cfg.Telemetry.Endpoint != "" {
		otlpCfg.Endpoint = cfg.Telemetry.Endpoint
	}

	shutdown, err := telemetry.NewOTLPExporter(otlpCfg).Init(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		return func(context.Context) error { return nil }
	}
	return shutdown
}
