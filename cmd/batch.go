package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"gmgn-swap/config"
	"gmgn-swap/pkg/journal"
	"gmgn-swap/pkg/metrics"
	"gmgn-swap/pkg/parser"
	"gmgn-swap/pkg/signer"
	"gmgn-swap/pkg/swap"
	"gmgn-swap/pkg/types"
)

var (
	batchConcurrency int
	batchMetricsAddr string
	batchReport      string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file.yaml>",
	Short: "Run several swaps from a YAML file",
	Long: `Run the swaps listed in a YAML file concurrently and print a summary.

A failing swap does not stop the others. Example file:

  defaults:
    slippage: 5
    fee: "0.0001"
  swaps:
    - name: buy-usdc
      command: 0.01 SOL to USDC
    - name: protected
      command: 0.5 SOL to HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC
      anti_mev: true
      fee: "0.003"

Examples:
  gmgn-swap batch swaps.yaml
  gmgn-swap batch swaps.yaml --concurrency 2 --metrics-addr :9090 --report report.json`,
	Args: cobra.ExactArgs(1),
	Run:  runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "Maximum number of swaps in flight")
	batchCmd.Flags().StringVar(&batchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running (e.g. :9090)")
	batchCmd.Flags().StringVar(&batchReport, "report", "", "Write the execution journal as JSON to this file")
}

// batchEntry is one swap in a batch file. Unset fields fall back to defaults.
type batchEntry struct {
	Name     string   `yaml:"name"`
	Command  string   `yaml:"command"`
	Slippage *float64 `yaml:"slippage"`
	Mode     string   `yaml:"mode"`
	Fee      string   `yaml:"fee"`
	From     string   `yaml:"from"`
	Partner  string   `yaml:"partner"`
	AntiMEV  *bool    `yaml:"anti_mev"`
}

type batchFile struct {
	Defaults batchEntry   `yaml:"defaults"`
	Swaps    []batchEntry `yaml:"swaps"`
}

type batchJob struct {
	name   string
	params types.SwapParameters
}

// loadBatch reads and validates a batch file.
func loadBatch(path string, cfg *config.Config) ([]batchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var file batchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	if len(file.Swaps) == 0 {
		return nil, fmt.Errorf("batch file %s has no swaps", path)
	}

	jobs := make([]batchJob, 0, len(file.Swaps))
	for i, entry := range file.Swaps {
		if entry.Name == "" {
			entry.Name = fmt.Sprintf("swap-%d", i+1)
		}
		params, err := entry.params(file.Defaults, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name, err)
		}
		jobs = append(jobs, batchJob{name: entry.Name, params: params})
	}
	return jobs, nil
}

func (e batchEntry) params(defaults batchEntry, cfg *config.Config) (types.SwapParameters, error) {
	command, err := parser.ParseSwapCommand(e.Command)
	if err != nil {
		return types.SwapParameters{}, err
	}

	slippage := 5.0
	for _, v := range []*float64{defaults.Slippage, e.Slippage} {
		if v != nil {
			slippage = *v
		}
	}
	antiMEV := false
	for _, v := range []*bool{defaults.AntiMEV, e.AntiMEV} {
		if v != nil {
			antiMEV = *v
		}
	}

	mode, err := types.ParseSwapMode(firstNonEmpty(e.Mode, defaults.Mode, string(types.SwapModeExactIn)))
	if err != nil {
		return types.SwapParameters{}, err
	}

	fee, err := parseFee(firstNonEmpty(e.Fee, defaults.Fee), cfg.DefaultFee)
	if err != nil {
		return types.SwapParameters{}, err
	}

	params := types.SwapParameters{
		InputMint:   command.InputMint,
		OutputMint:  command.OutputMint,
		InAmount:    command.Amount,
		Slippage:    slippage,
		SwapMode:    mode,
		Fee:         fee,
		FromAddress: firstNonEmpty(e.From, defaults.From),
		Partner:     firstNonEmpty(e.Partner, defaults.Partner, cfg.Partner),
		AntiMEV:     antiMEV,
	}
	return params, params.WithDefaults("").Validate()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func runBatch(cmd *cobra.Command, args []string) {
	rt := setup(cmd)

	jobs, err := loadBatch(args[0], rt.cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	id, err := rt.loadIdentity()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := metrics.NewMetrics(prometheus.NewRegistry())
	if batchMetricsAddr != "" {
		srv := &http.Server{Addr: batchMetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.logger.Error().Err(err).Str("addr", batchMetricsAddr).Msg("metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		rt.logger.Info().Str("addr", batchMetricsAddr).Msg("serving metrics")
	}

	j := journal.New()
	swapper := swap.New(rt.newClient(id.String(), m), signer.New(id),
		swap.WithJournal(j),
		swap.WithMetrics(m),
		swap.WithLogger(rt.logger),
		swap.WithPolling(rt.cfg.PollInterval, rt.cfg.PollTimeout),
	)

	if !rt.jsonOutput {
		fmt.Printf("\nRunning %d swaps with concurrency %d as %s\n", len(jobs), batchConcurrency, color.CyanString(id.String()))
	}

	var g errgroup.Group
	g.SetLimit(max(batchConcurrency, 1))
	for _, job := range jobs {
		g.Go(func() error {
			// Failures are recorded in the journal; other swaps keep going.
			_, _ = swapper.SwapNamed(ctx, job.name, job.params)
			return nil
		})
	}
	_ = g.Wait()

	if batchReport != "" {
		if err := writeReport(j, batchReport); err != nil {
			printError(err)
		}
	}

	executions := j.List()
	if rt.jsonOutput {
		printJSON(executions)
	} else {
		displayBatchSummary(executions, j.Summary())
	}

	if len(j.ListByStatus(journal.StatusSuccess)) != len(executions) {
		os.Exit(1)
	}
}

func writeReport(j *journal.Journal, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()
	return j.Export(f)
}

func displayBatchSummary(executions []journal.Execution, counts map[journal.Status]int) {
	fmt.Println("\n" + strings.Repeat("=", 120))
	color.Green("                                              BATCH SUMMARY")
	fmt.Println(strings.Repeat("=", 120))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nNAME\tIN\tOUT\tSTATUS\tTX HASH\tDURATION\tERROR")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, e := range executions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Label, e.InAmount, e.OutAmount, executionStatusColor(e.Status), e.TxHash,
			e.Duration().Round(time.Millisecond), truncateText(e.Error, 40))
	}

	w.Flush()

	fmt.Printf("\n  %d swaps: %s success, %s failed, %s expired, %s error\n", len(executions),
		color.GreenString("%d", counts[journal.StatusSuccess]),
		color.RedString("%d", counts[journal.StatusFailed]),
		color.YellowString("%d", counts[journal.StatusExpired]),
		color.RedString("%d", counts[journal.StatusError]))
	fmt.Println("\n" + strings.Repeat("=", 120) + "\n")
}

func executionStatusColor(status journal.Status) string {
	switch status {
	case journal.StatusSuccess:
		return color.GreenString(string(status))
	case journal.StatusFailed, journal.StatusError:
		return color.RedString(string(status))
	case journal.StatusExpired:
		return color.YellowString(string(status))
	default:
		return string(status)
	}
}

// truncateText shortens s to at most n runes.
func truncateText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
