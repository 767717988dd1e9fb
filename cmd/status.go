package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gmgn-swap/pkg/types"
)

var (
	watchStatus   bool
	statusHeight  int64
	watchInterval time.Duration
	watchTimeout  time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a submitted transaction",
	Long: `Check whether a submitted swap transaction succeeded, failed or expired.

--height is the last valid block height returned with the quote.

Examples:
  gmgn-swap status 5h3k...9xQ --height 312345678
  gmgn-swap status 5h3k...9xQ --height 312345678 --watch
  gmgn-swap status 5h3k...9xQ --height 312345678 --watch --interval 1s --timeout 2m`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Int64Var(&statusHeight, "height", 0, "Last valid block height of the transaction (required)")
	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Poll until the transaction reaches a final state")
	statusCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Polling interval when watching (default from config)")
	statusCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Give up watching after this long (default from config)")
	_ = statusCmd.MarkFlagRequired("height")
}

func runStatus(cmd *cobra.Command, args []string) {
	rt := setup(cmd)
	hash := args[0]
	gmgn := rt.newClient("", nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		status *types.TxStatus
		err    error
	)
	if watchStatus {
		interval, timeout := rt.cfg.PollInterval, rt.cfg.PollTimeout
		if watchInterval > 0 {
			interval = watchInterval
		}
		if watchTimeout > 0 {
			timeout = watchTimeout
		}
		if !rt.jsonOutput {
			fmt.Printf("\nWatching transaction %s\n", color.CyanString(hash))
			fmt.Printf("Checking every %s for up to %s. Press Ctrl+C to stop.\n", interval, timeout)
		}
		s := newSpinner("Waiting for a final status...")
		if !rt.jsonOutput {
			s.Start()
		}
		status, err = gmgn.WaitTxStatus(ctx, hash, statusHeight, interval, timeout)
		if !rt.jsonOutput {
			s.Stop()
		}
	} else {
		s := newSpinner("Checking transaction status...")
		if !rt.jsonOutput {
			s.Start()
		}
		status, err = gmgn.GetTxStatus(ctx, hash, statusHeight)
		if !rt.jsonOutput {
			s.Stop()
		}
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if rt.jsonOutput {
		printJSON(map[string]any{
			"hash":      hash,
			"state":     status.State(),
			"tx_status": status,
		})
		return
	}
	displayStatus(status, hash)
}

func displayStatus(status *types.TxStatus, hash string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Transaction: %s\n", color.CyanString(hash))
	fmt.Printf("  Status:      %s\n", coloredState(status.State()))
	if len(status.ErrCode) > 0 && string(status.ErrCode) != "null" {
		fmt.Printf("  Error Code:  %s\n", string(status.ErrCode))
	}
	if len(status.Err) > 0 && string(status.Err) != "null" {
		fmt.Printf("  Error:       %s\n", color.RedString(string(status.Err)))
	}
	if !status.Terminal() {
		fmt.Println("\n  The transaction has not landed yet. Use --watch to wait for it.")
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
