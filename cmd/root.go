package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gmgn-swap",
	Short: "A CLI for Solana token swaps through the GMGN router",
	Long: `gmgn-swap quotes a swap on the GMGN router, signs the returned transaction
locally with your key, submits it (optionally through the anti-MEV relay) and
waits until the transaction lands, fails or expires.

Examples:
  gmgn-swap swap 0.01 SOL to USDC
  gmgn-swap swap 0.5 SOL to USDC --anti-mev --fee 0.003
  gmgn-swap quote 10 USDC to SOL
  gmgn-swap status <tx-hash> --height 312345678 --watch
  gmgn-swap batch swaps.yaml --concurrency 4`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.gmgn-swap.yaml)")
}

func printError(err error) {
	fmt.Printf("\n%s %v\n\n", color.RedString("Error:"), err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", color.GreenString(message))
}
