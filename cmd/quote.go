package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var quoteOpts swapFlags

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <input-token> to <output-token>",
	Short: "Get a swap quote without signing or submitting",
	Long: `Fetch a route from the GMGN router. Nothing is signed or sent.

When no key is configured pass --from so the router knows the sender.

Examples:
  gmgn-swap quote 0.01 SOL to USDC
  gmgn-swap quote 100 USDC to SOL --slippage 1 --json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	addSwapFlags(quoteCmd, &quoteOpts)
}

func runQuote(cmd *cobra.Command, args []string) {
	rt := setup(cmd)

	params, command, err := buildParams(args, quoteOpts, rt)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	address := ""
	if params.FromAddress == "" && rt.cfg.HasKey() {
		id, err := rt.loadIdentity()
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		address = id.String()
	}
	gmgn := rt.newClient(address, nil)

	s := newSpinner("Fetching quote...")
	if !rt.jsonOutput {
		s.Start()
	}
	route, err := gmgn.GetSwapRoute(context.Background(), params)
	if !rt.jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if rt.jsonOutput {
		printJSON(route)
		return
	}
	displayQuote(route, command, params.WithDefaults(address))
}
