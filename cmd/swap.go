package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"gmgn-swap/pkg/client"
	"gmgn-swap/pkg/parser"
	"gmgn-swap/pkg/signer"
	"gmgn-swap/pkg/swap"
	"gmgn-swap/pkg/types"
)

// swapFlags are shared by the swap and quote commands.
type swapFlags struct {
	slippage float64
	mode     string
	fee      string
	from     string
	partner  string
	antiMEV  bool
}

var (
	swapOpts     swapFlags
	pollInterval time.Duration
	pollTimeout  time.Duration
	noConfirm    bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <input-token> to <output-token>",
	Short: "Swap tokens and wait for the transaction to settle",
	Long: `Quote a swap, sign the transaction locally and submit it.

Tokens are SOL, USDC, USDT or any SPL mint address. Amounts for known symbols
are in whole tokens (0.5 SOL); amounts for raw mints are in the smallest unit.

Examples:
  gmgn-swap swap 0.01 SOL to USDC
  gmgn-swap swap 0.5 SOL to HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC --slippage 10
  gmgn-swap swap 25 USDC to SOL --anti-mev --fee 0.003 --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	addSwapFlags(swapCmd, &swapOpts)
	swapCmd.Flags().DurationVar(&pollInterval, "interval", 0, "Status polling interval (default from config)")
	swapCmd.Flags().DurationVar(&pollTimeout, "timeout", 0, "Status polling timeout (default from config)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func addSwapFlags(cmd *cobra.Command, f *swapFlags) {
	cmd.Flags().Float64Var(&f.slippage, "slippage", 5, "Slippage tolerance in percent (10 = 10%)")
	cmd.Flags().StringVar(&f.mode, "mode", string(types.SwapModeExactIn), "Swap mode: ExactIn or ExactOut")
	cmd.Flags().StringVar(&f.fee, "fee", "", "Priority fee and tip budget in SOL (default from config)")
	cmd.Flags().StringVar(&f.from, "from", "", "Sender address (defaults to the signer address)")
	cmd.Flags().StringVar(&f.partner, "partner", "", "Partner identifier (default from config)")
	cmd.Flags().BoolVar(&f.antiMEV, "anti-mev", false, "Submit through the anti-MEV relay (fee must be at least 0.002 SOL)")
}

// buildParams turns the command words and flags into swap parameters.
func buildParams(args []string, f swapFlags, rt *runtime) (types.SwapParameters, *parser.SwapCommand, error) {
	command, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		return types.SwapParameters{}, nil, err
	}

	mode, err := types.ParseSwapMode(f.mode)
	if err != nil {
		return types.SwapParameters{}, nil, err
	}

	fee, err := parseFee(f.fee, rt.cfg.DefaultFee)
	if err != nil {
		return types.SwapParameters{}, nil, err
	}

	partner := rt.cfg.Partner
	if f.partner != "" {
		partner = f.partner
	}

	params := types.SwapParameters{
		InputMint:   command.InputMint,
		OutputMint:  command.OutputMint,
		InAmount:    command.Amount,
		Slippage:    f.slippage,
		SwapMode:    mode,
		Fee:         fee,
		FromAddress: f.from,
		Partner:     partner,
		AntiMEV:     f.antiMEV,
	}
	return params, command, params.WithDefaults("").Validate()
}

// parseFee reads a fee flag in SOL. An empty value selects fallback. Zero is
// rejected because the library would silently replace it with the default.
func parseFee(s string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return fallback, nil
	}
	fee, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, &types.InvalidArgumentError{Field: "fee", Value: s, Reason: "not a number"}
	}
	if fee.IsZero() {
		return decimal.Decimal{}, &types.InvalidArgumentError{Field: "fee", Value: s, Reason: "must be positive, omit it to use the default"}
	}
	return fee, nil
}

func runSwap(cmd *cobra.Command, args []string) {
	rt := setup(cmd)

	params, command, err := buildParams(args, swapOpts, rt)
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

	gmgn := rt.newClient(id.String(), nil)

	// Show a preview quote before committing; the swap itself fetches a fresh route.
	if !noConfirm && !rt.jsonOutput {
		s := newSpinner("Fetching quote...")
		s.Start()
		preview, err := gmgn.GetSwapRoute(ctx, params)
		s.Stop()
		if err != nil {
			printError(err)
			os.Exit(1)
		}

		displayQuote(preview, command, params)
		if !confirm("Proceed with swap?") {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	interval, timeout := rt.cfg.PollInterval, rt.cfg.PollTimeout
	if pollInterval > 0 {
		interval = pollInterval
	}
	if pollTimeout > 0 {
		timeout = pollTimeout
	}
	swapper := swap.New(gmgn, signer.New(id), swap.WithLogger(rt.logger), swap.WithPolling(interval, timeout))

	s := newSpinner("Swapping...")
	if !rt.jsonOutput {
		s.Start()
	}
	res, err := swapper.Swap(ctx, params)
	if !rt.jsonOutput {
		s.Stop()
	}

	if rt.jsonOutput {
		printJSON(swapOutput(res, err))
		if err != nil {
			os.Exit(1)
		}
		return
	}

	displayResult(res, command)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func swapOutput(res *swap.Result, err error) map[string]any {
	output := map[string]any{}
	if res != nil {
		if res.Quote != nil {
			output["quote"] = res.Quote.Quote
			output["last_valid_block_height"] = res.Quote.RawTx.LastValidBlockHeight
		}
		if res.Receipt != nil {
			output["tx_hash"] = res.Receipt.TxHash()
			output["anti_mev"] = res.Receipt.IsRelay()
			if res.Receipt.Relay != nil {
				output["bundle_id"] = res.Receipt.Relay.BundleID
			}
		}
		if res.Status != nil {
			output["status"] = res.Status.State()
			output["tx_status"] = res.Status
		}
	}
	if err != nil {
		output["error"] = err.Error()
	}
	return output
}

func displayQuote(route *types.SwapRoute, command *parser.SwapCommand, params types.SwapParameters) {
	q := route.Quote
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:              %s %s\n", q.InAmount, color.YellowString(command.InputLabel))
	fmt.Printf("  To:                ~%s %s\n", q.OutAmount, color.YellowString(command.OutputLabel))
	fmt.Printf("  Minimum Received:  %s\n", q.OtherAmountThreshold)
	fmt.Printf("  Price Impact:      %s%%\n", q.PriceImpactPct)
	fmt.Printf("  Slippage:          %.2f%%\n", float64(q.SlippageBps)/100)
	fmt.Printf("  Fee Budget:        %s SOL\n", params.Fee)
	if len(q.RoutePlan) > 0 {
		labels := make([]string, 0, len(q.RoutePlan))
		for _, leg := range q.RoutePlan {
			labels = append(labels, fmt.Sprintf("%s (%d%%)", leg.SwapInfo.Label, leg.Percent))
		}
		fmt.Printf("  Route:             %s\n", strings.Join(labels, " -> "))
	}
	if params.AntiMEV {
		fmt.Printf("  Submission:        %s\n", color.CyanString("anti-MEV relay"))
	}
	fmt.Println("\n  Amounts are in the smallest unit of each token.")
	fmt.Println("\n" + strings.Repeat("=", 60))
}

func displayResult(res *swap.Result, command *parser.SwapCommand) {
	if res == nil || res.Receipt == nil {
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP RESULT")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Pair:              %s -> %s\n", command.InputLabel, command.OutputLabel)
	fmt.Printf("  Transaction:       %s\n", color.CyanString(res.Receipt.TxHash()))
	if res.Receipt.Relay != nil {
		fmt.Printf("  Bundle:            %s\n", res.Receipt.Relay.BundleID)
	}
	if res.Status != nil {
		fmt.Printf("  Status:            %s\n", coloredState(res.Status.State()))
		if len(res.Status.Err) > 0 && string(res.Status.Err) != "null" {
			fmt.Printf("  Error:             %s\n", string(res.Status.Err))
		}
	} else if res.Quote != nil {
		fmt.Println("\n  The transaction was submitted but its final status is unknown. Check it with:")
		color.Cyan("  gmgn-swap status %s --height %d\n", res.Receipt.TxHash(), res.Quote.RawTx.LastValidBlockHeight)
	}
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func coloredState(state types.TxState) string {
	switch state {
	case types.TxSuccess:
		return color.GreenString(string(state))
	case types.TxFailed:
		return color.RedString(string(state))
	case types.TxExpired:
		return color.YellowString(string(state) + " (resubmit with a fresh quote)")
	default:
		return color.HiBlackString(string(state))
	}
}

// GMGNClient is the production Router.
var _ swap.Router = (*client.GMGNClient)(nil)
