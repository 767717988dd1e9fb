package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gmgn-swap/pkg/client"
	"gmgn-swap/pkg/types"
)

var (
	klineNetwork    string
	klineResolution string
	klineFrom       string
	klineTo         string
	klineSince      time.Duration
)

var klinesCmd = &cobra.Command{
	Use:   "klines <token-address>",
	Short: "Show price candles for a token",
	Long: `Fetch OHLCV candles for a Solana or Ethereum token from the GMGN open API.

--from and --to accept RFC3339 timestamps or unix seconds. Without them the
last --since of candles is shown.

Examples:
  gmgn-swap klines HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC
  gmgn-swap klines HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC --resolution 5m --since 2h
  gmgn-swap klines 0xdac17f958d2ee523a2206206994597c13d831ec7 --network eth --resolution 1d --since 720h`,
	Args: cobra.ExactArgs(1),
	Run:  runKlines,
}

func init() {
	rootCmd.AddCommand(klinesCmd)

	klinesCmd.Flags().StringVar(&klineNetwork, "network", string(types.NetworkSolana), "Network: sol or eth")
	klinesCmd.Flags().StringVar(&klineResolution, "resolution", string(types.Resolution1h), "Candle width: 1m, 5m, 15m, 1h, 4h, 12h or 1d")
	klinesCmd.Flags().StringVar(&klineFrom, "from", "", "Start time (RFC3339 or unix seconds)")
	klinesCmd.Flags().StringVar(&klineTo, "to", "", "End time (RFC3339 or unix seconds, default now)")
	klinesCmd.Flags().DurationVar(&klineSince, "since", 24*time.Hour, "Window length when --from is not set")
}

func runKlines(cmd *cobra.Command, args []string) {
	rt := setup(cmd)

	req, err := buildKlineRequest(args[0], time.Now())
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	gmgn := rt.newClient("", nil)

	s := newSpinner("Fetching candles...")
	if !rt.jsonOutput {
		s.Start()
	}
	klines, err := gmgn.GetKlines(context.Background(), req)
	if !rt.jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if rt.jsonOutput {
		printJSON(klines)
		return
	}
	displayKlines(req, klines)
}

func buildKlineRequest(token string, now time.Time) (client.KlineRequest, error) {
	to := now
	if klineTo != "" {
		t, err := parseTime(klineTo)
		if err != nil {
			return client.KlineRequest{}, err
		}
		to = t
	}
	from := to.Add(-klineSince)
	if klineFrom != "" {
		t, err := parseTime(klineFrom)
		if err != nil {
			return client.KlineRequest{}, err
		}
		from = t
	}

	return client.KlineRequest{
		Network:    types.Network(strings.ToLower(klineNetwork)),
		Token:      token,
		Resolution: types.Resolution(strings.ToLower(klineResolution)),
		From:       from,
		To:         to,
	}, nil
}

// parseTime accepts RFC3339 or unix seconds.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	return time.Time{}, &types.InvalidArgumentError{Field: "time", Value: s, Reason: "expected RFC3339 or unix seconds"}
}

func displayKlines(req client.KlineRequest, klines []types.Kline) {
	if len(klines) == 0 {
		color.Yellow("\nNo candles found for %s between %s and %s.\n",
			req.Token, req.From.Format(time.RFC3339), req.To.Format(time.RFC3339))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 100))
	color.Green("  %s %s candles (%s)", strings.ToUpper(string(req.Network)), req.Resolution, req.Token)
	fmt.Println(strings.Repeat("=", 100))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nTIME\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, k := range klines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			klineTime(k.Time), k.Open, k.High, k.Low, k.Close, k.Volume)
	}

	w.Flush()
	fmt.Println("\n" + strings.Repeat("=", 100) + "\n")
}

// klineTime renders the candle timestamp, which the API sends in milliseconds.
func klineTime(n json.Number) string {
	ms, err := n.Int64()
	if err != nil {
		return n.String()
	}
	if ms < 1e12 {
		ms *= 1000
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}
