package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gmgn-swap/config"
	"gmgn-swap/pkg/client"
	"gmgn-swap/pkg/credentials"
	"gmgn-swap/pkg/gateway"
	"gmgn-swap/pkg/logging"
)

// runtime is what every command needs after flags are parsed.
type runtime struct {
	cfg        *config.Config
	logger     zerolog.Logger
	verbose    bool
	jsonOutput bool
}

func setup(cmd *cobra.Command) *runtime {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	configFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.SetupLogger(logging.Config{
		Level:  level,
		Pretty: cfg.LogPretty && !jsonOutput,
	})

	return &runtime{cfg: cfg, logger: logger, verbose: verbose, jsonOutput: jsonOutput}
}

// newClient builds a GMGN client. observer may be nil.
func (rt *runtime) newClient(signerAddress string, observer client.StatusObserver) *client.GMGNClient {
	opts := []gateway.Option{
		gateway.WithTimeout(rt.cfg.HTTPTimeout),
		gateway.WithUserAgent(rt.cfg.UserAgent),
		gateway.WithLogger(rt.logger),
	}
	router := gateway.New(rt.cfg.BaseURL, opts...)
	kline := gateway.New(rt.cfg.KlineBaseURL, opts...)
	rt.logger.Debug().Str("router", router.BaseURL()).Str("kline", kline.BaseURL()).Msg("using endpoints")

	return client.NewGMGNClient(router,
		client.WithKlineGateway(kline),
		client.WithSignerAddress(signerAddress),
		client.WithLogger(rt.logger),
		client.WithStatusObserver(observer),
	)
}

// loadIdentity unlocks the configured key. Without a configured AES key the
// user is asked for one on a terminal; an empty answer means the key is
// stored in plain text.
func (rt *runtime) loadIdentity() (*credentials.Identity, error) {
	secret, err := rt.cfg.Secret()
	if err != nil {
		return nil, err
	}

	aesKey := rt.cfg.AESKey
	if aesKey == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		aesKey, err = promptPassword("AES-256 key for the encrypted private key (leave empty if not encrypted): ")
		if err != nil {
			return nil, err
		}
	}

	id, err := credentials.Unlock(secret, aesKey)
	if err != nil {
		return nil, errors.Wrap(err, "unlock private key")
	}
	rt.logger.Debug().Str("address", id.String()).Msg("signer unlocked")
	return id, nil
}

// promptPassword prompts for input without echoing it.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from terminal")
	}
	fmt.Fprintln(os.Stderr)

	return strings.TrimSpace(string(passwordBytes)), nil
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	return s
}

func printJSON(v any) {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(jsonData))
}

func confirm(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", question)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
