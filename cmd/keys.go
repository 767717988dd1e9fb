package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gmgn-swap/pkg/credentials"
)

var (
	encryptKeyFile string
	encryptAESKey  string
	encryptOut     string
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address of the configured signing key",
	Args:  cobra.NoArgs,
	Run:   runAddress,
}

var encryptKeyCmd = &cobra.Command{
	Use:   "encrypt-key",
	Short: "Encrypt a private key for storage at rest",
	Long: `Encrypt a base58 Solana private key with AES-256-CBC.

The result is base64(IV || ciphertext) and can be used as private_key or the
content of private_key_file together with aes_key. When no AES key is given a
random one is generated and printed once.

Examples:
  gmgn-swap encrypt-key --key-file ~/.config/solana/id.json --out ~/.gmgn-key
  gmgn-swap encrypt-key --aes-key <64-hex-chars>`,
	Args: cobra.NoArgs,
	Run:  runEncryptKey,
}

func init() {
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(encryptKeyCmd)

	encryptKeyCmd.Flags().StringVar(&encryptKeyFile, "key-file", "", "File holding the plaintext key (prompted when empty)")
	encryptKeyCmd.Flags().StringVar(&encryptAESKey, "aes-key", "", "AES-256 key as 64 hex characters (generated when empty)")
	encryptKeyCmd.Flags().StringVar(&encryptOut, "out", "", "Write the encrypted key to this file instead of stdout")
}

func runAddress(cmd *cobra.Command, args []string) {
	rt := setup(cmd)

	id, err := rt.loadIdentity()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if rt.jsonOutput {
		printJSON(id)
		return
	}
	fmt.Println(id.String())
}

func runEncryptKey(cmd *cobra.Command, args []string) {
	plaintext, err := readPlainKey()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// Refuse to encrypt something that would not unlock later.
	id, err := credentials.Unlock(plaintext, "")
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	aesKey := encryptAESKey
	generated := false
	if aesKey == "" {
		aesKey, err = randomAESKey()
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		generated = true
	}

	secret, err := credentials.Encrypt(plaintext, aesKey)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if encryptOut != "" {
		if err := os.WriteFile(encryptOut, []byte(secret+"\n"), 0o600); err != nil {
			printError(errors.Wrap(err, "write encrypted key"))
			os.Exit(1)
		}
		printSuccess(fmt.Sprintf("Encrypted key for %s written to %s", id.String(), encryptOut))
	} else {
		fmt.Println(secret)
	}

	if generated {
		fmt.Fprintln(os.Stderr, color.YellowString("\nGenerated AES key (store it safely, it is not shown again):"))
		fmt.Fprintln(os.Stderr, aesKey)
	}
}

func readPlainKey() (string, error) {
	if encryptKeyFile != "" {
		return credentials.ReadSecretFile(encryptKeyFile)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no --key-file given and stdin is not a terminal")
	}
	return promptPassword("Private key (base58): ")
}

func randomAESKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Wrap(err, "generate AES key")
	}
	return hex.EncodeToString(key), nil
}
