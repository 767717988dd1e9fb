package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"gmgn-swap/pkg/types"
)

// Token is a well-known SPL token
type Token struct {
	Symbol   string
	Mint     string
	Decimals int32
}

var knownTokens = map[string]Token{
	"SOL":  {Symbol: "SOL", Mint: "So11111111111111111111111111111111111111112", Decimals: 9},
	"USDC": {Symbol: "USDC", Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
	"USDT": {Symbol: "USDT", Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
}

var commandPattern = regexp.MustCompile(`(?i)^(?:swap\s+)?(\d+(?:\.\d+)?)\s+(\S+)\s+to\s+(\S+)$`)

// SwapCommand is a parsed "<amount> <input> to <output>" command.
type SwapCommand struct {
	// Amount is the integer amount in the smallest unit of the input token.
	Amount      string
	InputMint   string
	OutputMint  string
	InputLabel  string
	OutputLabel string
}

// ParseSwapCommand parses a swap command.
// Examples:
//   - "swap 0.5 SOL to USDC"
//   - "10000000 So11111111111111111111111111111111111111112 to USDC"
//
// Decimal amounts are accepted for known symbols and converted to the
// smallest unit. Amounts for raw mint addresses must already be integers.
func ParseSwapCommand(command string) (*SwapCommand, error) {
	matches := commandPattern.FindStringSubmatch(strings.TrimSpace(command))
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 0.1 SOL to USDC')")
	}

	input, err := ResolveToken(matches[2])
	if err != nil {
		return nil, err
	}
	output, err := ResolveToken(matches[3])
	if err != nil {
		return nil, err
	}
	if input.Mint == output.Mint {
		return nil, &types.InvalidArgumentError{Field: "output_mint", Value: output.Mint, Reason: "must differ from the input token"}
	}

	amount, err := ToSmallestUnit(matches[1], input)
	if err != nil {
		return nil, err
	}

	return &SwapCommand{
		Amount:      amount,
		InputMint:   input.Mint,
		OutputMint:  output.Mint,
		InputLabel:  input.label(),
		OutputLabel: output.label(),
	}, nil
}

// ResolveToken maps a symbol to its mint, or validates a mint address.
// Unknown mints have Decimals set to -1.
func ResolveToken(s string) (Token, error) {
	symbol := NormalizeTokenSymbol(s)
	if token, ok := knownTokens[symbol]; ok {
		return token, nil
	}

	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(s))
	if err != nil {
		return Token{}, &types.InvalidArgumentError{Field: "token", Value: s, Reason: "unknown symbol and not a valid mint address"}
	}
	mint := pk.String()
	for _, token := range knownTokens {
		if token.Mint == mint {
			return token, nil
		}
	}
	return Token{Mint: mint, Decimals: -1}, nil
}

// ToSmallestUnit converts amount to an integer string in the token's smallest unit.
func ToSmallestUnit(amount string, token Token) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", &types.InvalidArgumentError{Field: "amount", Value: amount, Reason: "not a number"}
	}
	if token.Decimals >= 0 {
		d = d.Shift(token.Decimals)
	}
	if !d.IsInteger() {
		reason := "must be an integer amount in the smallest unit for unknown tokens"
		if token.Decimals >= 0 {
			reason = fmt.Sprintf("%s supports at most %d decimals", token.Symbol, token.Decimals)
		}
		return "", &types.InvalidArgumentError{Field: "amount", Value: amount, Reason: reason}
	}
	if !d.IsPositive() {
		return "", &types.InvalidArgumentError{Field: "amount", Value: amount, Reason: "must be positive"}
	}
	return d.BigInt().String(), nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	aliases := map[string]string{
		"WSOL": "SOL",
	}
	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}
	return symbol
}

func (t Token) label() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Mint
}
