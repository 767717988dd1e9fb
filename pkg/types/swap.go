package types

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SwapMode selects which side of the swap amount is fixed
type SwapMode string

const (
	SwapModeExactIn  SwapMode = "ExactIn"
	SwapModeExactOut SwapMode = "ExactOut"
)

// Fee bounds in SOL.
var (
	MaxFee        = decimal.NewFromInt(5)
	MinAntiMEVFee = decimal.RequireFromString("0.002")
	DefaultFee    = decimal.RequireFromString("0.00001")
)

// Valid reports whether m is a mode the router understands
func (m SwapMode) Valid() bool {
	return m == SwapModeExactIn || m == SwapModeExactOut
}

// ParseSwapMode accepts the router spelling ("ExactIn") as well as
// the CLI spellings ("exact-in", "exact_in", "in").
func ParseSwapMode(s string) (SwapMode, error) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s))) {
	case "exactin", "in":
		return SwapModeExactIn, nil
	case "exactout", "out":
		return SwapModeExactOut, nil
	}
	return "", &InvalidArgumentError{Field: "swap_mode", Value: s, Reason: "expected ExactIn or ExactOut"}
}

// SwapParameters describes a single swap request
type SwapParameters struct {
	InputMint  string
	OutputMint string
	// InAmount is an integer amount in the smallest unit of the input token
	// (lamports for SOL).
	InAmount string
	// Slippage is a percentage, 10 means 10%.
	Slippage float64
	SwapMode SwapMode
	// Fee is the priority fee plus node tip budget in SOL. Zero is treated
	// as unset and replaced with DefaultFee by WithDefaults.
	Fee decimal.Decimal
	// FromAddress defaults to the signer address when empty.
	FromAddress string
	Partner     string
	AntiMEV     bool
}

// WithDefaults fills the sender address, fee and mode when they are unset.
// A zero fee counts as unset.
func (p SwapParameters) WithDefaults(signerAddress string) SwapParameters {
	if p.FromAddress == "" {
		p.FromAddress = signerAddress
	}
	if p.Fee.IsZero() {
		p.Fee = DefaultFee
	}
	if p.SwapMode == "" {
		p.SwapMode = SwapModeExactIn
	}
	return p
}

// Validate checks the parameters without touching the network.
func (p SwapParameters) Validate() error {
	if p.Fee.GreaterThan(MaxFee) {
		return &InvalidArgumentError{Field: "fee", Value: p.Fee.String(), Reason: "must not exceed 5 SOL"}
	}
	if p.Fee.IsNegative() {
		return &InvalidArgumentError{Field: "fee", Value: p.Fee.String(), Reason: "must not be negative"}
	}
	if p.AntiMEV && p.Fee.LessThan(MinAntiMEVFee) {
		return &InvalidArgumentError{Field: "fee", Value: p.Fee.String(), Reason: "anti-MEV submission requires at least 0.002 SOL"}
	}
	if strings.TrimSpace(p.InputMint) == "" {
		return &InvalidArgumentError{Field: "input_mint", Reason: "is required"}
	}
	if strings.TrimSpace(p.OutputMint) == "" {
		return &InvalidArgumentError{Field: "output_mint", Reason: "is required"}
	}
	amount, ok := new(big.Int).SetString(p.InAmount, 10)
	if !ok || amount.Sign() <= 0 {
		return &InvalidArgumentError{Field: "in_amount", Value: p.InAmount, Reason: "must be a positive integer in the smallest unit"}
	}
	if math.IsNaN(p.Slippage) || p.Slippage < 0 || p.Slippage > 100 {
		return &InvalidArgumentError{Field: "slippage", Value: strconv.FormatFloat(p.Slippage, 'f', -1, 64), Reason: "must be between 0 and 100"}
	}
	if !p.SwapMode.Valid() {
		return &InvalidArgumentError{Field: "swap_mode", Value: string(p.SwapMode), Reason: "expected ExactIn or ExactOut"}
	}
	return nil
}
