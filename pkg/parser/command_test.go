package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmgn-swap/pkg/types"
)

const (
	solMint  = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	helpMint = "HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC"
)

func TestParseSwapCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    SwapCommand
	}{
		{
			name:    "symbols with decimals",
			command: "swap 0.01 SOL to USDC",
			want:    SwapCommand{Amount: "10000000", InputMint: solMint, OutputMint: usdcMint, InputLabel: "SOL", OutputLabel: "USDC"},
		},
		{
			name:    "lowercase and alias",
			command: "  1.5 usdc TO wsol ",
			want:    SwapCommand{Amount: "1500000", InputMint: usdcMint, OutputMint: solMint, InputLabel: "USDC", OutputLabel: "SOL"},
		},
		{
			name:    "raw mint output",
			command: "0.1 SOL to " + helpMint,
			want:    SwapCommand{Amount: "100000000", InputMint: solMint, OutputMint: helpMint, InputLabel: "SOL", OutputLabel: helpMint},
		},
		{
			name:    "raw mint input takes integer amount",
			command: "250000 " + helpMint + " to SOL",
			want:    SwapCommand{Amount: "250000", InputMint: helpMint, OutputMint: solMint, InputLabel: helpMint, OutputLabel: "SOL"},
		},
		{
			name:    "known mint address resolves to symbol",
			command: "2 " + usdcMint + " to SOL",
			want:    SwapCommand{Amount: "2000000", InputMint: usdcMint, OutputMint: solMint, InputLabel: "USDC", OutputLabel: "SOL"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSwapCommand(tt.command)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseSwapCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		field   string
	}{
		{"unknown symbol", "1 DOGE to SOL", "token"},
		{"too many decimals", "0.0000000001 SOL to USDC", "amount"},
		{"fractional raw mint", "1.5 " + helpMint + " to SOL", "amount"},
		{"zero", "0 SOL to USDC", "amount"},
		{"same token", "1 SOL to WSOL", "output_mint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSwapCommand(tt.command)
			var argErr *types.InvalidArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.field, argErr.Field)
		})
	}

	for _, bad := range []string{"", "SOL to USDC", "1 SOL USDC", "-1 SOL to USDC", "swap 1 SOL to"} {
		_, err := ParseSwapCommand(bad)
		assert.Error(t, err, bad)
	}
}

func TestNormalizeTokenSymbol(t *testing.T) {
	assert.Equal(t, "SOL", NormalizeTokenSymbol(" wsol "))
	assert.Equal(t, "USDC", NormalizeTokenSymbol("usdc"))
	assert.Equal(t, "BONK", NormalizeTokenSymbol("Bonk"))
}
