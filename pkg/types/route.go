package types

import "encoding/json"

// SwapInfo is a single hop of a route
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// RoutePlan is one leg of the routing plan with its share of the input
type RoutePlan struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
}

// Quote is the priced route returned by the router
type Quote struct {
	InputMint            string          `json:"inputMint"`
	InAmount             string          `json:"inAmount"`
	OutputMint           string          `json:"outputMint"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          int             `json:"slippageBps"`
	PlatformFee          json.RawMessage `json:"platformFee,omitempty"` // null on most routes
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            []RoutePlan     `json:"routePlan"`
	ContextSlot          int64           `json:"contextSlot"`
	TimeTaken            float64         `json:"timeTaken"`
}

// RawTx carries the unsigned transaction built for the quote
type RawTx struct {
	// SwapTransaction is the base64 encoded unsigned versioned transaction.
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      int64  `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports int64  `json:"prioritizationFeeLamports"`
	RecentBlockhash           string `json:"recentBlockhash"`
}

// SwapRoute is the router response for a swap route request
type SwapRoute struct {
	Quote Quote `json:"quote"`
	RawTx RawTx `json:"raw_tx"`
}
