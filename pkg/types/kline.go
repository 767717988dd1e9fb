package types

import "encoding/json"

// Network identifies the chain a kline request targets
type Network string

const (
	NetworkSolana   Network = "sol"
	NetworkEthereum Network = "eth"
)

// Resolution is the candle width
type Resolution string

const (
	Resolution1m  Resolution = "1m"
	Resolution5m  Resolution = "5m"
	Resolution15m Resolution = "15m"
	Resolution1h  Resolution = "1h"
	Resolution4h  Resolution = "4h"
	Resolution12h Resolution = "12h"
	Resolution1d  Resolution = "1d"
)

// Valid reports whether n is a supported network
func (n Network) Valid() bool {
	return n == NetworkSolana || n == NetworkEthereum
}

// Valid reports whether r is a supported resolution
func (r Resolution) Valid() bool {
	switch r {
	case Resolution1m, Resolution5m, Resolution15m, Resolution1h, Resolution4h, Resolution12h, Resolution1d:
		return true
	}
	return false
}

// Kline is a single price candle. The API sends values either as numbers or
// as numeric strings; json.Number accepts both.
type Kline struct {
	Open   json.Number `json:"open"`
	Close  json.Number `json:"close"`
	High   json.Number `json:"high"`
	Low    json.Number `json:"low"`
	Time   json.Number `json:"time"`
	Volume json.Number `json:"volume"`
}
