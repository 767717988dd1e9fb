package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"

	"gmgn-swap/pkg/gateway"
	"gmgn-swap/pkg/types"
)

// KlineRequest selects a candle range for one token.
type KlineRequest struct {
	Network    types.Network
	Token      string
	Resolution types.Resolution
	From       time.Time
	To         time.Time
}

// Validate checks the request and returns it with the token in canonical
// form for its network.
func (r KlineRequest) Validate() (KlineRequest, error) {
	if !r.Network.Valid() {
		return r, &types.InvalidArgumentError{Field: "network", Value: string(r.Network), Reason: "expected sol or eth"}
	}
	if !r.Resolution.Valid() {
		return r, &types.InvalidArgumentError{Field: "resolution", Value: string(r.Resolution), Reason: "unsupported resolution"}
	}
	if r.To.Before(r.From) {
		return r, &types.InvalidArgumentError{Field: "to", Value: r.To.Format(time.RFC3339), Reason: "must not be before from"}
	}

	token, err := NormalizeToken(r.Network, r.Token)
	if err != nil {
		return r, err
	}
	r.Token = token
	return r, nil
}

// NormalizeToken validates a token address for network. Ethereum addresses
// are lowercased, which is how the open API keys its eth paths.
func NormalizeToken(network types.Network, token string) (string, error) {
	switch network {
	case types.NetworkSolana:
		pk, err := solana.PublicKeyFromBase58(token)
		if err != nil {
			return "", &types.InvalidArgumentError{Field: "token", Value: token, Reason: "not a Solana address"}
		}
		return pk.String(), nil
	case types.NetworkEthereum:
		if !common.IsHexAddress(token) {
			return "", &types.InvalidArgumentError{Field: "token", Value: token, Reason: "not an Ethereum address"}
		}
		return strings.ToLower(token), nil
	}
	return "", &types.InvalidArgumentError{Field: "network", Value: string(network), Reason: "expected sol or eth"}
}

// GetKlines fetches candles for a token from the open API.
func (c *GMGNClient) GetKlines(ctx context.Context, req KlineRequest) ([]types.Kline, error) {
	req, err := req.Validate()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("resolution", string(req.Resolution))
	q.Set("from", strconv.FormatInt(req.From.Unix(), 10))
	q.Set("to", strconv.FormatInt(req.To.Unix(), 10))

	path := fmt.Sprintf("%s/%s/%s", pathKline, req.Network, url.PathEscape(req.Token))
	raw, err := gateway.Get[json.RawMessage](ctx, c.kline, path, q)
	if err != nil {
		return nil, fmt.Errorf("get klines: %w", err)
	}
	return decodeKlines(raw)
}

// decodeKlines accepts either a bare array or an object wrapping it in "list".
func decodeKlines(raw json.RawMessage) ([]types.Kline, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var klines []types.Kline
	if err := json.Unmarshal(raw, &klines); err == nil {
		return klines, nil
	}

	var wrapped struct {
		List []types.Kline `json:"list"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}
	return wrapped.List, nil
}
