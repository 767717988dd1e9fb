package client

import (
	"context"
	"fmt"

	"gmgn-swap/pkg/gateway"
	"gmgn-swap/pkg/types"
)

type submitRequest struct {
	SignedTx string `json:"signed_tx"`
}

type submitRelayRequest struct {
	SignedTx    string `json:"signed_tx"`
	FromAddress string `json:"from_address"`
}

// SubmitTx broadcasts a signed transaction through the public path.
func (c *GMGNClient) SubmitTx(ctx context.Context, signedTx string) (*types.SubmitTxResponse, error) {
	resp, err := gateway.Post[types.SubmitTxResponse](ctx, c.router, pathSubmit, submitRequest{SignedTx: signedTx})
	if err != nil {
		return nil, fmt.Errorf("submit transaction: %w", err)
	}
	c.logger.Info().Str("hash", resp.Hash).Msg("transaction submitted")
	return &resp, nil
}

// SubmitAntiMevTx sends a signed transaction through the anti-MEV relay.
// fromAddress defaults to the signer address.
func (c *GMGNClient) SubmitAntiMevTx(ctx context.Context, signedTx, fromAddress string) (*types.SubmitAntiMevTxResponse, error) {
	if fromAddress == "" {
		fromAddress = c.address
	}
	body := submitRelayRequest{SignedTx: signedTx, FromAddress: fromAddress}

	resp, err := gateway.Post[types.SubmitAntiMevTxResponse](ctx, c.router, pathSubmitRelay, body)
	if err != nil {
		return nil, fmt.Errorf("submit anti-MEV transaction: %w", err)
	}
	c.logger.Info().Str("hash", resp.TxHash).Str("bundle_id", resp.BundleID).Msg("transaction submitted to relay")
	return &resp, nil
}
