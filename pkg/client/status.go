package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"gmgn-swap/pkg/gateway"
	"gmgn-swap/pkg/types"
)

// Polling defaults. Solana produces a block roughly every 400ms.
const (
	DefaultPollInterval = 400 * time.Millisecond
	DefaultPollTimeout  = 60 * time.Second
)

// TimeoutError is returned when a transaction did not reach a terminal
// status before the deadline.
type TimeoutError struct {
	Hash    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction %s status not resolved after %s", e.Hash, e.Timeout)
}

// GetTxStatus queries the status of a submitted transaction once.
func (c *GMGNClient) GetTxStatus(ctx context.Context, hash string, lastValidHeight int64) (*types.TxStatus, error) {
	q := url.Values{}
	q.Set("hash", hash)
	q.Set("last_valid_height", strconv.FormatInt(lastValidHeight, 10))

	status, err := gateway.Get[types.TxStatus](ctx, c.router, pathTxStatus, q)
	if err != nil {
		return nil, fmt.Errorf("get transaction status: %w", err)
	}
	return &status, nil
}

// WaitTxStatus polls until the transaction is terminal or timeout elapses.
// Query errors are logged and polling continues. A zero interval or timeout
// selects the defaults.
func (c *GMGNClient) WaitTxStatus(ctx context.Context, hash string, lastValidHeight int64, interval, timeout time.Duration) (*types.TxStatus, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}

	logger := c.logger.With().Str("hash", hash).Logger()
	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for attempt := 1; time.Since(start) < timeout; attempt++ {
		status, err := c.GetTxStatus(ctx, hash, lastValidHeight)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.observer.ObserveStatusQuery("error")
			logger.Error().Err(err).Int("attempt", attempt).Msg("waiting for transaction status")
		case status.Terminal():
			c.observer.ObserveStatusQuery("terminal")
			logger.Info().Str("state", string(status.State())).Int("attempt", attempt).Msg("transaction resolved")
			return status, nil
		default:
			c.observer.ObserveStatusQuery("pending")
			logger.Debug().Int("attempt", attempt).Msg("transaction pending")
		}

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, &TimeoutError{Hash: hash, Timeout: timeout}
}
