// Package client implements the GMGN Solana trading API: swap routes,
// transaction submission, status polling and token klines.
package client

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gmgn-swap/pkg/gateway"
)

// Default service endpoints.
const (
	DefaultRouterURL = "https://gmgn.ai/defi/router/v1"
	DefaultKlineURL  = "https://www.gmgn.cc"
)

// Router endpoint paths.
const (
	pathSwapRoute   = "sol/tx/get_swap_route"
	pathSubmit      = "sol/tx/submit_signed_transaction"
	pathSubmitRelay = "sol/tx/submit_tx_anti_mev_mode"
	pathTxStatus    = "sol/tx/get_transaction_status"
	pathKline       = "defi/quotation/v1/tokens/kline"
)

// StatusObserver is notified of every status query made while waiting for a
// transaction. result is "pending", "terminal" or "error".
type StatusObserver interface {
	ObserveStatusQuery(result string)
}

type noopObserver struct{}

func (noopObserver) ObserveStatusQuery(string) {}

// GMGNClient talks to the GMGN router and open API.
type GMGNClient struct {
	router   *gateway.Client
	kline    *gateway.Client
	address  string
	logger   zerolog.Logger
	observer StatusObserver
}

// Option configures GMGNClient.
type Option func(*GMGNClient)

// WithKlineGateway sets the gateway used for kline requests.
func WithKlineGateway(g *gateway.Client) Option {
	return func(c *GMGNClient) {
		c.kline = g
	}
}

// WithSignerAddress sets the address used when a request omits from_address.
func WithSignerAddress(address string) Option {
	return func(c *GMGNClient) {
		c.address = address
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *GMGNClient) {
		c.logger = logger
	}
}

// WithStatusObserver sets the hook counting status queries.
func WithStatusObserver(o StatusObserver) Option {
	return func(c *GMGNClient) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewGMGNClient creates a client on top of a router gateway. Without
// WithKlineGateway kline requests go to DefaultKlineURL.
func NewGMGNClient(router *gateway.Client, opts ...Option) *GMGNClient {
	c := &GMGNClient{
		router:   router,
		logger:   log.Logger,
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.kline == nil {
		c.kline = gateway.New(DefaultKlineURL, gateway.WithLogger(c.logger))
	}
	return c
}

// SignerAddress returns the default from_address.
func (c *GMGNClient) SignerAddress() string {
	return c.address
}
