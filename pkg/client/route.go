package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"gmgn-swap/pkg/gateway"
	"gmgn-swap/pkg/types"
)

// SwapRouteRequest is the query sent to get_swap_route. Optional fields are
// only emitted when set.
type SwapRouteRequest struct {
	TokenInAddress  string
	TokenOutAddress string
	InAmount        string
	Slippage        float64
	SwapMode        types.SwapMode
	Fee             string
	FromAddress     string
	IsAntiMEV       bool
	Partner         string
}

// NewSwapRouteRequest converts validated parameters into a request.
func NewSwapRouteRequest(p types.SwapParameters) SwapRouteRequest {
	return SwapRouteRequest{
		TokenInAddress:  p.InputMint,
		TokenOutAddress: p.OutputMint,
		InAmount:        p.InAmount,
		Slippage:        p.Slippage,
		SwapMode:        p.SwapMode,
		Fee:             p.Fee.String(),
		FromAddress:     p.FromAddress,
		IsAntiMEV:       p.AntiMEV,
		Partner:         p.Partner,
	}
}

// Values encodes the request as query parameters.
func (r SwapRouteRequest) Values() url.Values {
	v := url.Values{}
	v.Set("token_in_address", r.TokenInAddress)
	v.Set("token_out_address", r.TokenOutAddress)
	v.Set("in_amount", r.InAmount)
	v.Set("slippage", strconv.FormatFloat(r.Slippage, 'f', -1, 64))
	v.Set("swap_mode", string(r.SwapMode))
	v.Set("fee", r.Fee)
	if r.FromAddress != "" {
		v.Set("from_address", r.FromAddress)
	}
	if r.IsAntiMEV {
		v.Set("is_anti_mev", "true")
	}
	if r.Partner != "" {
		v.Set("partner", r.Partner)
	}
	return v
}

// GetSwapRoute requests a quote and an unsigned transaction. Parameters are
// validated before any request is made.
func (c *GMGNClient) GetSwapRoute(ctx context.Context, params types.SwapParameters) (*types.SwapRoute, error) {
	params = params.WithDefaults(c.address)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	req := NewSwapRouteRequest(params)
	c.logger.Debug().
		Str("input", req.TokenInAddress).
		Str("output", req.TokenOutAddress).
		Str("amount", req.InAmount).
		Str("fee", req.Fee).
		Bool("anti_mev", req.IsAntiMEV).
		Msg("requesting swap route")

	route, err := gateway.Get[types.SwapRoute](ctx, c.router, pathSwapRoute, req.Values())
	if err != nil {
		return nil, fmt.Errorf("get swap route: %w", err)
	}
	return &route, nil
}
