package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gmgn-swap/pkg/gateway"
	"gmgn-swap/pkg/types"
)

const testSigner = "Ey3gNXXSay7uQVosBsTkXgLVRsNdwWbscV5tXSQAcPBs"

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveStatusQuery(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[result]++
}

func (o *countingObserver) get(result string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[result]
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *GMGNClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := gateway.New(srv.URL, gateway.WithTimeout(2*time.Second))
	opts = append([]Option{WithSignerAddress(testSigner), WithKlineGateway(g)}, opts...)
	return NewGMGNClient(g, opts...)
}

func writeData(w io.Writer, data string) {
	_, _ = io.WriteString(w, `{"code":0,"msg":"success","tid":"t","data":`+data+`}`)
}

func validParams() types.SwapParameters {
	return types.SwapParameters{
		InputMint:  "So11111111111111111111111111111111111111112",
		OutputMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		InAmount:   "10000000",
		Slippage:   10,
		SwapMode:   types.SwapModeExactIn,
		Fee:        decimal.RequireFromString("0.0001"),
	}
}

func TestSwapRouteRequestValues(t *testing.T) {
	p := validParams()
	p.FromAddress = testSigner

	v := NewSwapRouteRequest(p).Values()
	assert.Equal(t, "So11111111111111111111111111111111111111112", v.Get("token_in_address"))
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", v.Get("token_out_address"))
	assert.Equal(t, "10000000", v.Get("in_amount"))
	assert.Equal(t, "10", v.Get("slippage"))
	assert.Equal(t, "ExactIn", v.Get("swap_mode"))
	assert.Equal(t, "0.0001", v.Get("fee"))
	assert.Equal(t, testSigner, v.Get("from_address"))
	assert.NotContains(t, v, "is_anti_mev")
	assert.NotContains(t, v, "partner")

	p.AntiMEV = true
	p.Partner = "acme"
	v = NewSwapRouteRequest(p).Values()
	assert.Equal(t, "true", v.Get("is_anti_mev"))
	assert.Equal(t, "acme", v.Get("partner"))
}

func TestGetSwapRoute(t *testing.T) {
	var query map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+pathSwapRoute, r.URL.Path)
		query = r.URL.Query()
		writeData(w, `{
			"quote": {"inputMint":"A","inAmount":"10000000","outputMint":"B","outAmount":"42","slippageBps":1000,"routePlan":[{"swapInfo":{"ammKey":"k","label":"Raydium"},"percent":100}]},
			"raw_tx": {"swapTransaction":"AQID","lastValidBlockHeight":1234,"prioritizationFeeLamports":5000,"recentBlockhash":"hash"}
		}`)
	})

	route, err := c.GetSwapRoute(context.Background(), validParams())
	require.NoError(t, err)
	assert.Equal(t, "42", route.Quote.OutAmount)
	assert.Equal(t, 1000, route.Quote.SlippageBps)
	require.Len(t, route.Quote.RoutePlan, 1)
	assert.Equal(t, "Raydium", route.Quote.RoutePlan[0].SwapInfo.Label)
	assert.Equal(t, "AQID", route.RawTx.SwapTransaction)
	assert.Equal(t, int64(1234), route.RawTx.LastValidBlockHeight)

	assert.Equal(t, []string{testSigner}, query["from_address"], "from_address defaults to the signer")
	assert.NotContains(t, query, "is_anti_mev")
	assert.NotContains(t, query, "partner")
}

func TestGetSwapRouteDefaultFee(t *testing.T) {
	var fee string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fee = r.URL.Query().Get("fee")
		writeData(w, `{"quote":{},"raw_tx":{}}`)
	})

	p := validParams()
	p.Fee = decimal.Decimal{}
	_, err := c.GetSwapRoute(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "0.00001", fee)
}

func TestGetSwapRouteRejectsFeeAboveMaxWithoutRequest(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeData(w, `{}`)
	})

	rapid.Check(t, func(rt *rapid.T) {
		// thousandths of a SOL above the 5 SOL cap
		over := rapid.Int64Range(1, 1_000_000).Draw(rt, "over")
		p := validParams()
		p.Fee = types.MaxFee.Add(decimal.New(over, -3))
		p.AntiMEV = rapid.Bool().Draw(rt, "antiMEV")

		_, err := c.GetSwapRoute(context.Background(), p)
		var argErr *types.InvalidArgumentError
		if !assert.ErrorAs(rt, err, &argErr) {
			return
		}
		assert.Equal(rt, "fee", argErr.Field)
	})

	assert.Zero(t, requests.Load())
}

func TestGetSwapRouteAntiMEVFeeFloor(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeData(w, `{"quote":{},"raw_tx":{}}`)
	})

	p := validParams()
	p.AntiMEV = true
	p.Fee = decimal.RequireFromString("0.001")
	_, err := c.GetSwapRoute(context.Background(), p)
	var argErr *types.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Zero(t, requests.Load())

	p.Fee = types.MinAntiMEVFee
	_, err = c.GetSwapRoute(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestGetSwapRouteRemoteError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":40003,"msg":"route not found"}`)
	})

	_, err := c.GetSwapRoute(context.Background(), validParams())
	var rErr *gateway.RemoteError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, 40003, rErr.Code)
}

func TestSubmitTx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+pathSubmit, r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"signed_tx": "c2lnbmVk"}, body)
		writeData(w, `{"hash":"H"}`)
	})

	resp, err := c.SubmitTx(context.Background(), "c2lnbmVk")
	require.NoError(t, err)
	assert.Equal(t, "H", resp.Hash)
}

func TestSubmitAntiMevTx(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+pathSubmitRelay, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeData(w, `{"bundle_id":"b1","last_valid_block_number":99,"tx_hash":"TX"}`)
	})

	resp, err := c.SubmitAntiMevTx(context.Background(), "c2lnbmVk", "")
	require.NoError(t, err)
	assert.Equal(t, "TX", resp.TxHash)
	assert.Equal(t, "b1", resp.BundleID)
	assert.Equal(t, int64(99), resp.LastValidBlockNumber)
	assert.Equal(t, testSigner, body["from_address"])

	_, err = c.SubmitAntiMevTx(context.Background(), "c2lnbmVk", "Other")
	require.NoError(t, err)
	assert.Equal(t, "Other", body["from_address"])
}

func TestSubmitTxTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.SubmitTx(context.Background(), "x")
	var tErr *gateway.TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, http.StatusServiceUnavailable, tErr.StatusCode)
}

func TestGetTxStatusQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+pathTxStatus, r.URL.Path)
		assert.Equal(t, "H", r.URL.Query().Get("hash"))
		assert.Equal(t, "1234", r.URL.Query().Get("last_valid_height"))
		writeData(w, `{"success":false,"failed":true,"expired":false,"err":{"InstructionError":[2,{"Custom":6001}]},"err_code":"6001"}`)
	})

	status, err := c.GetTxStatus(context.Background(), "H", 1234)
	require.NoError(t, err)
	assert.Equal(t, types.TxFailed, status.State())
	assert.JSONEq(t, `"6001"`, string(status.ErrCode))
}

func TestWaitTxStatusResolvesOnThirdQuery(t *testing.T) {
	var calls atomic.Int32
	obs := &countingObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeData(w, `{"success":false,"failed":false,"expired":false}`)
			return
		}
		writeData(w, `{"success":true,"failed":false,"expired":false}`)
	}, WithStatusObserver(obs))

	status, err := c.WaitTxStatus(context.Background(), "H", 10, 10*time.Millisecond, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2, obs.get("pending"))
	assert.Equal(t, 1, obs.get("terminal"))
}

func TestWaitTxStatusToleratesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	obs := &countingObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			_, _ = io.WriteString(w, `{"code":500,"msg":"busy"}`)
		default:
			writeData(w, `{"success":false,"failed":false,"expired":true}`)
		}
	}, WithStatusObserver(obs))

	status, err := c.WaitTxStatus(context.Background(), "H", 10, 10*time.Millisecond, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, types.TxExpired, status.State())
	assert.Equal(t, 2, obs.get("error"))
}

func TestWaitTxStatusTimeout(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeData(w, `{"success":false,"failed":false,"expired":false}`)
	})

	start := time.Now()
	_, err := c.WaitTxStatus(context.Background(), "H", 10, 400*time.Millisecond, time.Second)
	elapsed := time.Since(start)

	var tErr *TimeoutError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "H", tErr.Hash)
	assert.Equal(t, time.Second, tErr.Timeout)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
	assert.LessOrEqual(t, calls.Load(), int32(3))
	assert.GreaterOrEqual(t, elapsed, time.Second)
}

func TestWaitTxStatusContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, `{"success":false,"failed":false,"expired":false}`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.WaitTxStatus(ctx, "H", 10, 20*time.Millisecond, time.Minute)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetKlines(t *testing.T) {
	var path string
	var query map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.Query()
		writeData(w, `[{"open":"1.5","close":2,"high":"3","low":"1","time":1715731200000,"volume":"100"}]`)
	})

	klines, err := c.GetKlines(context.Background(), KlineRequest{
		Network:    types.NetworkSolana,
		Token:      "HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC",
		Resolution: types.Resolution1h,
		From:       time.Unix(1715731200, 0),
		To:         time.Unix(1715734800, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "/defi/quotation/v1/tokens/kline/sol/HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC", path)
	assert.Equal(t, "1h", query["resolution"][0])
	assert.Equal(t, "1715731200", query["from"][0])
	assert.Equal(t, "1715734800", query["to"][0])
	require.Len(t, klines, 1)
	assert.Equal(t, "1.5", klines[0].Open.String())
	assert.Equal(t, "2", klines[0].Close.String())
}

func TestGetKlinesWrappedList(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeData(w, `{"list":[{"open":"1","close":"1","high":"1","low":"1","time":"1","volume":"0"}]}`)
	})

	klines, err := c.GetKlines(context.Background(), KlineRequest{
		Network:    types.NetworkEthereum,
		Token:      "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		Resolution: types.Resolution1d,
		From:       time.Unix(0, 0),
		To:         time.Unix(60, 0),
	})
	require.NoError(t, err)
	assert.Len(t, klines, 1)
	assert.Equal(t, "/defi/quotation/v1/tokens/kline/eth/0xdac17f958d2ee523a2206206994597c13d831ec7", path)
}

func TestNormalizeToken(t *testing.T) {
	for _, in := range []string{
		"0xdac17f958d2ee523a2206206994597c13d831ec7",
		"0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"0XDAC17F958D2EE523A2206206994597C13D831EC7",
	} {
		got, err := NormalizeToken(types.NetworkEthereum, in)
		require.NoError(t, err)
		assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", got)
	}

	got, err := NormalizeToken(types.NetworkSolana, "HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC")
	require.NoError(t, err)
	assert.Equal(t, "HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC", got)

	_, err = NormalizeToken(types.NetworkEthereum, "0x1234")
	var argErr *types.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)

	_, err = NormalizeToken(types.NetworkSolana, "0xdac17f958d2ee523a2206206994597c13d831ec7")
	require.ErrorAs(t, err, &argErr)

	_, err = NormalizeToken("btc", "x")
	require.ErrorAs(t, err, &argErr)
}

func TestKlineRequestValidate(t *testing.T) {
	base := KlineRequest{
		Network:    types.NetworkSolana,
		Token:      "So11111111111111111111111111111111111111112",
		Resolution: types.Resolution1h,
		From:       time.Unix(100, 0),
		To:         time.Unix(200, 0),
	}
	_, err := base.Validate()
	require.NoError(t, err)

	bad := base
	bad.Resolution = "2h"
	_, err = bad.Validate()
	assert.Error(t, err)

	bad = base
	bad.To = time.Unix(50, 0)
	_, err = bad.Validate()
	assert.Error(t, err)
}
