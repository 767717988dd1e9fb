// Package swap runs the full swap lifecycle: quote, local signing,
// submission and status polling.
package swap

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gmgn-swap/pkg/journal"
	"gmgn-swap/pkg/metrics"
	"gmgn-swap/pkg/types"
)

// Router is the remote side of a swap.
type Router interface {
	GetSwapRoute(ctx context.Context, params types.SwapParameters) (*types.SwapRoute, error)
	SubmitTx(ctx context.Context, signedTx string) (*types.SubmitTxResponse, error)
	SubmitAntiMevTx(ctx context.Context, signedTx, fromAddress string) (*types.SubmitAntiMevTxResponse, error)
	WaitTxStatus(ctx context.Context, hash string, lastValidHeight int64, interval, timeout time.Duration) (*types.TxStatus, error)
}

// TxSigner signs base64 encoded transactions.
type TxSigner interface {
	SignBase64(unsigned string) (string, error)
}

// Result collects what each step produced. Fields of steps that did not
// run are nil.
type Result struct {
	JournalID string
	Quote     *types.SwapRoute
	Receipt   *types.Receipt
	Status    *types.TxStatus
}

// Swapper executes swaps. It is safe for concurrent use.
type Swapper struct {
	router   Router
	signer   TxSigner
	journal  *journal.Journal
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	interval time.Duration
	timeout  time.Duration
}

// Option configures Swapper.
type Option func(*Swapper)

// WithJournal records every swap in j.
func WithJournal(j *journal.Journal) Option {
	return func(s *Swapper) {
		s.journal = j
	}
}

// WithMetrics records step durations and outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Swapper) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Swapper) {
		s.logger = logger
	}
}

// WithPolling sets the status poll interval and timeout. Zero values keep
// the router defaults.
func WithPolling(interval, timeout time.Duration) Option {
	return func(s *Swapper) {
		s.interval = interval
		s.timeout = timeout
	}
}

// New creates a Swapper.
func New(router Router, signer TxSigner, opts ...Option) *Swapper {
	s := &Swapper{
		router: router,
		signer: signer,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Swap runs one swap. Quote, signing and submission are attempted once;
// only the status query is retried. On error the partially filled Result is
// returned together with the error of the failing step.
func (s *Swapper) Swap(ctx context.Context, params types.SwapParameters) (*Result, error) {
	return s.SwapNamed(ctx, "", params)
}

// SwapNamed is Swap with a label recorded in the journal and logs.
func (s *Swapper) SwapNamed(ctx context.Context, name string, params types.SwapParameters) (res *Result, err error) {
	res = &Result{}
	logger := s.logger.With().Str("input", params.InputMint).Str("output", params.OutputMint).Logger()
	if name != "" {
		logger = logger.With().Str("swap", name).Logger()
	}

	if s.journal != nil {
		res.JournalID = s.journal.Begin(name, params)
	}
	if s.metrics != nil {
		s.metrics.SwapStarted()
	}
	defer func() { s.finish(logger, res, err) }()

	route, err := timed(s, metrics.StepQuote, func() (*types.SwapRoute, error) {
		return s.router.GetSwapRoute(ctx, params)
	})
	if err != nil {
		return res, err
	}
	res.Quote = route
	s.record(logger, func(j *journal.Journal) error { return j.MarkQuoted(res.JournalID, route) })
	logger.Info().
		Str("in_amount", route.Quote.InAmount).
		Str("out_amount", route.Quote.OutAmount).
		Int64("last_valid_height", route.RawTx.LastValidBlockHeight).
		Msg("route received")

	signed, err := timed(s, metrics.StepSign, func() (string, error) {
		return s.signer.SignBase64(route.RawTx.SwapTransaction)
	})
	if err != nil {
		return res, err
	}

	receipt, err := timed(s, metrics.StepSubmit, func() (*types.Receipt, error) {
		if params.AntiMEV {
			resp, err := s.router.SubmitAntiMevTx(ctx, signed, params.FromAddress)
			if err != nil {
				return nil, err
			}
			return &types.Receipt{Relay: resp}, nil
		}
		resp, err := s.router.SubmitTx(ctx, signed)
		if err != nil {
			return nil, err
		}
		return &types.Receipt{Direct: resp}, nil
	})
	if err != nil {
		return res, err
	}
	res.Receipt = receipt
	s.record(logger, func(j *journal.Journal) error { return j.MarkSubmitted(res.JournalID, *receipt) })

	hash := receipt.TxHash()
	logger = logger.With().Str("hash", hash).Logger()
	logger.Info().Bool("anti_mev", receipt.IsRelay()).Msg("transaction submitted")

	status, err := timed(s, metrics.StepWait, func() (*types.TxStatus, error) {
		return s.router.WaitTxStatus(ctx, hash, route.RawTx.LastValidBlockHeight, s.interval, s.timeout)
	})
	if err != nil {
		return res, err
	}
	res.Status = status
	s.record(logger, func(j *journal.Journal) error { return j.Complete(res.JournalID, *status) })

	return res, nil
}

func (s *Swapper) finish(logger zerolog.Logger, res *Result, err error) {
	outcome := "error"
	if err != nil {
		s.record(logger, func(j *journal.Journal) error { return j.Fail(res.JournalID, err) })
		logger.Error().Err(err).Msg("swap failed")
	} else {
		outcome = strings.ToLower(string(res.Status.State()))
		logger.Info().Str("state", string(res.Status.State())).Msg("swap finished")
	}
	if s.metrics != nil {
		s.metrics.SwapFinished(outcome)
	}
}

func (s *Swapper) record(logger zerolog.Logger, fn func(*journal.Journal) error) {
	if s.journal == nil {
		return
	}
	if err := fn(s.journal); err != nil {
		logger.Warn().Err(err).Msg("journal update failed")
	}
}

func timed[T any](s *Swapper, step string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	if s.metrics != nil {
		s.metrics.ObserveStep(step, time.Since(start))
	}
	return out, err
}
