// Package journal keeps an in-memory record of swap executions for the
// lifetime of the process.
package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gmgn-swap/pkg/types"
)

// Status is the lifecycle position of an execution.
type Status string

const (
	StatusPending   Status = "pending"   // Swap started, no quote yet
	StatusQuoted    Status = "quoted"    // Route received
	StatusSubmitted Status = "submitted" // Signed transaction accepted by the router
	StatusSuccess   Status = "success"   // Landed and succeeded
	StatusFailed    Status = "failed"    // Landed and failed
	StatusExpired   Status = "expired"   // Block height passed, needs a fresh quote
	StatusError     Status = "error"     // A step returned an error
)

// Final reports whether no further transitions are expected
func (s Status) Final() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusExpired, StatusError:
		return true
	}
	return false
}

// Execution is a single swap attempt.
type Execution struct {
	ID      string    `json:"id"`
	Label   string    `json:"label,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Status  Status    `json:"status"`

	InputMint  string `json:"input_mint"`
	OutputMint string `json:"output_mint"`
	InAmount   string `json:"in_amount"`
	OutAmount  string `json:"out_amount,omitempty"`
	Fee        string `json:"fee"`
	AntiMEV    bool   `json:"anti_mev"`

	LastValidHeight int64  `json:"last_valid_height,omitempty"`
	TxHash          string `json:"tx_hash,omitempty"`
	BundleID        string `json:"bundle_id,omitempty"`
	ErrCode         string `json:"err_code,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Duration is the time between start and the last update
func (e Execution) Duration() time.Duration {
	return e.Updated.Sub(e.Created)
}

// Journal is safe for concurrent use.
type Journal struct {
	mu         sync.RWMutex
	executions map[string]*Execution
	now        func() time.Time
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{
		executions: make(map[string]*Execution),
		now:        time.Now,
	}
}

// Begin records a new pending execution and returns its ID.
func (j *Journal) Begin(label string, params types.SwapParameters) string {
	now := j.now()
	exec := &Execution{
		ID:         uuid.New().String(),
		Label:      label,
		Created:    now,
		Updated:    now,
		Status:     StatusPending,
		InputMint:  params.InputMint,
		OutputMint: params.OutputMint,
		InAmount:   params.InAmount,
		Fee:        params.Fee.String(),
		AntiMEV:    params.AntiMEV,
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.executions[exec.ID] = exec
	return exec.ID
}

// MarkQuoted stores the route details.
func (j *Journal) MarkQuoted(id string, route *types.SwapRoute) error {
	return j.update(id, func(e *Execution) {
		e.Status = StatusQuoted
		e.OutAmount = route.Quote.OutAmount
		e.LastValidHeight = route.RawTx.LastValidBlockHeight
	})
}

// MarkSubmitted stores the submission receipt.
func (j *Journal) MarkSubmitted(id string, receipt types.Receipt) error {
	return j.update(id, func(e *Execution) {
		e.Status = StatusSubmitted
		e.TxHash = receipt.TxHash()
		if receipt.Relay != nil {
			e.BundleID = receipt.Relay.BundleID
		}
	})
}

// Complete stores the terminal transaction status.
func (j *Journal) Complete(id string, status types.TxStatus) error {
	return j.update(id, func(e *Execution) {
		switch status.State() {
		case types.TxSuccess:
			e.Status = StatusSuccess
		case types.TxFailed:
			e.Status = StatusFailed
		case types.TxExpired:
			e.Status = StatusExpired
		default:
			e.Status = StatusSubmitted
		}
		if len(status.ErrCode) > 0 && string(status.ErrCode) != "null" {
			e.ErrCode = string(status.ErrCode)
		}
	})
}

// Fail marks the execution as errored.
func (j *Journal) Fail(id string, err error) error {
	return j.update(id, func(e *Execution) {
		e.Status = StatusError
		if err != nil {
			e.Error = err.Error()
		}
	})
}

func (j *Journal) update(id string, fn func(*Execution)) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	exec, exists := j.executions[id]
	if !exists {
		return fmt.Errorf("execution '%s' not found", id)
	}
	if exec.Status.Final() {
		return fmt.Errorf("execution '%s' already %s", id, exec.Status)
	}

	fn(exec)
	exec.Updated = j.now()
	return nil
}

// Get returns a copy of an execution.
func (j *Journal) Get(id string) (Execution, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	exec, exists := j.executions[id]
	if !exists {
		return Execution{}, fmt.Errorf("execution '%s' not found", id)
	}
	return *exec, nil
}

// List returns all executions, oldest first.
func (j *Journal) List() []Execution {
	return j.filter(func(*Execution) bool { return true })
}

// ListByStatus returns executions with the given status, oldest first.
func (j *Journal) ListByStatus(status Status) []Execution {
	return j.filter(func(e *Execution) bool { return e.Status == status })
}

func (j *Journal) filter(keep func(*Execution) bool) []Execution {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Execution, 0, len(j.executions))
	for _, exec := range j.executions {
		if keep(exec) {
			out = append(out, *exec)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Created.Equal(out[b].Created) {
			return out[a].ID < out[b].ID
		}
		return out[a].Created.Before(out[b].Created)
	})
	return out
}

// Count returns the number of executions
func (j *Journal) Count() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return len(j.executions)
}

// Summary counts executions per status.
func (j *Journal) Summary() map[Status]int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make(map[Status]int)
	for _, exec := range j.executions {
		out[exec.Status]++
	}
	return out
}

// Export writes all executions as indented JSON.
func (j *Journal) Export(w io.Writer) error {
	data, err := json.MarshalIndent(struct {
		Executions []Execution `json:"executions"`
	}{Executions: j.List()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal executions: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write executions: %w", err)
	}
	return nil
}
