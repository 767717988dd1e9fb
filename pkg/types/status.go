package types

import "encoding/json"

// TxState is the position of a transaction in the status state machine.
// PENDING is the only non-terminal state.
type TxState string

const (
	TxPending TxState = "PENDING"
	TxSuccess TxState = "SUCCESS"
	TxFailed  TxState = "FAILED"
	TxExpired TxState = "EXPIRED"
)

// TxStatus is the router view of a submitted transaction.
//
// Success means the transaction landed and succeeded, Failed means it landed
// but failed. Expired means the last valid block height passed without the
// transaction landing; it has to be resubmitted with a fresh quote.
type TxStatus struct {
	Success bool            `json:"success"`
	Failed  bool            `json:"failed"`
	Expired bool            `json:"expired"`
	Err     json.RawMessage `json:"err,omitempty"`
	ErrCode json.RawMessage `json:"err_code,omitempty"`
}

// Terminal reports whether polling can stop
func (s TxStatus) Terminal() bool {
	return s.Success || s.Failed || s.Expired
}

// State maps the flags onto a single state
func (s TxStatus) State() TxState {
	switch {
	case s.Success:
		return TxSuccess
	case s.Failed:
		return TxFailed
	case s.Expired:
		return TxExpired
	default:
		return TxPending
	}
}
