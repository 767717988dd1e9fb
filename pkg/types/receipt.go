package types

// SubmitTxResponse is returned by the direct broadcast path
type SubmitTxResponse struct {
	Hash string `json:"hash"`
}

// SubmitAntiMevTxResponse is returned by the relay protected path
type SubmitAntiMevTxResponse struct {
	BundleID             string `json:"bundle_id"`
	LastValidBlockNumber int64  `json:"last_valid_block_number"`
	TxHash               string `json:"tx_hash"`
}

// Receipt holds the outcome of a submission. Exactly one of Direct and
// Relay is set.
type Receipt struct {
	Direct *SubmitTxResponse        `json:"direct,omitempty"`
	Relay  *SubmitAntiMevTxResponse `json:"relay,omitempty"`
}

// TxHash returns the signature to poll for
func (r Receipt) TxHash() string {
	if r.Relay != nil {
		return r.Relay.TxHash
	}
	if r.Direct != nil {
		return r.Direct.Hash
	}
	return ""
}

// IsRelay reports whether the transaction went through the anti-MEV relay
func (r Receipt) IsRelay() bool {
	return r.Relay != nil
}
