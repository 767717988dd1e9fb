// Package signer applies a local signature to router-built transactions.
package signer

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MalformedTransactionError is returned when the unsigned transaction cannot
// be decoded or cannot be signed by this keypair.
type MalformedTransactionError struct {
	Err error
}

func (e *MalformedTransactionError) Error() string {
	return fmt.Sprintf("malformed transaction: %v", e.Err)
}

func (e *MalformedTransactionError) Unwrap() error { return e.Err }

// Keypair is the signing identity.
type Keypair interface {
	Address() solana.PublicKey
	Sign(payload []byte) (solana.Signature, error)
}

// Signer signs transactions with a single keypair. It holds no mutable
// state and is safe for concurrent use.
type Signer struct {
	key Keypair
}

// New creates a Signer.
func New(key Keypair) *Signer {
	return &Signer{key: key}
}

// Address returns the address of the signing key
func (s *Signer) Address() solana.PublicKey {
	return s.key.Address()
}

// Sign decodes a serialized transaction, replaces its signatures with one
// signature over the message and returns the re-serialized transaction.
// Both legacy and v0 messages are supported.
func (s *Signer) Sign(unsigned []byte) ([]byte, error) {
	tx, err := solana.TransactionFromBytes(unsigned)
	if err != nil {
		return nil, &MalformedTransactionError{Err: fmt.Errorf("decode: %w", err)}
	}

	header := tx.Message.Header
	if header.NumRequiredSignatures != 1 {
		return nil, &MalformedTransactionError{Err: fmt.Errorf("expected 1 required signature, got %d", header.NumRequiredSignatures)}
	}
	if len(tx.Message.AccountKeys) == 0 {
		return nil, &MalformedTransactionError{Err: errors.New("message has no account keys")}
	}
	if payer := tx.Message.AccountKeys[0]; !payer.Equals(s.key.Address()) {
		return nil, &MalformedTransactionError{Err: fmt.Errorf("fee payer %s does not match signer %s", payer, s.key.Address())}
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, &MalformedTransactionError{Err: fmt.Errorf("encode message: %w", err)}
	}

	sig, err := s.key.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	tx.Signatures = []solana.Signature{sig}

	out, err := tx.MarshalBinary()
	if err != nil {
		return nil, &MalformedTransactionError{Err: fmt.Errorf("encode transaction: %w", err)}
	}
	return out, nil
}

// SignBase64 is Sign for base64 encoded transactions, as used by the router API.
func (s *Signer) SignBase64(unsigned string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(unsigned)
	if err != nil {
		return "", &MalformedTransactionError{Err: fmt.Errorf("decode base64: %w", err)}
	}
	signed, err := s.Sign(raw)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(signed), nil
}
