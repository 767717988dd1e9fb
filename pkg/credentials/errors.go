package credentials

import "fmt"

// ConfigurationError reports unusable key material: a malformed AES key,
// an undecodable secret or a failed decryption.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credentials: %s: %v", e.Reason, e.Err)
	}
	return "credentials: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// InvalidKeyError reports key material that is not a valid Solana keypair.
type InvalidKeyError struct {
	Err error
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("credentials: invalid private key: %v", e.Err)
}

func (e *InvalidKeyError) Unwrap() error { return e.Err }
