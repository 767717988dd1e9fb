// Package credentials turns an at-rest secret into a signing identity.
package credentials

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
)

const trimSet = "\t\n\r "

// Identity is a Solana keypair. The private half never leaves this type:
// formatting or marshalling an Identity only shows the address.
type Identity struct {
	key     solana.PrivateKey
	address solana.PublicKey
}

// Unlock builds an Identity from a secret. When hexKey is empty the secret is
// the plaintext key, otherwise it is base64(IV || AES-256-CBC ciphertext).
// The plaintext key is either base58 or a solana-keygen JSON byte array.
func Unlock(secret, hexKey string) (*Identity, error) {
	secret = strings.Trim(secret, trimSet)

	var plain []byte
	if hexKey != "" {
		key, err := decodeHexKey(hexKey)
		if err != nil {
			return nil, err
		}
		plain, err = decryptSecret(secret, key)
		if err != nil {
			return nil, err
		}
	} else {
		plain = []byte(secret)
	}
	defer wipe(plain)

	return parseKey(plain)
}

// ReadSecretFile reads a key file and strips surrounding whitespace.
func ReadSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ConfigurationError{Reason: "read private key file", Err: err}
	}
	defer wipe(data)
	return strings.Trim(string(data), trimSet), nil
}

// NewIdentity wraps an already parsed key.
func NewIdentity(key solana.PrivateKey) (*Identity, error) {
	if err := key.Validate(); err != nil {
		return nil, &InvalidKeyError{Err: err}
	}
	owned := make(solana.PrivateKey, len(key))
	copy(owned, key)
	return &Identity{key: owned, address: owned.PublicKey()}, nil
}

func parseKey(plain []byte) (*Identity, error) {
	text := strings.Trim(string(plain), trimSet)
	if text == "" {
		return nil, &InvalidKeyError{Err: errEmptyKey}
	}

	var (
		key solana.PrivateKey
		err error
	)
	if strings.HasPrefix(text, "[") {
		key, err = solana.PrivateKeyFromSolanaKeygenFileBytes([]byte(text))
	} else {
		key, err = solana.PrivateKeyFromBase58(text)
	}
	if err != nil {
		return nil, &InvalidKeyError{Err: err}
	}
	defer wipe(key)

	return NewIdentity(key)
}

// Address returns the public key of the identity
func (i *Identity) Address() solana.PublicKey {
	return i.address
}

// Sign signs payload with the private key
func (i *Identity) Sign(payload []byte) (solana.Signature, error) {
	return i.key.Sign(payload)
}

func (i *Identity) String() string {
	return i.address.String()
}

// GoString keeps %#v from printing key bytes.
func (i *Identity) GoString() string {
	return "credentials.Identity{address: " + i.address.String() + "}"
}

func (i *Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Address string `json:"address"`
	}{Address: i.address.String()})
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
