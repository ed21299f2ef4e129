package signers

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stellar/go/keypair"

	stellarpay "github.com/stellar-pay/sdk-go"
)

// keypairSigner wraps a stellar/go keypair for signing transaction hashes.
type keypairSigner struct {
	kp *keypair.Full
}

// FromSecret creates a RawHashSigner from a Stellar secret key (S...).
// Intended for server-side use (backends, bots) and tests.
// Returns an error if the secret key is invalid.
func FromSecret(secret string) (stellarpay.RawHashSigner, error) {
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid secret key: %w", err)
	}
	return &keypairSigner{kp: kp}, nil
}

// Address returns the Stellar address (G...) for this keypair.
func (s *keypairSigner) Address() string {
	return s.kp.Address()
}

// SignRawHash signs the 32-byte transaction hash with the keypair and
// returns the signature hex-encoded with a 0x prefix, matching the encoding
// external custody signers use.
func (s *keypairSigner) SignRawHash(_ context.Context, req stellarpay.SignHashRequest) (string, error) {
	hashBytes, err := hex.DecodeString(strings.TrimPrefix(req.Hash, "0x"))
	if err != nil {
		return "", fmt.Errorf("malformed transaction hash: %w", err)
	}
	if len(hashBytes) != 32 {
		return "", fmt.Errorf("transaction hash must be 32 bytes, got %d", len(hashBytes))
	}

	sig, err := s.kp.Sign(hashBytes)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction hash: %w", err)
	}

	return "0x" + hex.EncodeToString(sig), nil
}
