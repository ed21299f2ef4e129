// Package crypto provides identifier and salt generation for payment
// records and memo references.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateSalt generates a cryptographically secure random salt and returns
// it base64-encoded. The length parameter is the number of random bytes; 16
// bytes encode to 24 characters, safely inside the 28-byte text-memo limit.
func GenerateSalt(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("salt length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random salt: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// GenerateID generates a random hex identifier of the given byte length,
// used for locally fabricated payment records.
func GenerateID(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("id length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random id: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
