package signers

import (
	"context"

	stellarpay "github.com/stellar-pay/sdk-go"
)

// callbackSigner wraps a custom signing function for external signing
// services.
type callbackSigner struct {
	address  string
	signFunc func(context.Context, stellarpay.SignHashRequest) (string, error)
}

// FromCallback creates a RawHashSigner from an account address and an
// arbitrary signing function. Intended for wrapping embedded-wallet
// providers, HSMs, or custodial APIs that sign raw hashes.
func FromCallback(
	address string,
	signFunc func(context.Context, stellarpay.SignHashRequest) (string, error),
) stellarpay.RawHashSigner {
	return &callbackSigner{
		address:  address,
		signFunc: signFunc,
	}
}

// Address returns the Stellar address (G...) for this signer.
func (s *callbackSigner) Address() string {
	return s.address
}

// SignRawHash delegates to the callback function.
func (s *callbackSigner) SignRawHash(ctx context.Context, req stellarpay.SignHashRequest) (string, error) {
	return s.signFunc(ctx, req)
}
