package stellarpay

import (
	"github.com/stellar/go/txnbuild"

	"github.com/stellar-pay/sdk-go/errors"
)

// UnsignedTransaction wraps a built but not yet signed Stellar envelope.
// The wrapper keeps unsigned and signed envelopes apart in the type system
// so an unsigned envelope can never reach submission.
type UnsignedTransaction struct {
	tx *txnbuild.Transaction
}

// WrapUnsigned wraps a freshly built txnbuild transaction.
func WrapUnsigned(tx *txnbuild.Transaction) *UnsignedTransaction {
	return &UnsignedTransaction{tx: tx}
}

// Tx exposes the underlying txnbuild transaction.
func (u *UnsignedTransaction) Tx() *txnbuild.Transaction {
	return u.tx
}

// Hash returns the 32-byte transaction hash used as the signing input.
func (u *UnsignedTransaction) Hash(networkPassphrase string) ([32]byte, error) {
	h, err := u.tx.Hash(networkPassphrase)
	if err != nil {
		return [32]byte{}, errors.NewCoreError(errors.ENVELOPE_ENCODE_FAILED, "failed to hash transaction", err)
	}
	return h, nil
}

// Base64 returns the envelope as base64 XDR.
func (u *UnsignedTransaction) Base64() (string, error) {
	xdr, err := u.tx.Base64()
	if err != nil {
		return "", errors.NewCoreError(errors.ENVELOPE_ENCODE_FAILED, "failed to encode transaction", err)
	}
	return xdr, nil
}

// SignedTransaction is an envelope with exactly one attached signature for
// the source account. It is produced only by the signing coordinator.
type SignedTransaction struct {
	tx *txnbuild.Transaction
}

// NewSignedTransaction wraps a txnbuild transaction that already carries a
// signature. It fails fast when no signature is attached.
func NewSignedTransaction(tx *txnbuild.Transaction) (*SignedTransaction, error) {
	if tx == nil || len(tx.Signatures()) == 0 {
		return nil, errors.NewCoreError(errors.ENVELOPE_ENCODE_FAILED, "transaction has no attached signature", nil)
	}
	return &SignedTransaction{tx: tx}, nil
}

// Tx exposes the underlying txnbuild transaction.
func (s *SignedTransaction) Tx() *txnbuild.Transaction {
	return s.tx
}

// Hash returns the 32-byte transaction hash.
func (s *SignedTransaction) Hash(networkPassphrase string) ([32]byte, error) {
	h, err := s.tx.Hash(networkPassphrase)
	if err != nil {
		return [32]byte{}, errors.NewCoreError(errors.ENVELOPE_ENCODE_FAILED, "failed to hash transaction", err)
	}
	return h, nil
}

// Base64 returns the signed envelope as base64 XDR.
func (s *SignedTransaction) Base64() (string, error) {
	xdr, err := s.tx.Base64()
	if err != nil {
		return "", errors.NewCoreError(errors.ENVELOPE_ENCODE_FAILED, "failed to encode transaction", err)
	}
	return xdr, nil
}
