// Package memory provides in-memory implementations of store interfaces.
// The ReceiptStore implementation uses a map[string]*Receipt with
// sync.RWMutex for thread-safe access. It is suitable for examples, tests,
// and small integrations without persistent storage requirements.
package memory

import (
	"context"
	"sort"
	"sync"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

// ReceiptStore is an in-memory implementation of stellarpay.ReceiptStore.
// Receipts are keyed by their payment id.
type ReceiptStore struct {
	receipts map[string]*stellarpay.Receipt
	mu       sync.RWMutex
}

// NewReceiptStore creates a new in-memory receipt store.
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{
		receipts: make(map[string]*stellarpay.Receipt),
	}
}

// Save persists a new receipt.
// Returns an error if a receipt with the same payment id already exists.
func (s *ReceiptStore) Save(ctx context.Context, receipt *stellarpay.Receipt) error {
	if receipt == nil || receipt.PaymentID == "" {
		return errors.NewTransferError(errors.STORE_ERROR, "receipt requires a payment id", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.receipts[receipt.PaymentID]; exists {
		return errors.NewTransferError(errors.STORE_ERROR, "receipt already exists", nil).
			With("payment_id", receipt.PaymentID)
	}

	s.receipts[receipt.PaymentID] = receipt
	return nil
}

// FindByPaymentID retrieves a receipt by its payment record id.
// Returns an error if the receipt is not found.
func (s *ReceiptStore) FindByPaymentID(ctx context.Context, paymentID string) (*stellarpay.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	receipt, exists := s.receipts[paymentID]
	if !exists {
		return nil, errors.NewTransferError(errors.STORE_ERROR, "receipt not found", nil).
			With("payment_id", paymentID)
	}

	return receipt, nil
}

// FindByAccount returns all receipts for a source account, newest first.
// Returns an empty slice when the account has no receipts.
func (s *ReceiptStore) FindByAccount(ctx context.Context, account string) ([]*stellarpay.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*stellarpay.Receipt
	for _, receipt := range s.receipts {
		if receipt.Account == account {
			result = append(result, receipt)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// Compile-time interface check
var _ stellarpay.ReceiptStore = (*ReceiptStore)(nil)
