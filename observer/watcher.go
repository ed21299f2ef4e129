// Package observer watches Stellar on-chain activity in real time. It wraps
// Horizon payment streaming and surfaces incoming and outgoing payments
// through typed handlers with filtering, cursor persistence for resuming
// across restarts, and reconnection with exponential backoff.
package observer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go-stellar-sdk/clients/horizonclient"
	"github.com/stellar/go-stellar-sdk/protocols/horizon/base"
	"github.com/stellar/go-stellar-sdk/protocols/horizon/operations"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

// handlerEntry pairs a handler with its filters.
type handlerEntry struct {
	handler stellarpay.PaymentHandler
	filters []stellarpay.PaymentFilter
}

// Watcher streams payment operations from Horizon and dispatches them to
// registered handlers. It manages a resumable cursor and reconnects with
// exponential backoff when the stream drops.
type Watcher struct {
	client      *horizonclient.Client
	handlers    []handlerEntry
	cursor      string
	cursorSaver func(string) error
	log         *logrus.Logger

	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
	running  bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithCursor sets the starting cursor for streaming.
// Use "now" to skip historical payments, or a paging_token to resume.
func WithCursor(cursor string) WatcherOption {
	return func(w *Watcher) {
		w.cursor = cursor
	}
}

// WithCursorSaver sets a callback invoked after each processed payment with
// its paging_token, so the caller can persist the position across restarts.
func WithCursorSaver(saver func(string) error) WatcherOption {
	return func(w *Watcher) {
		w.cursorSaver = saver
	}
}

// WithReconnectBackoff sets the initial and maximum backoff durations for
// stream reconnection. Default is 1s initial, 60s max.
func WithReconnectBackoff(initial, max time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.initialBackoff = initial
		w.maxBackoff = max
	}
}

// WithLogger sets the logger used for stream and handler errors.
func WithLogger(log *logrus.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = log
	}
}

// NewWatcher creates a Watcher that streams from the given Horizon URL.
// The default cursor is "now".
func NewWatcher(horizonURL string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		client:         &horizonclient.Client{HorizonURL: horizonURL},
		handlers:       make([]handlerEntry, 0),
		cursor:         "now",
		initialBackoff: 1 * time.Second,
		maxBackoff:     60 * time.Second,
		stopChan:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.log == nil {
		w.log = logrus.New()
		w.log.SetLevel(logrus.WarnLevel)
	}

	return w
}

// OnPayment registers a handler for payment events with optional filters.
// Filters are ANDed together; handlers run sequentially per matching payment.
func (w *Watcher) OnPayment(handler stellarpay.PaymentHandler, filters ...stellarpay.PaymentFilter) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.handlers = append(w.handlers, handlerEntry{
		handler: handler,
		filters: filters,
	})
}

// Start begins streaming payment operations from Horizon. It blocks until
// the context is cancelled or Stop is called, reconnecting with exponential
// backoff on stream failures.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.NewObserverError(errors.STREAM_ERROR, "watcher already running", nil)
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	backoff := w.initialBackoff
	attempt := 0

	for {
		select {
		case <-w.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w.mu.RLock()
		currentCursor := w.cursor
		w.mu.RUnlock()

		opRequest := horizonclient.OperationRequest{
			Cursor: currentCursor,
			Order:  horizonclient.OrderAsc,
		}

		err := w.client.StreamPayments(ctx, opRequest, func(op operations.Operation) {
			backoff = w.initialBackoff
			attempt = 0

			evt := convertOperation(op)
			if evt == nil {
				return
			}

			w.dispatch(*evt)

			w.mu.Lock()
			w.cursor = evt.Cursor
			w.mu.Unlock()

			if w.cursorSaver != nil {
				if err := w.cursorSaver(evt.Cursor); err != nil {
					w.log.WithError(errors.NewObserverError(
						errors.CURSOR_SAVE_FAILED,
						"failed to persist stream cursor",
						err,
					)).WithField("cursor", evt.Cursor).Warn("cursor save failed")
				}
			}
		})

		if err == nil {
			return nil
		}

		select {
		case <-w.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w.log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"backoff": backoff.String(),
		}).Warn("payment stream dropped, reconnecting")

		select {
		case <-time.After(backoff):
		case <-w.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}

		attempt++
		backoff = backoff * 2
		if backoff > w.maxBackoff {
			backoff = w.maxBackoff
		}
	}
}

// Stop gracefully stops streaming. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	return nil
}

// convertOperation turns a Horizon operation into a PaymentEvent, or nil
// when the operation is not a payment-like type.
func convertOperation(op operations.Operation) *stellarpay.PaymentEvent {
	opBase := op.GetBase()

	evt := &stellarpay.PaymentEvent{
		ID:              opBase.ID,
		Cursor:          opBase.PT,
		TransactionHash: opBase.TransactionHash,
		ClosedAt:        opBase.LedgerCloseTime,
	}

	switch op.GetType() {
	case "payment":
		p, ok := op.(operations.Payment)
		if !ok {
			return nil
		}
		evt.From = p.From
		evt.To = p.To
		evt.Amount = p.Amount
		evt.Asset = formatAsset(p.Asset)

	case "create_account":
		// Account funding moves XLM, so it counts as a payment. It is also
		// how activation of a fresh account becomes observable.
		c, ok := op.(operations.CreateAccount)
		if !ok {
			return nil
		}
		evt.From = c.Funder
		evt.To = c.Account
		evt.Amount = c.StartingBalance
		evt.Asset = "native"

	case "path_payment_strict_send":
		p, ok := op.(operations.PathPaymentStrictSend)
		if !ok {
			return nil
		}
		evt.From = p.From
		evt.To = p.To
		evt.Amount = p.Amount
		evt.Asset = formatAsset(p.Asset)

	default:
		return nil
	}

	return evt
}

// formatAsset renders an asset in canonical form: "native" for XLM,
// "CODE:ISSUER" for issued assets.
func formatAsset(asset base.Asset) string {
	if asset.Type == "native" {
		return "native"
	}
	return fmt.Sprintf("%s:%s", asset.Code, asset.Issuer)
}

// dispatch runs every registered handler whose filters all pass.
func (w *Watcher) dispatch(evt stellarpay.PaymentEvent) {
	w.mu.RLock()
	handlers := w.handlers
	w.mu.RUnlock()

	for _, entry := range handlers {
		matched := true
		for _, filter := range entry.filters {
			if !filter(evt) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		if err := entry.handler(evt); err != nil {
			w.log.WithError(err).WithField("operation_id", evt.ID).Warn("payment handler failed")
		}
	}
}
