package intent

import (
	"context"
	"time"
)

// SettlementProcess tracks an in-progress payment intent until the service
// reports a terminal status. It manages client-side status polling with
// adaptive backoff and change notification.
type SettlementProcess struct {
	ExternalID string
	Status     string

	onStatusChange func(string)

	client *Client
}

// Track creates a settlement tracker for a payment's external id.
func (c *Client) Track(externalID string) *SettlementProcess {
	return &SettlementProcess{
		ExternalID: externalID,
		client:     c,
	}
}

// OnStatusChange registers a callback invoked when the payment status
// changes. The handler receives the new status value.
func (p *SettlementProcess) OnStatusChange(handler func(string)) {
	p.onStatusChange = handler
}

// Poll fetches the current payment record and updates Status, invoking the
// onStatusChange callback if the status has changed.
func (p *SettlementProcess) Poll(ctx context.Context) error {
	record, err := p.client.GetPayment(ctx, p.ExternalID)
	if err != nil {
		return err
	}

	if record.Status != p.Status {
		p.Status = record.Status
		if p.onStatusChange != nil {
			p.onStatusChange(record.Status)
		}
	}
	return nil
}

// WaitForSettlement blocks until the payment reaches a terminal status.
// It polls the intent service using adaptive backoff: 1s, 2s, 4s, 8s, max
// 30s. Returns when the payment settles, fails, or the context is
// cancelled.
func (p *SettlementProcess) WaitForSettlement(ctx context.Context) error {
	backoff := 1 * time.Second
	const maxBackoff = 30 * time.Second

	for {
		if err := p.Poll(ctx); err != nil {
			return err
		}

		if p.isTerminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

func (p *SettlementProcess) isTerminal() bool {
	switch p.Status {
	case "completed",
		"payment_completed",
		"failed",
		"payment_bounced",
		"expired",
		"refunded":
		return true
	default:
		return false
	}
}
