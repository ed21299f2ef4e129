// Package intent is the client for the off-chain payment-intent service
// used by bridged transfers. The service records a payment intent and
// returns the settlement address, amount, and memo the on-chain transaction
// must use verbatim.
package intent

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	stellarpay "github.com/stellar-pay/sdk-go"
	corenet "github.com/stellar-pay/sdk-go/core/net"
	"github.com/stellar-pay/sdk-go/errors"
)

// PaymentPayload is the create-payment request body.
type PaymentPayload struct {
	AppID          string                        `json:"appId"`
	Display        stellarpay.PaymentDisplay     `json:"display"`
	Destination    stellarpay.PaymentDestination `json:"destination"`
	ExternalID     string                        `json:"externalId"`
	Metadata       map[string]any                `json:"metadata,omitempty"`
	PreferredChain string                        `json:"preferredChain"`
	PreferredToken string                        `json:"preferredToken"`
}

// paymentResponse wraps the service's create-payment envelope.
type paymentResponse struct {
	Success bool                      `json:"success"`
	Payment *stellarpay.PaymentRecord `json:"payment,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

// Client calls the payment-intent service. An optional fallback provider
// serves payment lookups when the primary is unavailable.
type Client struct {
	http        *corenet.Client
	baseURL     string
	apiKey      string
	appID       string
	fallbackURL string
	fallbackKey string
	log         logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(http *corenet.Client) Option {
	return func(c *Client) {
		c.http = http
	}
}

// WithAppID sets the application id stamped onto payloads that omit one.
func WithAppID(appID string) Option {
	return func(c *Client) {
		c.appID = appID
	}
}

// WithFallback configures a secondary provider for payment lookups.
func WithFallback(url, apiKey string) Option {
	return func(c *Client) {
		c.fallbackURL = url
		c.fallbackKey = apiKey
	}
}

// WithLogger sets the client's logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates an intent service client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		http:    corenet.NewClient(),
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     defaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatePayment records a payment intent and returns the service's payment
// record. Any failure — transport, HTTP status, or a success:false envelope
// — surfaces as PAYMENT_INTENT_FAILED with the service's error text.
func (c *Client) CreatePayment(ctx context.Context, payload PaymentPayload) (*stellarpay.PaymentRecord, error) {
	if payload.AppID == "" {
		payload.AppID = c.appID
	}

	var resp paymentResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/payment-api", c.primaryHeaders(), payload, &resp); err != nil {
		return nil, errors.NewIntentError(errors.PAYMENT_INTENT_FAILED, "payment intent request failed", err)
	}

	if !resp.Success {
		c.log.WithField("external_id", payload.ExternalID).Warn("intent service declined payment")
		return nil, errors.NewIntentError(
			errors.PAYMENT_INTENT_FAILED,
			fmt.Sprintf("payment intent rejected: %s", resp.Error),
			nil,
		).With("service_error", resp.Error)
	}
	if resp.Payment == nil {
		return nil, errors.NewIntentError(errors.PAYMENT_INTENT_FAILED, "intent service returned no payment record", nil)
	}

	resp.Payment.Source = "intent"
	if resp.Payment.CreatedAt.IsZero() {
		resp.Payment.CreatedAt = time.Now().UTC()
	}
	return resp.Payment, nil
}

// GetPayment looks up a payment record by its external id, trying the
// primary provider first and falling back to the secondary when one is
// configured.
func (c *Client) GetPayment(ctx context.Context, externalID string) (*stellarpay.PaymentRecord, error) {
	if externalID == "" {
		return nil, errors.NewIntentError(errors.PAYMENT_NOT_FOUND, "payment id is required", nil)
	}

	var primary stellarpay.PaymentRecord
	primaryErr := c.http.GetJSON(ctx,
		fmt.Sprintf("%s/payment-api/external-id/%s", c.baseURL, externalID),
		c.primaryHeaders(), &primary)
	if primaryErr == nil && primary.ID != "" {
		primary.Source = "intent"
		return &primary, nil
	}

	if c.fallbackURL == "" {
		return nil, errors.NewIntentError(errors.PAYMENT_NOT_FOUND, "payment not found: "+externalID, primaryErr)
	}

	c.log.WithError(primaryErr).Warn("primary payment lookup failed, trying fallback provider")

	var fallback stellarpay.PaymentRecord
	fallbackErr := c.http.GetJSON(ctx,
		fmt.Sprintf("%s/payment/%s", c.fallbackURL, externalID),
		map[string]string{"Api-Key": c.fallbackKey}, &fallback)
	if fallbackErr == nil && fallback.ID != "" {
		fallback.Source = "fallback"
		return &fallback, nil
	}

	return nil, errors.NewIntentError(
		errors.PAYMENT_NOT_FOUND,
		fmt.Sprintf("payment not found: primary: %v, fallback: %v", primaryErr, fallbackErr),
		primaryErr,
	)
}

func (c *Client) primaryHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

func defaultLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}
