// Package signing coordinates external raw-hash signing of transaction
// envelopes.
package signing

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/sirupsen/logrus"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

// Coordinator hands a transaction's hash to an external signer and attaches
// the returned signature to the envelope.
//
// When the signer reports an expired session, the coordinator attempts
// exactly one silent session refresh and then reports
// AUTHENTICATION_EXPIRED asking the caller to retry. It never re-invokes
// the signer itself; retry is the caller's responsibility.
type Coordinator struct {
	signer            stellarpay.RawHashSigner
	refresher         stellarpay.SessionRefresher
	networkPassphrase string
	log               logrus.FieldLogger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSessionRefresher sets the optional session-refresh capability used
// after an expired-session signer error.
func WithSessionRefresher(r stellarpay.SessionRefresher) Option {
	return func(c *Coordinator) {
		c.refresher = r
	}
}

// WithLogger sets the coordinator's logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// NewCoordinator creates a signing coordinator for the given network.
func NewCoordinator(networkPassphrase string, signer stellarpay.RawHashSigner, opts ...Option) *Coordinator {
	c := &Coordinator{
		signer:            signer,
		networkPassphrase: networkPassphrase,
		log:               defaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sign computes the transaction hash, delegates to the external signer, and
// attaches the returned signature. The result carries exactly one signature
// for the signer's account.
func (c *Coordinator) Sign(ctx context.Context, unsigned *stellarpay.UnsignedTransaction) (*stellarpay.SignedTransaction, error) {
	hash, err := unsigned.Hash(c.networkPassphrase)
	if err != nil {
		return nil, err
	}

	sigHex, err := c.signer.SignRawHash(ctx, stellarpay.SignHashRequest{
		Address:   c.signer.Address(),
		ChainType: stellarpay.ChainStellar,
		Hash:      "0x" + hex.EncodeToString(hash[:]),
	})
	if err != nil {
		if sessionExpired(err) {
			return nil, c.handleExpiredSession(ctx, err)
		}
		return nil, errors.NewSigningError(errors.SIGNING_FAILED, "signer rejected the transaction hash", err)
	}

	sigBytes, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil {
		return nil, errors.NewSigningError(errors.SIGNING_FAILED, "signer returned a malformed signature", err)
	}

	signed, err := unsigned.Tx().AddSignatureBase64(
		c.networkPassphrase,
		c.signer.Address(),
		base64.StdEncoding.EncodeToString(sigBytes),
	)
	if err != nil {
		return nil, errors.NewSigningError(errors.SIGNING_FAILED, "failed to attach signature to envelope", err)
	}

	return stellarpay.NewSignedTransaction(signed)
}

// handleExpiredSession performs the single silent refresh and reports the
// expiry upward.
func (c *Coordinator) handleExpiredSession(ctx context.Context, cause error) error {
	if c.refresher != nil {
		if err := c.refresher.RefreshSession(ctx); err != nil {
			c.log.WithError(err).Warn("session refresh failed after signer expiry")
			return errors.NewSigningError(
				errors.AUTHENTICATION_EXPIRED,
				"authentication expired; please log in again and retry",
				cause,
			)
		}
		c.log.Debug("session refreshed after signer expiry")
	}
	return errors.NewSigningError(
		errors.AUTHENTICATION_EXPIRED,
		"authentication expired; please try again",
		cause,
	)
}

// sessionExpired matches the signer error messages that indicate a stale
// session rather than a signing fault.
func sessionExpired(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "authenticated") || strings.Contains(msg, "session expired")
}

func defaultLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}
