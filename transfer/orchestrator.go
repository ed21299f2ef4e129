package transfer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/core/account"
	"github.com/stellar-pay/sdk-go/core/crypto"
	"github.com/stellar-pay/sdk-go/errors"
	"github.com/stellar-pay/sdk-go/intent"
	"github.com/stellar-pay/sdk-go/payment"
	"github.com/stellar-pay/sdk-go/signing"
)

// TransactionBuilder builds an unsigned payment transaction for an order.
type TransactionBuilder interface {
	Build(ctx context.Context, source string, order stellarpay.TransferOrder) (*stellarpay.UnsignedTransaction, error)
}

// TransactionSigner turns an unsigned transaction into a signed one.
type TransactionSigner interface {
	Sign(ctx context.Context, unsigned *stellarpay.UnsignedTransaction) (*stellarpay.SignedTransaction, error)
}

// IntentService creates off-chain payment records for bridged transfers.
type IntentService interface {
	CreatePayment(ctx context.Context, payload PaymentPayload) (*stellarpay.PaymentRecord, error)
}

// PaymentPayload aliases the intent client's request shape so callers of
// the orchestrator do not have to import the intent package directly.
type PaymentPayload = intent.PaymentPayload

var _ TransactionBuilder = (*payment.Builder)(nil)
var _ TransactionSigner = (*signing.Coordinator)(nil)
var _ IntentService = (*intent.Client)(nil)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBuilder replaces the default transaction builder.
func WithBuilder(builder TransactionBuilder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithSigner replaces the default signing coordinator.
func WithSigner(signer TransactionSigner) Option {
	return func(o *Orchestrator) {
		o.signer = signer
	}
}

// WithIntentService sets the off-chain payment service used by bridged
// routes. Without one, bridged transfers fail before any network call.
func WithIntentService(svc IntentService) Option {
	return func(o *Orchestrator) {
		o.intent = svc
	}
}

// WithReceiptStore enables receipt persistence after successful transfers.
// Persistence is best effort: a store failure is logged, never surfaced.
func WithReceiptStore(store stellarpay.ReceiptStore) Option {
	return func(o *Orchestrator) {
		o.receipts = store
	}
}

// WithSnapshotCache makes the orchestrator refresh the sender's cached
// account snapshot after a successful transfer.
func WithSnapshotCache(cache *account.SnapshotCache) Option {
	return func(o *Orchestrator) {
		o.cache = cache
	}
}

// WithHooks attaches a lifecycle hook registry.
func WithHooks(hooks *HookRegistry) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger sets the logger used for lifecycle logging.
func WithLogger(log *logrus.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// Orchestrator drives one transfer attempt end to end: optional off-chain
// payment creation, transaction build, signing, ledger submission, and
// receipt mapping.
//
// Each Transfer call is an independent attempt starting from StepIdle.
// There is no resume: retrying a failed transfer means calling Transfer
// again, which rebuilds the transaction with a fresh sequence number and
// fee. Nothing before StepSubmitting has observable side effects on the
// ledger, so a pre-submission failure is always safe to retry.
type Orchestrator struct {
	session  *stellarpay.SessionContext
	registry *stellarpay.Registry

	builder  TransactionBuilder
	signer   TransactionSigner
	intent   IntentService
	receipts stellarpay.ReceiptStore
	cache    *account.SnapshotCache
	hooks    *HookRegistry
	log      *logrus.Logger
}

// NewOrchestrator creates an orchestrator bound to a session. The session
// is injected, never created here: authentication and key management stay
// the caller's responsibility.
//
// When no builder or signer option is given, defaults are constructed from
// the session's ledger client and signer.
func NewOrchestrator(session *stellarpay.SessionContext, registry *stellarpay.Registry, networkPassphrase string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		session:  session,
		registry: registry,
		hooks:    NewHookRegistry(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.log == nil {
		o.log = logrus.New()
		o.log.SetLevel(logrus.WarnLevel)
	}
	if o.builder == nil && session != nil && session.Ledger != nil {
		o.builder = payment.NewBuilder(session.Ledger, registry, networkPassphrase)
	}
	if o.signer == nil && session != nil && session.Signer != nil {
		signingOpts := []signing.Option{signing.WithLogger(o.log)}
		if session.Refresher != nil {
			signingOpts = append(signingOpts, signing.WithSessionRefresher(session.Refresher))
		}
		o.signer = signing.NewCoordinator(networkPassphrase, session.Signer, signingOpts...)
	}

	return o
}

// Hooks returns the orchestrator's lifecycle hook registry.
func (o *Orchestrator) Hooks() *HookRegistry {
	return o.hooks
}

// Transfer runs one payment attempt over the given route.
//
// The session must be ready before anything else happens: an unauthenticated
// or incomplete session fails with NOT_READY without emitting hooks or
// touching the network. Bridged routes create the off-chain payment record
// first and pay the record's receiving address, amount, and memo verbatim.
// Direct routes skip the intent service and attach a locally generated
// payment record to the result.
func (o *Orchestrator) Transfer(ctx context.Context, order stellarpay.TransferOrder, route Route) (*stellarpay.TransferResult, error) {
	if !o.session.Ready() {
		return nil, errors.NewTransferError(
			errors.NOT_READY,
			"please ensure you are logged in and try again",
			nil,
		)
	}

	attempt := &Attempt{
		Step:  StepIdle,
		Mode:  route.mode(),
		Order: order,
	}

	var record *stellarpay.PaymentRecord
	effective := order

	switch r := route.(type) {
	case BridgedRoute:
		if o.intent == nil {
			return nil, o.fail(attempt, errors.NewTransferError(
				errors.ROUTE_UNAVAILABLE,
				"bridged transfers require an intent service",
				nil,
			))
		}
		if err := o.advance(attempt, StepCreatingPayment); err != nil {
			return nil, err
		}

		rec, err := o.intent.CreatePayment(ctx, o.buildPayload(order, r))
		if err != nil {
			return nil, o.fail(attempt, err)
		}
		record = rec
		attempt.Payment = rec

		// The chain transaction must match the service's expectation
		// exactly, so the record's routing fields win over the order's.
		if rec.Metadata.ReceivingAddress != "" {
			effective.Destination = rec.Metadata.ReceivingAddress
		}
		if rec.Destination.AmountUnits != "" {
			effective.Amount = rec.Destination.AmountUnits
		}
		effective.Reference = rec.Metadata.Memo
	case DirectRoute:
		record = o.localRecord(order)
		attempt.Payment = record
	default:
		return nil, o.fail(attempt, errors.NewTransferError(
			errors.ROUTE_UNAVAILABLE,
			"unsupported route type",
			nil,
		))
	}

	if err := o.advance(attempt, StepBuilding); err != nil {
		return nil, err
	}
	unsigned, err := o.builder.Build(ctx, o.session.PublicKey, effective)
	if err != nil {
		return nil, o.fail(attempt, err)
	}

	if err := o.advance(attempt, StepSigning); err != nil {
		return nil, err
	}
	signed, err := o.signer.Sign(ctx, unsigned)
	if err != nil {
		return nil, o.fail(attempt, err)
	}

	if err := o.advance(attempt, StepSubmitting); err != nil {
		return nil, err
	}
	res, err := o.session.Ledger.SubmitTransaction(ctx, signed)
	if err != nil {
		if !errors.HasCode(err, errors.TRANSACTION_REJECTED) {
			err = errors.NewLedgerError(
				errors.TRANSACTION_REJECTED,
				"transaction submission failed",
				err,
			)
		}
		return nil, o.fail(attempt, err)
	}
	if res == nil || !res.Successful {
		rejected := errors.NewLedgerError(
			errors.TRANSACTION_REJECTED,
			"the ledger rejected the transaction",
			nil,
		)
		if res != nil {
			rejected = rejected.
				With("transaction_code", res.TransactionCode).
				With("operation_codes", res.OperationCodes)
		}
		return nil, o.fail(attempt, rejected)
	}

	attempt.Hash = res.Hash
	if err := o.advance(attempt, StepSucceeded); err != nil {
		return nil, err
	}

	result := &stellarpay.TransferResult{
		Hash:       res.Hash,
		Successful: true,
		Payment:    record,
	}

	o.persistReceipt(ctx, result)
	if o.cache != nil {
		// Balances changed; refresh is best effort and must not fail
		// the already-successful transfer.
		if _, _, err := o.cache.Refresh(ctx, o.session.PublicKey); err != nil {
			o.log.WithError(err).Warn("snapshot refresh after transfer failed")
		}
	}

	o.hooks.Trigger(HookSucceeded, attempt)
	o.log.WithFields(logrus.Fields{
		"hash": res.Hash,
		"mode": attempt.Mode,
	}).Info("transfer succeeded")

	return result, nil
}

// advance moves the attempt to the next step, validating the transition
// and emitting the step-changed hook.
func (o *Orchestrator) advance(attempt *Attempt, next Step) error {
	if err := ValidateTransition(attempt.Step, next); err != nil {
		return err
	}
	attempt.Step = next
	o.hooks.Trigger(HookStepChanged, attempt)
	o.log.WithFields(logrus.Fields{
		"step": string(next),
		"mode": attempt.Mode,
	}).Debug("transfer step changed")
	return nil
}

// fail moves the attempt to StepFailed, records the cause, and returns the
// error unchanged so callers see the original code.
func (o *Orchestrator) fail(attempt *Attempt, cause error) error {
	attempt.Err = cause
	if err := ValidateTransition(attempt.Step, StepFailed); err == nil {
		attempt.Step = StepFailed
		o.hooks.Trigger(HookStepChanged, attempt)
	}
	o.hooks.Trigger(HookFailed, attempt)
	o.log.WithError(cause).WithField("mode", attempt.Mode).Warn("transfer failed")
	return cause
}

// buildPayload assembles the intent service request. Zero-value display
// and preference fields are defaulted from the order so a minimal
// BridgedRoute still produces a complete record.
func (o *Orchestrator) buildPayload(order stellarpay.TransferOrder, route BridgedRoute) PaymentPayload {
	display := route.Display
	if display.Intent == "" {
		display.Intent = "transfer"
	}
	if display.PaymentValue == "" {
		display.PaymentValue = order.Amount
	}
	if display.Currency == "" {
		display.Currency = order.Asset.Code
	}

	chainID := route.ChainID
	if chainID == "" {
		chainID = stellarpay.ChainStellar
	}
	preferredChain := route.PreferredChain
	if preferredChain == "" {
		preferredChain = stellarpay.ChainStellar
	}
	preferredToken := route.PreferredToken
	if preferredToken == "" {
		preferredToken = order.Asset.Code
	}

	return PaymentPayload{
		Display: display,
		Destination: stellarpay.PaymentDestination{
			DestinationAddress: order.Destination,
			ChainID:            chainID,
			AmountUnits:        order.Amount,
			TokenSymbol:        order.Asset.Code,
			TokenAddress:       order.Asset.Issuer,
		},
		ExternalID:     route.ExternalID,
		Metadata:       route.Metadata,
		PreferredChain: preferredChain,
		PreferredToken: preferredToken,
	}
}

// localRecord fabricates a payment record for direct transfers so receipts
// have a uniform shape regardless of route.
func (o *Orchestrator) localRecord(order stellarpay.TransferOrder) *stellarpay.PaymentRecord {
	id, err := crypto.GenerateID(16)
	if err != nil {
		id = time.Now().UTC().Format("20060102150405.000000000")
	}

	return &stellarpay.PaymentRecord{
		ID:     "local-" + id,
		Source: "local",
		Status: "pending",
		Display: stellarpay.PaymentDisplay{
			Intent:       "transfer",
			PaymentValue: order.Amount,
			Currency:     order.Asset.Code,
		},
		Destination: stellarpay.PaymentDestination{
			DestinationAddress: order.Destination,
			ChainID:            stellarpay.ChainStellar,
			AmountUnits:        order.Amount,
			TokenSymbol:        order.Asset.Code,
			TokenAddress:       order.Asset.Issuer,
		},
		Metadata: stellarpay.PaymentMetadata{
			ReceivingAddress: order.Destination,
			Memo:             order.Reference,
		},
		CreatedAt: time.Now().UTC(),
	}
}

// persistReceipt saves a receipt for a successful transfer when a store is
// configured. Failures are logged and swallowed: the transfer already
// settled on the ledger.
func (o *Orchestrator) persistReceipt(ctx context.Context, result *stellarpay.TransferResult) {
	if o.receipts == nil || result.Payment == nil {
		return
	}

	receipt := &stellarpay.Receipt{
		PaymentID: result.Payment.ID,
		Hash:      result.Hash,
		Account:   o.session.PublicKey,
		Payment:   result.Payment,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.receipts.Save(ctx, receipt); err != nil {
		o.log.WithError(err).WithField("payment_id", receipt.PaymentID).Warn("receipt save failed")
	}
}
