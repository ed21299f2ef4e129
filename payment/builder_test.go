package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

const (
	testSender      = "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"
	testDestination = "GD25B4QI6KWVDWXDW25CIM7EKGFG32TTRSJTBQRB2CWGSMYKDNBRSURX"
	testIssuer      = "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"
)

type fakeLedger struct {
	sequence   int64
	baseFee    int64
	paths      []stellarpay.Path
	pathsErr   error
	loadCalls  int
	feeCalls   int
	pathsCalls int
}

func (f *fakeLedger) LoadAccount(ctx context.Context, publicKey string) (*stellarpay.AccountSnapshot, error) {
	f.loadCalls++
	f.sequence++
	return &stellarpay.AccountSnapshot{PublicKey: publicKey, Sequence: f.sequence}, nil
}

func (f *fakeLedger) FetchBaseFee(ctx context.Context) (int64, error) {
	f.feeCalls++
	return f.baseFee, nil
}

func (f *fakeLedger) StrictSendPaths(ctx context.Context, sendAsset stellarpay.Asset, sendAmount string, destAssets []stellarpay.Asset) ([]stellarpay.Path, error) {
	f.pathsCalls++
	return f.paths, f.pathsErr
}

func (f *fakeLedger) SubmitTransaction(ctx context.Context, tx *stellarpay.SignedTransaction) (*stellarpay.SubmitResult, error) {
	return &stellarpay.SubmitResult{Successful: true}, nil
}

var _ stellarpay.LedgerClient = (*fakeLedger)(nil)

func testRegistry(t *testing.T) *stellarpay.Registry {
	t.Helper()
	r, err := stellarpay.NewRegistry(
		stellarpay.Asset{Code: "XLM", Decimals: 7, Native: true},
		stellarpay.Asset{Code: "USDC", Decimals: 7, Issuer: testIssuer},
	)
	require.NoError(t, err)
	return r
}

func usdcOrder(amt, reference string) stellarpay.TransferOrder {
	return stellarpay.TransferOrder{
		Destination: testDestination,
		Asset:       stellarpay.Asset{Code: "USDC", Decimals: 7, Issuer: testIssuer},
		Amount:      amt,
		Reference:   reference,
	}
}

func TestBuildCarriesAmountVerbatim(t *testing.T) {
	builder := NewBuilder(&fakeLedger{baseFee: 100}, testRegistry(t), network.TestNetworkPassphrase)

	unsigned, err := builder.Build(context.Background(), testSender, usdcOrder("10.000000", ""))
	require.NoError(t, err)

	tx := unsigned.Tx()
	require.Len(t, tx.Operations(), 1)
	op, ok := tx.Operations()[0].(*txnbuild.Payment)
	require.True(t, ok)
	assert.Equal(t, "10.000000", op.Amount, "amount must not be reformatted")
	assert.Equal(t, testDestination, op.Destination)
	assert.Equal(t, txnbuild.CreditAsset{Code: "USDC", Issuer: testIssuer}, op.Asset)
}

func TestBuildNativeAsset(t *testing.T) {
	builder := NewBuilder(&fakeLedger{baseFee: 100}, testRegistry(t), network.TestNetworkPassphrase)

	order := usdcOrder("1.5", "")
	order.Asset = stellarpay.Asset{Code: "XLM", Decimals: 7, Native: true}

	unsigned, err := builder.Build(context.Background(), testSender, order)
	require.NoError(t, err)

	op := unsigned.Tx().Operations()[0].(*txnbuild.Payment)
	assert.Equal(t, txnbuild.NativeAsset{}, op.Asset)
}

func TestBuildMemoOnlyWithReference(t *testing.T) {
	builder := NewBuilder(&fakeLedger{baseFee: 100}, testRegistry(t), network.TestNetworkPassphrase)

	unsigned, err := builder.Build(context.Background(), testSender, usdcOrder("1", ""))
	require.NoError(t, err)
	assert.Nil(t, unsigned.Tx().Memo(), "no reference means no memo field at all")

	unsigned, err = builder.Build(context.Background(), testSender, usdcOrder("1", "ref-123"))
	require.NoError(t, err)
	assert.Equal(t, txnbuild.MemoText("ref-123"), unsigned.Tx().Memo())
}

func TestBuildMemoTooLong(t *testing.T) {
	builder := NewBuilder(&fakeLedger{baseFee: 100}, testRegistry(t), network.TestNetworkPassphrase)

	_, err := builder.Build(context.Background(), testSender, usdcOrder("1", strings.Repeat("x", 29)))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.MEMO_TOO_LONG))
}

func TestBuildValidation(t *testing.T) {
	ledger := &fakeLedger{baseFee: 100}
	builder := NewBuilder(ledger, testRegistry(t), network.TestNetworkPassphrase)

	t.Run("invalid destination", func(t *testing.T) {
		order := usdcOrder("1", "")
		order.Destination = "not-an-address"
		_, err := builder.Build(context.Background(), testSender, order)
		assert.True(t, errors.HasCode(err, errors.INVALID_DESTINATION))
	})

	t.Run("invalid amount", func(t *testing.T) {
		_, err := builder.Build(context.Background(), testSender, usdcOrder("1,5", ""))
		assert.True(t, errors.HasCode(err, errors.INVALID_AMOUNT))
	})

	t.Run("unknown asset", func(t *testing.T) {
		order := usdcOrder("1", "")
		order.Asset = stellarpay.Asset{Code: "DOGE"}
		_, err := builder.Build(context.Background(), testSender, order)
		assert.True(t, errors.HasCode(err, errors.ASSET_NOT_FOUND))
	})

	// Validation failures happen before any network call.
	assert.Zero(t, ledger.loadCalls)
	assert.Zero(t, ledger.feeCalls)
}

func TestBuildFetchesFreshSequenceAndFee(t *testing.T) {
	ledger := &fakeLedger{baseFee: 250}
	builder := NewBuilder(ledger, testRegistry(t), network.TestNetworkPassphrase)

	first, err := builder.Build(context.Background(), testSender, usdcOrder("1", ""))
	require.NoError(t, err)
	second, err := builder.Build(context.Background(), testSender, usdcOrder("1", ""))
	require.NoError(t, err)

	assert.Equal(t, 2, ledger.loadCalls)
	assert.Equal(t, 2, ledger.feeCalls)
	assert.Greater(t, second.Tx().SequenceNumber(), first.Tx().SequenceNumber())
	assert.Equal(t, int64(250), first.Tx().BaseFee())
}

func TestBuildEnforcesFeeFloor(t *testing.T) {
	builder := NewBuilder(&fakeLedger{baseFee: 1}, testRegistry(t), network.TestNetworkPassphrase)

	unsigned, err := builder.Build(context.Background(), testSender, usdcOrder("1", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(txnbuild.MinBaseFee), unsigned.Tx().BaseFee())
}

func TestBuildSetsValidityWindow(t *testing.T) {
	builder := NewBuilder(&fakeLedger{baseFee: 100}, testRegistry(t), network.TestNetworkPassphrase, WithTimeout(60))

	unsigned, err := builder.Build(context.Background(), testSender, usdcOrder("1", ""))
	require.NoError(t, err)

	now := time.Now().Unix()
	bounds := unsigned.Tx().Timebounds()
	assert.GreaterOrEqual(t, bounds.MaxTime, now)
	assert.LessOrEqual(t, bounds.MaxTime, now+61)
}
