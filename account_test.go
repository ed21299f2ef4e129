package stellarpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotWith(balances ...Balance) *AccountSnapshot {
	return &AccountSnapshot{
		PublicKey: "GSENDER",
		Sequence:  42,
		Balances:  balances,
	}
}

func TestNativeBalance(t *testing.T) {
	xlm := Asset{Code: "XLM", Decimals: 7, Native: true}
	usdc := Asset{Code: "USDC", Decimals: 7, Issuer: usdcIssuer}

	s := snapshotWith(
		Balance{Asset: usdc, Amount: "25.0000000"},
		Balance{Asset: xlm, Amount: "10.5000000"},
	)
	assert.Equal(t, "10.5000000", s.NativeBalance())

	assert.Equal(t, "0", snapshotWith().NativeBalance())

	var nilSnapshot *AccountSnapshot
	assert.Equal(t, "0", nilSnapshot.NativeBalance())
}

func TestHasTrustline(t *testing.T) {
	usdc := Asset{Code: "USDC", Decimals: 7, Issuer: usdcIssuer}
	otherUSDC := Asset{Code: "USDC", Decimals: 7, Issuer: "GOTHERISSUER"}

	s := snapshotWith(Balance{Asset: usdc, Amount: "1"})

	assert.True(t, s.HasTrustline(usdc))
	assert.False(t, s.HasTrustline(otherUSDC), "same code, different issuer is a different asset")
	assert.False(t, s.HasTrustline(Asset{Code: "XLM", Native: true}))

	var nilSnapshot *AccountSnapshot
	assert.False(t, nilSnapshot.HasTrustline(usdc))
}

func TestNeedsActivation(t *testing.T) {
	xlm := Asset{Code: "XLM", Decimals: 7, Native: true}

	assert.True(t, (*AccountSnapshot)(nil).NeedsActivation())
	assert.True(t, snapshotWith().NeedsActivation())
	assert.True(t, snapshotWith(Balance{Asset: xlm, Amount: "0.0000000"}).NeedsActivation())
	assert.False(t, snapshotWith(Balance{Asset: xlm, Amount: "1.5000000"}).NeedsActivation())
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in       string
		decimals int
		want     string
	}{
		{"10.5000000", 7, "10.5"},
		{"10.0000000", 7, "10"},
		{"0.0000001", 7, "0.0000001"},
		{"0", 7, "0"},
		{"not-a-number", 7, "0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in, tt.decimals), tt.in)
	}
}

func TestFormatBalancesOrdering(t *testing.T) {
	xlm := Asset{Code: "XLM", Decimals: 7, Native: true}
	usdc := Asset{Code: "USDC", Decimals: 7, Issuer: usdcIssuer}
	aqua := Asset{Code: "AQUA", Decimals: 7, Issuer: "GAQUA"}

	out := FormatBalances([]Balance{
		{Asset: usdc, Amount: "3.1400000"},
		{Asset: xlm, Amount: "100.0000000"},
		{Asset: aqua, Amount: "7.0000000"},
	})

	require.Len(t, out, 3)
	assert.Equal(t, "XLM", out[0].Code)
	assert.Equal(t, "AQUA", out[1].Code)
	assert.Equal(t, "USDC", out[2].Code)
	assert.Equal(t, "100", out[0].Formatted)
	assert.True(t, out[0].Native)
}
