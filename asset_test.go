package stellarpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellar-pay/sdk-go/errors"
)

const usdcIssuer = "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	native := r.Native()
	assert.Equal(t, "XLM", native.Code)
	assert.True(t, native.Native)
	assert.Equal(t, 7, native.Decimals)

	usdc, err := r.Lookup("USDC")
	require.NoError(t, err)
	assert.Equal(t, usdcIssuer, usdc.Issuer)
	assert.Equal(t, 7, usdc.Decimals)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	r := DefaultRegistry()

	for _, code := range []string{"usdc", "Usdc", "USDC"} {
		a, err := r.Lookup(code)
		require.NoError(t, err, code)
		assert.Equal(t, "USDC", a.Code)
	}
}

func TestLookupUnknownAsset(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Lookup("DOGE")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ASSET_NOT_FOUND))
}

func TestNewRegistryInvariants(t *testing.T) {
	tests := []struct {
		name   string
		assets []Asset
	}{
		{
			name:   "no native asset",
			assets: []Asset{{Code: "USDC", Decimals: 7, Issuer: usdcIssuer}},
		},
		{
			name: "two native assets",
			assets: []Asset{
				{Code: "XLM", Decimals: 7, Native: true},
				{Code: "XLM2", Decimals: 7, Native: true},
			},
		},
		{
			name: "issued asset without issuer",
			assets: []Asset{
				{Code: "XLM", Decimals: 7, Native: true},
				{Code: "USDC", Decimals: 7},
			},
		},
		{
			name: "empty code",
			assets: []Asset{
				{Code: "XLM", Decimals: 7, Native: true},
				{Code: "", Decimals: 7, Issuer: usdcIssuer},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.assets...)
			assert.Error(t, err)
		})
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "native", Asset{Code: "XLM", Native: true}.Canonical())
	assert.Equal(t, "USDC:"+usdcIssuer, Asset{Code: "USDC", Issuer: usdcIssuer}.Canonical())
}

func TestAllOrdersNativeFirst(t *testing.T) {
	r, err := NewRegistry(
		Asset{Code: "ZUSD", Decimals: 7, Issuer: "GZZZ"},
		Asset{Code: "XLM", Decimals: 7, Native: true},
		Asset{Code: "AQUA", Decimals: 7, Issuer: "GAAA"},
	)
	require.NoError(t, err)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "XLM", all[0].Code)
	assert.Equal(t, "AQUA", all[1].Code)
	assert.Equal(t, "ZUSD", all[2].Code)
}
