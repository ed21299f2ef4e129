package stellarpay

import (
	"sort"
	"strconv"
	"strings"
)

// Balance is one (asset, amount) pair on an account. Amount is the decimal
// string reported by the ledger, carried verbatim.
type Balance struct {
	Asset  Asset
	Amount string
}

// AccountSnapshot is the latest known on-ledger state of an account. It is
// owned by the snapshot cache and replaced wholesale on refresh, never
// partially updated, so sequence number and balances are always consistent
// with each other.
type AccountSnapshot struct {
	PublicKey string
	Sequence  int64
	Balances  []Balance
}

// NativeBalance returns the native-asset balance, or "0" if the account
// holds none.
func (s *AccountSnapshot) NativeBalance() string {
	if s == nil {
		return "0"
	}
	for _, b := range s.Balances {
		if b.Asset.Native {
			return b.Amount
		}
	}
	return "0"
}

// HasTrustline reports whether the account already holds a balance entry
// for the given issued asset.
func (s *AccountSnapshot) HasTrustline(asset Asset) bool {
	if s == nil || asset.Native {
		return false
	}
	for _, b := range s.Balances {
		if b.Asset.Code == asset.Code && b.Asset.Issuer == asset.Issuer {
			return true
		}
	}
	return false
}

// NeedsActivation reports whether the account still needs funding before it
// can transact: no snapshot, no balances, or a zero native balance.
func (s *AccountSnapshot) NeedsActivation() bool {
	if s == nil || len(s.Balances) == 0 {
		return true
	}
	native := s.NativeBalance()
	f, err := strconv.ParseFloat(native, 64)
	return err != nil || f == 0
}

// FormattedBalance is a balance prepared for display.
type FormattedBalance struct {
	Code      string
	Amount    string
	Formatted string
	Decimals  int
	Native    bool
}

// FormatAmount trims a decimal amount string to at most the given number of
// fractional digits, dropping trailing zeros. Invalid input formats as "0".
func FormatAmount(amt string, decimals int) string {
	f, err := strconv.ParseFloat(amt, 64)
	if err != nil {
		return "0"
	}
	s := strconv.FormatFloat(f, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// FormatBalances prepares balances for display: native asset first, issued
// assets alphabetically by code.
func FormatBalances(balances []Balance) []FormattedBalance {
	out := make([]FormattedBalance, 0, len(balances))
	for _, b := range balances {
		out = append(out, FormattedBalance{
			Code:      b.Asset.Code,
			Amount:    b.Amount,
			Formatted: FormatAmount(b.Amount, b.Asset.Decimals),
			Decimals:  b.Asset.Decimals,
			Native:    b.Asset.Native,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Native != out[j].Native {
			return out[i].Native
		}
		return out[i].Code < out[j].Code
	})
	return out
}
