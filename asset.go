package stellarpay

import (
	"sort"
	"strings"

	"github.com/stellar-pay/sdk-go/errors"
)

// Asset describes a supported asset: its code, display decimals, and issuer
// identity. Exactly one asset in a Registry is native (no issuer); all
// others require a non-empty issuer.
type Asset struct {
	Code     string
	Decimals int
	Issuer   string
	Native   bool
}

// Canonical returns the canonical string form: "native" for the native
// asset, "CODE:ISSUER" for issued assets.
func (a Asset) Canonical() string {
	if a.Native {
		return "native"
	}
	return a.Code + ":" + a.Issuer
}

// Registry is the static table of supported assets, defined at process
// start and immutable afterwards. Lookups are pure and safe for concurrent
// use.
type Registry struct {
	assets map[string]Asset
	native Asset
}

// NewRegistry builds a registry from the given descriptors. It enforces the
// registry invariants: exactly one native asset, and a non-empty issuer on
// every issued asset.
func NewRegistry(assets ...Asset) (*Registry, error) {
	r := &Registry{assets: make(map[string]Asset, len(assets))}
	nativeSeen := false
	for _, a := range assets {
		if a.Code == "" {
			return nil, errors.NewCoreError(errors.ASSET_NOT_FOUND, "asset code must not be empty", nil)
		}
		if a.Native {
			if nativeSeen {
				return nil, errors.NewCoreError(errors.ASSET_NOT_FOUND, "registry must contain exactly one native asset", nil)
			}
			nativeSeen = true
			r.native = a
		} else if a.Issuer == "" {
			return nil, errors.NewCoreError(errors.ASSET_NOT_FOUND, "issued asset "+a.Code+" requires an issuer", nil)
		}
		r.assets[strings.ToUpper(a.Code)] = a
	}
	if !nativeSeen {
		return nil, errors.NewCoreError(errors.ASSET_NOT_FOUND, "registry must contain a native asset", nil)
	}
	return r, nil
}

// DefaultRegistry returns the registry shipped with the SDK: native XLM and
// the Centre-issued USDC on the public network, both with 7 decimals.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Asset{Code: "XLM", Decimals: 7, Native: true},
		Asset{Code: "USDC", Decimals: 7, Issuer: "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"},
	)
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return r
}

// Lookup resolves an asset code (case-insensitive) to its descriptor.
func (r *Registry) Lookup(code string) (Asset, error) {
	a, ok := r.assets[strings.ToUpper(code)]
	if !ok {
		return Asset{}, errors.NewCoreError(errors.ASSET_NOT_FOUND, "unknown asset code: "+code, nil)
	}
	return a, nil
}

// Native returns the registry's native asset descriptor.
func (r *Registry) Native() Asset {
	return r.native
}

// All returns every registered descriptor, native first.
func (r *Registry) All() []Asset {
	out := []Asset{r.native}
	issued := make([]Asset, 0, len(r.assets))
	for _, a := range r.assets {
		if !a.Native {
			issued = append(issued, a)
		}
	}
	sort.Slice(issued, func(i, j int) bool { return issued[i].Code < issued[j].Code })
	return append(out, issued...)
}
