// Package signers provides convenience constructors for creating
// RawHashSigner implementations.
//
// It offers two patterns:
//   - FromSecret: Wraps a Stellar secret key (S...) using stellar/go keypair
//     to sign hashes locally. Intended for backends, bots, and tests.
//   - FromCallback: Wraps a custom signing function (e.g., embedded-wallet
//     provider, HSM, custodial API). Allows you to delegate signing to any
//     external infrastructure.
//
// Both return implementations of the stellarpay.RawHashSigner interface.
package signers
