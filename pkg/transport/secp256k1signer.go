package transport

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/luxfi/cggmp21/pkg/party"
)

// Secp256k1Signer is the default Signer: a plain (non-threshold)
// ECDSA/secp256k1 key used purely to authenticate protocol traffic.
// It has nothing to do with the jointly-held key the protocol itself
// produces.
type Secp256k1Signer struct {
	key *secp256k1.PrivateKey
}

// NewSecp256k1Signer wraps an existing private key.
func NewSecp256k1Signer(key *secp256k1.PrivateKey) *Secp256k1Signer {
	return &Secp256k1Signer{key: key}
}

// Sign implements Signer.
func (s *Secp256k1Signer) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	sig := ecdsa.Sign(s.key, digest[:])
	return sig.Serialize(), nil
}

// Secp256k1Verifier checks signatures produced by a Secp256k1Signer.
type Secp256k1Verifier struct {
	pub *secp256k1.PublicKey
}

// NewSecp256k1Verifier wraps a public key.
func NewSecp256k1Verifier(pub *secp256k1.PublicKey) *Secp256k1Verifier {
	return &Secp256k1Verifier{pub: pub}
}

// Verify implements Verifier. The id argument is accepted for
// interface compatibility with VerifierSet but unused here: the key
// bound at construction IS the claim of identity.
func (v *Secp256k1Verifier) Verify(_ party.ID, message, signature []byte) error {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	digest := sha256.Sum256(message)
	if !sig.Verify(digest[:], v.pub) {
		return ErrBadSignature
	}
	return nil
}
