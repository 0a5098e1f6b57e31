package config

import (
	"crypto/rand"
	"fmt"

	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/pedersen"
)

// NewCentralized builds a full set of KeyShares for partyIDs from a
// single already-known ECDSA secret, splitting it additively across
// parties and generating fresh Paillier, ring-Pedersen, and ElGamal
// material for each. It exists for tests that need a working KeyShare
// set without driving KeyGen and Auxiliary end to end; it is not
// something a production signer calls, since a centralized secret
// defeats every guarantee distributed KeyGen provides.
func NewCentralized(partyIDs party.IDSlice, secret *curve.Scalar) (map[party.ID]*KeyShare, error) {
	n := len(partyIDs)
	if n == 0 {
		return nil, fmt.Errorf("config: NewCentralized requires at least one party")
	}

	shares := make(map[party.ID]*curve.Scalar, n)
	remaining := secret
	for i, id := range partyIDs {
		if i == n-1 {
			shares[id] = remaining
			break
		}
		s, err := curve.RandomScalar(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("config: failed to split secret for %s: %w", id, err)
		}
		shares[id] = s
		remaining = remaining.Sub(s)
	}

	publics := make(map[party.ID]*Public, n)
	secretKeys := make(map[party.ID]*paillier.SecretKey, n)
	elGamalSecrets := make(map[party.ID]*curve.Scalar, n)
	for _, id := range partyIDs {
		sk, err := paillier.GenerateKeyPair(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("config: failed to generate paillier modulus for %s: %w", id, err)
		}
		aux, _, err := pedersen.Generate(rand.Reader, sk.Phi(), sk.N())
		if err != nil {
			return nil, fmt.Errorf("config: failed to generate ring-pedersen parameters for %s: %w", id, err)
		}
		y, err := curve.RandomScalar(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("config: failed to sample elgamal share for %s: %w", id, err)
		}
		secretKeys[id] = sk
		elGamalSecrets[id] = y
		publics[id] = &Public{
			ECDSA:    shares[id].ActOnBase(),
			Paillier: sk.PublicKey,
			ElGamal:  y.ActOnBase(),
			Aux:      aux,
		}
	}

	result := make(map[party.ID]*KeyShare, n)
	for _, id := range partyIDs {
		result[id] = &KeyShare{
			ID:       id,
			PartyIDs: partyIDs,
			ECDSA:    shares[id],
			Paillier: secretKeys[id],
			ElGamal:  elGamalSecrets[id],
			Public:   publics,
		}
	}
	for _, id := range partyIDs {
		if err := result[id].Validate(); err != nil {
			return nil, fmt.Errorf("config: centralized share for %s failed validation: %w", id, err)
		}
	}
	return result, nil
}
