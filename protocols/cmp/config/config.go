// Package config holds the persistent identity a party carries once
// KeyGen and Auxiliary/Key-Refresh have both completed: KeyShareSeed
// (KeyGen's output), KeyShareChange (Auxiliary's output), and the
// combined KeyShare a party actually signs with.
package config

import (
	"errors"
	"fmt"

	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/pedersen"
	"github.com/luxfi/cggmp21/pkg/protocol"
)

// Public is one party's published key material: its ECDSA share point,
// Paillier public key, ElGamal-like point, and ring-Pedersen parameters.
type Public struct {
	ECDSA    *curve.Point
	Paillier *paillier.PublicKey
	ElGamal  *curve.Point
	Aux      *pedersen.Parameters
}

func (p *Public) validate() error {
	if p == nil || p.ECDSA == nil || p.Paillier == nil || p.ElGamal == nil || p.Aux == nil {
		return errors.New("config: public data has a nil field")
	}
	if p.ECDSA.IsIdentity() {
		return errors.New("config: public ECDSA share is identity")
	}
	return nil
}

// KeyShareSeed is KeyGen's raw output: this party's secret scalar and
// every party's public share point, keyed by party ID.
type KeyShareSeed struct {
	ID           party.ID
	PartyIDs     party.IDSlice
	ECDSA        *curve.Scalar
	PublicShares map[party.ID]*curve.Point
}

// KeyShareChange is Auxiliary/Key-Refresh's output delta: a scalar to add
// to the secret share, a point to add to every public share (summing to
// the identity across all parties, since a refresh must not move the
// group key), and the fresh aux info each party now publishes.
type KeyShareChange struct {
	ID                 party.ID
	PartyIDs           party.IDSlice
	SecretShareChange  *curve.Scalar
	PublicShareChanges map[party.ID]*curve.Point
	Paillier           *paillier.SecretKey
	ElGamal            *curve.Scalar
	Public             map[party.ID]*Public
}

// KeyShare is a party's persistent identity after KeyGen+Auxiliary: its
// own secret material plus every party's public material.
type KeyShare struct {
	ID       party.ID
	PartyIDs party.IDSlice
	ECDSA    *curve.Scalar
	Paillier *paillier.SecretKey
	ElGamal  *curve.Scalar
	Public   map[party.ID]*Public
}

// Combine asserts that seed and change agree on party index and party
// set — the check spec.md §9's Open Question calls for and the sampled
// sources omitted — then sums them into a KeyShare.
func Combine(seed *KeyShareSeed, change *KeyShareChange) (*KeyShare, error) {
	if seed == nil || change == nil {
		return nil, errors.New("config: Combine requires a non-nil seed and change")
	}
	if seed.ID != change.ID {
		return nil, &protocol.LocalError{Reason: fmt.Sprintf("config: seed is for party %s but change is for party %s", seed.ID, change.ID)}
	}
	if len(seed.PartyIDs) != len(change.PartyIDs) {
		return nil, &protocol.LocalError{Reason: fmt.Sprintf("config: seed has %d parties but change has %d", len(seed.PartyIDs), len(change.PartyIDs))}
	}
	for i, id := range seed.PartyIDs {
		if change.PartyIDs[i] != id {
			return nil, &protocol.LocalError{Reason: fmt.Sprintf("config: seed and change disagree on party set at index %d", i)}
		}
	}

	ecdsa := seed.ECDSA.Add(change.SecretShareChange)
	public := make(map[party.ID]*Public, len(seed.PartyIDs))
	for _, id := range seed.PartyIDs {
		seedPoint, ok := seed.PublicShares[id]
		if !ok {
			return nil, fmt.Errorf("config: seed is missing public share for %s", id)
		}
		delta, ok := change.PublicShareChanges[id]
		if !ok {
			return nil, fmt.Errorf("config: change is missing public share delta for %s", id)
		}
		aux, ok := change.Public[id]
		if !ok {
			return nil, fmt.Errorf("config: change is missing aux info for %s", id)
		}
		public[id] = &Public{
			ECDSA:    seedPoint.Add(delta),
			Paillier: aux.Paillier,
			ElGamal:  aux.ElGamal,
			Aux:      aux.Aux,
		}
	}

	share := &KeyShare{
		ID:       seed.ID,
		PartyIDs: seed.PartyIDs,
		ECDSA:    ecdsa,
		Paillier: change.Paillier,
		ElGamal:  change.ElGamal,
		Public:   public,
	}
	if err := share.Validate(); err != nil {
		return nil, fmt.Errorf("config: combined key share is invalid: %w", err)
	}
	return share, nil
}

// VerifyingKey returns the group's public ECDSA key, the sum of every
// party's public share.
func (k *KeyShare) VerifyingKey() *curve.Point {
	sum := curve.NewIdentityPoint()
	for _, id := range k.PartyIDs {
		sum = sum.Add(k.Public[id].ECDSA)
	}
	return sum.ToVerifyingKey()
}

// Validate checks internal consistency: the caller's secret share
// matches its published point, and every party's public data is
// well-formed.
func (k *KeyShare) Validate() error {
	if k.ECDSA == nil || k.Paillier == nil || k.ElGamal == nil {
		return errors.New("config: key share has a nil secret field")
	}
	if k.ECDSA.IsZero() {
		return errors.New("config: secret ECDSA share is zero")
	}
	self, ok := k.Public[k.ID]
	if !ok {
		return fmt.Errorf("config: no public data for self (%s)", k.ID)
	}
	if !k.ECDSA.ActOnBase().Equal(self.ECDSA) {
		return errors.New("config: secret ECDSA share does not match its own public share")
	}
	for id, pub := range k.Public {
		if err := pub.validate(); err != nil {
			return fmt.Errorf("config: party %s: %w", id, err)
		}
	}
	if k.VerifyingKey().IsIdentity() {
		return errors.New("config: verifying key is the identity point")
	}
	return nil
}
