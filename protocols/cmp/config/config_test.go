package config_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

func testIDs() party.IDSlice {
	return party.NewIDSlice([]party.ID{"alice", "bob", "carol"})
}

func TestNewCentralizedProducesValidShares(t *testing.T) {
	ids := testIDs()
	secret, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	shares, err := config.NewCentralized(ids, secret)
	require.NoError(t, err)
	require.Len(t, shares, len(ids))

	want := secret.ActOnBase()
	for _, id := range ids {
		share := shares[id]
		require.NoError(t, share.Validate())
		assert.True(t, share.VerifyingKey().Equal(want))
	}
}

func TestCombineMergesSeedAndChange(t *testing.T) {
	ids := testIDs()
	secret, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	shares, err := config.NewCentralized(ids, secret)
	require.NoError(t, err)

	self := ids[0]
	share := shares[self]

	publicShares := make(map[party.ID]*curve.Point, len(ids))
	for _, id := range ids {
		publicShares[id] = shares[id].Public[id].ECDSA
	}
	seed := &config.KeyShareSeed{
		ID:           self,
		PartyIDs:     ids,
		ECDSA:        share.ECDSA,
		PublicShares: publicShares,
	}

	zeroDeltas := make(map[party.ID]*curve.Point, len(ids))
	for _, id := range ids {
		zeroDeltas[id] = curve.NewIdentityPoint()
	}
	change := &config.KeyShareChange{
		ID:                 self,
		PartyIDs:           ids,
		SecretShareChange:  curve.NewScalar(),
		PublicShareChanges: zeroDeltas,
		Paillier:           share.Paillier,
		ElGamal:            share.ElGamal,
		Public:             share.Public,
	}

	combined, err := config.Combine(seed, change)
	require.NoError(t, err)
	require.NoError(t, combined.Validate())
	assert.True(t, combined.ECDSA.Equal(share.ECDSA))
	assert.True(t, combined.VerifyingKey().Equal(share.VerifyingKey()))
}

func TestCombineRejectsMismatchedPartySets(t *testing.T) {
	ids := testIDs()
	secret, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	shares, err := config.NewCentralized(ids, secret)
	require.NoError(t, err)

	seed := &config.KeyShareSeed{
		ID:       ids[0],
		PartyIDs: ids,
		ECDSA:    shares[ids[0]].ECDSA,
	}
	change := &config.KeyShareChange{
		ID:       ids[0],
		PartyIDs: ids[:2],
	}

	_, err = config.Combine(seed, change)
	assert.Error(t, err)
}
