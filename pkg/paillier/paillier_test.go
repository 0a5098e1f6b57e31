package paillier_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cggmp21/pkg/paillier"
)

func generateTestKey(t *testing.T) *paillier.SecretKey {
	t.Helper()
	p, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	return p
}

func TestEncDecRoundTrip(t *testing.T) {
	sk := generateTestKey(t)

	m := new(saferith.Int).SetUint64(424242)
	ct, _ := sk.PublicKey.Enc(rand.Reader, m)

	recovered, err := sk.Dec(ct)
	require.NoError(t, err)
	assert.False(t, recovered.IsNegative())
	assert.Equal(t, 0, m.Abs().Big().Cmp(recovered.Abs().Big()))
}

func TestSecretKeyMarshalRoundTrip(t *testing.T) {
	sk := generateTestKey(t)

	data, err := sk.MarshalBinary()
	require.NoError(t, err)

	var restored paillier.SecretKey
	require.NoError(t, restored.UnmarshalBinary(data))

	m := new(saferith.Int).SetUint64(7)
	ct, _ := sk.PublicKey.Enc(rand.Reader, m)
	recovered, err := restored.Dec(ct)
	require.NoError(t, err)
	assert.False(t, recovered.IsNegative())
	assert.Equal(t, 0, m.Abs().Big().Cmp(recovered.Abs().Big()))
}

func TestCiphertextMarshalRoundTrip(t *testing.T) {
	sk := generateTestKey(t)
	m := new(saferith.Int).SetUint64(99)
	ct, _ := sk.PublicKey.Enc(rand.Reader, m)

	data, err := ct.MarshalBinary()
	require.NoError(t, err)

	restored := paillier.CiphertextFromBytes(data)
	assert.Equal(t, ct.Bytes(), restored.Bytes())
}
