package enc_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/pedersen"
	"github.com/luxfi/cggmp21/pkg/zk/enc"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	sk, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	aux, _, err := pedersen.Generate(rand.Reader, sk.Phi(), sk.N())
	require.NoError(t, err)

	k := new(saferith.Int).SetUint64(12345)
	ct, rho := sk.PublicKey.Enc(rand.Reader, k)

	pub := enc.Public{K: ct, Prover: sk.PublicKey, Aux: aux}
	priv := enc.Private{K: k, Rho: rho}

	transcript := hash.New([]byte("enc-test-session"))
	proof, err := enc.Prove(transcript.Clone(), pub, priv)
	require.NoError(t, err)

	assert.True(t, enc.Verify(transcript.Clone(), pub, proof))
}
