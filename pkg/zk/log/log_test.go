package log_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/pedersen"
	"github.com/luxfi/cggmp21/pkg/zk/log"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	sk, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	aux, _, err := pedersen.Generate(rand.Reader, sk.Phi(), sk.N())
	require.NoError(t, err)

	x, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	X := x.ActOnBase()
	xInt := new(saferith.Int).SetNat(new(saferith.Nat).SetBytes(x.Bytes()))
	ct, rho := sk.PublicKey.Enc(rand.Reader, xInt)

	pub := log.Public{C: ct, X: X, Prover: sk.PublicKey, Aux: aux}
	priv := log.Private{X: xInt, Rho: rho}

	transcript := hash.New([]byte("log-test-session"))
	proof, err := log.Prove(transcript.Clone(), pub, priv)
	require.NoError(t, err)

	assert.True(t, log.Verify(transcript.Clone(), pub, proof))
}
