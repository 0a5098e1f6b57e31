package dec_test

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
	"github.com/luxfi/cggmp21/pkg/zk/dec"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	sk, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	aux, _, err := pedersen.Generate(rand.Reader, sk.Phi(), sk.N())
	require.NoError(t, err)

	sigma, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	y := new(saferith.Int).SetNat(new(saferith.Nat).SetBytes(sigma.Bytes()))
	ct, rho := sk.PublicKey.Enc(rand.Reader, y)

	pub := dec.Public{C: ct, X: sigma, Prover: sk.PublicKey, Aux: aux}
	priv := dec.Private{Y: y, Rho: rho}

	transcript := hash.New([]byte("dec-test-session"))
	proof, err := dec.Prove(transcript.Clone(), pub, priv)
	require.NoError(t, err)

	assert.True(t, dec.Verify(transcript.Clone(), pub, proof))
}

func TestVerifyRejectsWrongStatement(t *testing.T) {
	sk, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	aux, _, err := pedersen.Generate(rand.Reader, sk.Phi(), sk.N())
	require.NoError(t, err)

	sigma, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	wrongSigma, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	y := new(saferith.Int).SetNat(new(saferith.Nat).SetBytes(sigma.Bytes()))
	ct, rho := sk.PublicKey.Enc(rand.Reader, y)

	pub := dec.Public{C: ct, X: sigma, Prover: sk.PublicKey, Aux: aux}
	priv := dec.Private{Y: y, Rho: rho}

	transcript := hash.New([]byte("dec-test-session"))
	proof, err := dec.Prove(transcript.Clone(), pub, priv)
	require.NoError(t, err)

	tamperedPub := dec.Public{C: ct, X: wrongSigma, Prover: sk.PublicKey, Aux: aux}
	assert.False(t, dec.Verify(transcript.Clone(), tamperedPub, proof))
}
