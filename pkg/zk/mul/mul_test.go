package mul_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/zk/mul"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	sk, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	x := new(saferith.Int).SetUint64(41)
	y := new(saferith.Int).SetUint64(53)

	X, _ := sk.PublicKey.Enc(rand.Reader, x)
	Y, rhoY := sk.PublicKey.Enc(rand.Reader, y)
	Z := sk.PublicKey.Mul(X, y)
	rho := new(saferith.Nat).SetUint64(1)

	pub := mul.Public{X: X, Y: Y, Z: Z, Prover: sk.PublicKey}
	priv := mul.Private{Y: y, RhoY: rhoY, Rho: rho}

	transcript := hash.New([]byte("mul-test-session"))
	proof, err := mul.Prove(transcript.Clone(), pub, priv)
	require.NoError(t, err)

	assert.True(t, mul.Verify(transcript.Clone(), pub, proof))
}
