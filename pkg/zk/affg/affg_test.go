package affg_test

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
	"github.com/luxfi/cggmp21/pkg/zk/affg"
)

// TestProveVerifyRoundTrip builds one MtA exchange exactly the way
// presign's round2 does: sender holds x (bound to X=x.G), receiver owns
// ciphertext C, and D/Y are assembled the same way runMtA computes them.
func TestProveVerifyRoundTrip(t *testing.T) {
	receiverSK, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	senderSK, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	aux, _, err := pedersen.Generate(rand.Reader, receiverSK.Phi(), receiverSK.N())
	require.NoError(t, err)

	x, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	X := x.ActOnBase()
	xInt := new(saferith.Int).SetNat(new(saferith.Nat).SetBytes(x.Bytes()))

	value := new(saferith.Int).SetUint64(777)
	C, _ := receiverSK.PublicKey.Enc(rand.Reader, value)

	beta, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	betaInt := new(saferith.Int).SetNat(new(saferith.Nat).SetBytes(beta.Bytes()))
	negBeta := new(saferith.Int).Set(betaInt).Neg(1)

	encNegBeta, rNonce := receiverSK.PublicKey.Enc(rand.Reader, negBeta)
	D := receiverSK.PublicKey.Add(receiverSK.PublicKey.Mul(C, xInt), encNegBeta)
	Y, r2Nonce := senderSK.PublicKey.Enc(rand.Reader, betaInt)

	pub := affg.Public{
		C: C, D: D, Y: Y, X: X,
		Receiver: receiverSK.PublicKey,
		Sender:   senderSK.PublicKey,
		Aux:      aux,
	}
	priv := affg.Private{X: xInt, Beta: betaInt, R: rNonce, R2: r2Nonce}

	transcript := hash.New([]byte("affg-test-session"))
	proof, err := affg.Prove(transcript.Clone(), pub, priv)
	require.NoError(t, err)

	assert.True(t, affg.Verify(transcript.Clone(), pub, proof))
}
