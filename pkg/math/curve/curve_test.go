package curve_test

import (
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cggmp21/pkg/math/curve"
)

func TestScalarArithmeticRoundTrip(t *testing.T) {
	x, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	y, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	sum := x.Add(y)
	back := sum.Sub(y)
	assert.True(t, back.Equal(x))

	product := x.Mul(y)
	inv := y.Invert()
	assert.True(t, product.Mul(inv).Equal(x))

	data, err := x.MarshalBinary()
	require.NoError(t, err)
	restored := curve.NewScalar().SetBytes(data)
	assert.True(t, restored.Equal(x))
}

func TestPointMarshalRoundTrip(t *testing.T) {
	x, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	X := x.ActOnBase()

	data, err := X.MarshalBinary()
	require.NoError(t, err)

	var Y curve.Point
	require.NoError(t, Y.UnmarshalBinary(data))
	assert.True(t, X.Equal(&Y))
}

func TestNewRecoverableSignatureVerifies(t *testing.T) {
	x, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	X := x.ActOnBase()

	digest := sha256.Sum256([]byte("sign this message"))
	m := curve.FromReducedBytes(digest)

	k, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	R := k.ActOnBase()
	r, err := R.XCoordScalar()
	require.NoError(t, err)

	s := k.Invert().Mul(m.Add(r.Mul(x)))

	sig, err := curve.NewRecoverableSignature(R, r, s)
	require.NoError(t, err)
	assert.True(t, curve.Verify(X, m, sig.R, sig.S))

	wrongMessage := curve.FromReducedBytes(sha256.Sum256([]byte("a different message")))
	assert.False(t, curve.Verify(X, wrongMessage, sig.R, sig.S))
}
