package sch_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/zk/sch"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	x, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	X := x.ActOnBase()

	r, err := sch.NewRandomness(rand.Reader)
	require.NoError(t, err)

	transcript := hash.New([]byte("sch-test-session"))
	proof, err := sch.Prove(transcript.Clone(), r, x, X)
	require.NoError(t, err)

	assert.True(t, sch.Verify(transcript.Clone(), proof, X))
}

func TestVerifyRejectsWrongStatement(t *testing.T) {
	x, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	X := x.ActOnBase()

	other, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	wrongX := other.ActOnBase()

	r, err := sch.NewRandomness(rand.Reader)
	require.NoError(t, err)

	transcript := hash.New([]byte("sch-test-session"))
	proof, err := sch.Prove(transcript.Clone(), r, x, X)
	require.NoError(t, err)

	assert.False(t, sch.Verify(transcript.Clone(), proof, wrongX))
}
