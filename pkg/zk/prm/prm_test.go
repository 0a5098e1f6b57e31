package prm_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/pedersen"
	"github.com/luxfi/cggmp21/pkg/zk/prm"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	sk, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	aux, lambda, err := pedersen.Generate(rand.Reader, sk.Phi(), sk.N())
	require.NoError(t, err)

	pub := prm.Public{N: sk.N(), S: aux.S(), T: aux.T()}
	priv := prm.Private{Lambda: lambda, Phi: sk.Phi()}

	transcript := hash.New([]byte("prm-test-session"))
	proof, err := prm.Prove(transcript.Clone(), pub, priv)
	require.NoError(t, err)

	assert.True(t, prm.Verify(transcript.Clone(), pub, proof))
}
