package mod_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/zk/mod"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	sk, err := paillier.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)

	pub := mod.Public{N: sk.N()}
	priv := mod.Private{P: sk.P(), Q: sk.Q()}

	transcript := hash.New([]byte("mod-test-session"))
	proof, err := mod.Prove(transcript.Clone(), pub, priv)
	require.NoError(t, err)

	assert.True(t, mod.Verify(transcript.Clone(), pub, proof))
}
