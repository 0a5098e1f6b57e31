package presign

import (
	"crypto/rand"
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// round1 never touches the wire: it samples this party's nonce share
// k_i and gamma share, encrypts both under its own Paillier key, and
// advances carrying the ciphertexts and Gamma_i = gamma_i·G.
type round1 struct {
	*round.Helper
	share *config.KeyShare
}

func (r *round1) Number() round.Number            { return 1 }
func (r *round1) MessageContent() round.Content   { return nil }
func (r *round1) VerifyMessage(round.Message) error { return nil }
func (r *round1) StoreMessage(round.Message) error  { return nil }

func (r *round1) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	k, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("presign: failed to sample nonce share: %w", err)
	}
	gamma, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("presign: failed to sample gamma share: %w", err)
	}

	self := r.share.Public[r.SelfID()]
	K, _ := self.Paillier.Enc(rand.Reader, scalarToInt(k))
	G, _ := self.Paillier.Enc(rand.Reader, scalarToInt(gamma))

	next := &round2{
		Helper:      r.Helper,
		share:       r.share,
		k:           k,
		gamma:       gamma,
		K:           K,
		ciphertexts: make(map[party.ID]peerCiphertexts, r.N()),
		gammaPoints: make(map[party.ID]*curve.Point, r.N()),
	}
	out = r.BroadcastMessage(out, &broadcast2{K: K, G: G, Gamma: gamma.ActOnBase()})
	return next, out, nil
}

type peerCiphertexts struct {
	K *paillier.Ciphertext
	G *paillier.Ciphertext
}
