package sign

import (
	"crypto/rand"
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/zk/dec"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
	"github.com/luxfi/cggmp21/protocols/cmp/presign"
)

// round1 never touches the wire: every signing share was already fixed
// by Presigning, so sigma_i = k_i*m + r*chi_i is pure local arithmetic.
// It also builds this party's identifiable-abort evidence up front, so
// round2 never needs to ask for it separately.
type round1 struct {
	*round.Helper
	share *config.KeyShare
	data  *presign.PresigningData
	m     *curve.Scalar
}

func (r *round1) Number() round.Number            { return 1 }
func (r *round1) MessageContent() round.Content   { return nil }
func (r *round1) VerifyMessage(round.Message) error { return nil }
func (r *round1) StoreMessage(round.Message) error  { return nil }

func (r *round1) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	rScalar, err := r.data.R.XCoordScalar()
	if err != nil {
		return nil, nil, fmt.Errorf("sign: failed to recover r from nonce point: %w", err)
	}
	sigma := r.data.KShare.Mul(r.m).Add(rScalar.Mul(r.data.ChiShare))

	self := r.share.Public[r.SelfID()]
	ciphertext, rho := self.Paillier.Enc(rand.Reader, scalarToInt(sigma))
	proof, err := dec.Prove(r.HashForID(r.SelfID()), dec.Public{
		C:      ciphertext,
		X:      sigma,
		Prover: self.Paillier,
		Aux:    self.Aux,
	}, dec.Private{
		Y:   scalarToInt(sigma),
		Rho: rho,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sign: failed to prove signature share: %w", err)
	}

	next := &round2{
		Helper: r.Helper,
		share:  r.share,
		m:      r.m,
		R:      r.data.R,
		r:      rScalar,
		sigmas: make(map[party.ID]*curve.Scalar, r.N()),
	}
	out = r.BroadcastMessage(out, &broadcast2{Sigma: sigma, Ciphertext: ciphertext, Proof: proof})
	return next, out, nil
}
