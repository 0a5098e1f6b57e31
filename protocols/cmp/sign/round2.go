package sign

import (
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/zk/dec"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// round2 collects every party's signature share, verifying each one's
// identifiable-abort proof as it arrives, then checks whether the
// aggregate signature verifies against the group's key.
type round2 struct {
	*round.Helper
	share *config.KeyShare

	m *curve.Scalar
	R *curve.Point
	r *curve.Scalar

	sigmas map[party.ID]*curve.Scalar
}

func (r *round2) Number() round.Number          { return 2 }
func (r *round2) MessageContent() round.Content { return nil }

func (r *round2) VerifyMessage(round.Message) error { return nil }
func (r *round2) StoreMessage(round.Message) error  { return nil }

func (r *round2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok {
		return round.ErrInvalidContent
	}
	if body.Sigma == nil || body.Ciphertext == nil || body.Proof == nil {
		return round.ErrNilFields
	}
	sender := r.share.Public[msg.From]
	if !dec.Verify(r.HashForID(msg.From), dec.Public{
		C:      body.Ciphertext,
		X:      body.Sigma,
		Prover: sender.Paillier,
		Aux:    sender.Aux,
	}, body.Proof) {
		return fmt.Errorf("sign: invalid signature-share proof from %s", msg.From)
	}
	r.sigmas[msg.From] = body.Sigma
	return nil
}

func (r *round2) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	s := curve.NewScalar()
	for _, sigma := range r.sigmas {
		s = s.Add(sigma)
	}

	sig, err := curve.NewRecoverableSignature(r.R, r.r, s)
	if err != nil {
		return &round.Abort{
			Helper: r.Helper,
			Err:    fmt.Errorf("sign: failed to build signature: %w", err),
		}, out, nil
	}
	if !curve.Verify(r.share.VerifyingKey(), r.m, sig.R, sig.S) {
		return &round.Abort{
			Helper: r.Helper,
			Err:    fmt.Errorf("sign: aggregate signature failed verification despite every identifiable-abort proof passing"),
		}, out, nil
	}

	return &round.Output{Helper: r.Helper, Result: sig}, out, nil
}
