package presign

import (
	"crypto/rand"
	"fmt"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/pedersen"
	"github.com/luxfi/cggmp21/pkg/zk/affg"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// round2 collects every party's (K_i, G_i, Gamma_i), then runs the two
// MtA exchanges this party owes every peer: one scaled by gamma
// (feeding delta = k·gamma), one scaled by the ECDSA share (feeding
// chi = k·x).
type round2 struct {
	*round.Helper
	share *config.KeyShare

	k, gamma *curve.Scalar
	K        *paillier.Ciphertext

	ciphertexts map[party.ID]peerCiphertexts
	gammaPoints map[party.ID]*curve.Point
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
	if body.K == nil || body.G == nil || body.Gamma == nil {
		return round.ErrNilFields
	}
	r.ciphertexts[msg.From] = peerCiphertexts{K: body.K, G: body.G}
	r.gammaPoints[msg.From] = body.Gamma
	return nil
}

func (r *round2) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	next := &round3{
		Helper:      r.Helper,
		share:       r.share,
		k:           r.k,
		gamma:       r.gamma,
		K:           r.K,
		gammaPoints: r.gammaPoints,
		gammaAlpha:  make(map[party.ID]*curve.Scalar, r.N()),
		gammaBeta:   make(map[party.ID]*curve.Scalar, r.N()),
		chiAlpha:    make(map[party.ID]*curve.Scalar, r.N()),
		chiBeta:     make(map[party.ID]*curve.Scalar, r.N()),
	}

	selfPub := r.share.Public[r.SelfID()]
	gammaPoint := r.gamma.ActOnBase()

	for _, j := range r.OtherPartyIDs() {
		peer := r.share.Public[j]
		receiverK := r.ciphertexts[j].K

		gammaD, gammaY, gammaBeta, gammaProof, err := runMtA(r.HashForID(r.SelfID()),
			r.gamma, gammaPoint, selfPub.Paillier, peer.Paillier, peer.Aux, receiverK)
		if err != nil {
			return nil, nil, fmt.Errorf("presign: failed to build gamma-MtA for %s: %w", j, err)
		}
		chiD, chiY, chiBeta, chiProof, err := runMtA(r.HashForID(r.SelfID()),
			r.share.ECDSA, selfPub.ECDSA, selfPub.Paillier, peer.Paillier, peer.Aux, receiverK)
		if err != nil {
			return nil, nil, fmt.Errorf("presign: failed to build chi-MtA for %s: %w", j, err)
		}
		next.gammaBeta[j] = gammaBeta
		next.chiBeta[j] = chiBeta
		out = r.SendMessage(out, &mta3{
			GammaD: gammaD, GammaY: gammaY, GammaProof: gammaProof,
			ChiD: chiD, ChiY: chiY, ChiProof: chiProof,
		}, j)
	}
	return next, out, nil
}

// runMtA runs this party's half of a multiplicative-to-additive
// exchange: it holds value (bound to the public statement point) and
// scales the recipient's own ciphertext receiverCiphertext, producing
// an additive share beta for itself and a ciphertext D the recipient
// can decrypt to learn its own share of value*recipientSecret.
func runMtA(
	transcript *hash.Transcript,
	value *curve.Scalar,
	statement *curve.Point,
	senderPub, receiverPub *paillier.PublicKey,
	receiverAux *pedersen.Parameters,
	receiverCiphertext *paillier.Ciphertext,
) (D, Y *paillier.Ciphertext, beta *curve.Scalar, proof *affg.Proof, err error) {
	beta, err = curve.RandomScalar(rand.Reader)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to sample mta offset: %w", err)
	}
	betaInt := scalarToInt(beta)
	valueInt := scalarToInt(value)

	negBeta := new(saferith.Int).Set(betaInt).Neg(1)
	encNegBeta, rNonce := receiverPub.Enc(rand.Reader, negBeta)
	D = receiverPub.Add(receiverPub.Mul(receiverCiphertext, valueInt), encNegBeta)
	Y, r2Nonce := senderPub.Enc(rand.Reader, betaInt)

	proof, err = affg.Prove(transcript, affg.Public{
		C:        receiverCiphertext,
		D:        D,
		Y:        Y,
		X:        statement,
		Receiver: receiverPub,
		Sender:   senderPub,
		Aux:      receiverAux,
	}, affg.Private{
		X:    valueInt,
		Beta: betaInt,
		R:    rNonce,
		R2:   r2Nonce,
	})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return D, Y, beta, proof, nil
}
