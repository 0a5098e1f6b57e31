// Package presign implements Presigning: parties consume MtA exchanges
// over their nonce and ECDSA shares to jointly derive a nonce point R
// with nobody ever learning the aggregate nonce k, leaving Signing a
// single local round of arithmetic plus an identifiable-abort proof.
package presign

import (
	"github.com/cronokirby/saferith"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/pool"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// FinalRoundNumber is the last round number this protocol reaches
// before producing an Output or Abort.
const FinalRoundNumber round.Number = 4

// PresigningData is Presigning's output: the nonce point R plus this
// party's two secret scalars that Signing combines into a
// signature (KShare·m + r·ChiShare) without ever reconstructing k or
// the ECDSA key.
type PresigningData struct {
	ID       party.ID
	PartyIDs party.IDSlice
	R        *curve.Point
	KShare   *curve.Scalar
	ChiShare *curve.Scalar
}

// Start returns a session.StartFunc that begins presigning for share's
// party set, using self ID and final round number carried in info.
// info.FinalRoundNumber should be set to FinalRoundNumber.
func Start(info round.Info, share *config.KeyShare, pl *pool.Pool) func(sessionID []byte) (round.Session, error) {
	return func(sessionID []byte) (round.Session, error) {
		helper, err := round.NewHelper(info, sessionID, pl)
		if err != nil {
			return nil, err
		}
		return &round1{Helper: helper, share: share}, nil
	}
}

func scalarToInt(s *curve.Scalar) *saferith.Int {
	return new(saferith.Int).SetNat(new(saferith.Nat).SetBytes(s.Bytes()))
}

func intToScalar(i *saferith.Int) *curve.Scalar {
	s := curve.NewScalar().SetBytes(i.Abs().Bytes())
	if i.IsNegative() {
		s = s.Negate()
	}
	return s
}
