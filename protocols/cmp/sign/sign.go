// Package sign implements Signing: given a completed Presignature,
// turning a message hash into a full ECDSA signature is one round of
// local arithmetic followed by one broadcast round that reveals every
// party's share with a πdec proof that a fresh encryption of it decrypts
// to it. A share whose proof fails names its sender; a share that is
// wrong but carries a valid proof makes the aggregate signature fail
// verification, and the session aborts without naming a culprit.
package sign

import (
	"github.com/cronokirby/saferith"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/pool"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
	"github.com/luxfi/cggmp21/protocols/cmp/presign"
)

// FinalRoundNumber is the last round number this protocol reaches
// before producing an Output or Abort.
const FinalRoundNumber round.Number = 2

// Start returns a session.StartFunc that begins signing messageHash
// using share's key material and the given Presignature. info.SelfID
// and info.PartyIDs must match the party set data was generated for,
// and info.FinalRoundNumber should be set to FinalRoundNumber.
func Start(info round.Info, share *config.KeyShare, data *presign.PresigningData, messageHash []byte, pl *pool.Pool) func(sessionID []byte) (round.Session, error) {
	return func(sessionID []byte) (round.Session, error) {
		helper, err := round.NewHelper(info, sessionID, pl)
		if err != nil {
			return nil, err
		}
		var digest [32]byte
		copy(digest[:], messageHash)
		return &round1{
			Helper: helper,
			share:  share,
			data:   data,
			m:      curve.FromReducedBytes(digest),
		}, nil
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
