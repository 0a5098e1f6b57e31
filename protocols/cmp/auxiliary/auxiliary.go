// Package auxiliary implements the key-refresh round CGGMP'21 calls
// Aux-Info & Key-Refresh: every party samples fresh Paillier and
// ring-Pedersen material and a zero-sum row of ECDSA-share deltas, so
// that summing a KeyGen KeyShareSeed with an Auxiliary KeyShareChange
// (config.Combine) yields a share with forward secrecy against any
// party compromised before the refresh.
package auxiliary

import (
	"github.com/cronokirby/saferith"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/pool"
)

// FinalRoundNumber is the last round number this protocol reaches
// before producing an Output or Abort.
const FinalRoundNumber round.Number = 4

// Start returns a session.StartFunc that begins key-refresh for the
// party set and self ID carried in info. info.FinalRoundNumber should
// be set to FinalRoundNumber.
func Start(info round.Info, pl *pool.Pool) func(sessionID []byte) (round.Session, error) {
	return func(sessionID []byte) (round.Session, error) {
		helper, err := round.NewHelper(info, sessionID, pl)
		if err != nil {
			return nil, err
		}
		return &round1{Helper: helper}, nil
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
