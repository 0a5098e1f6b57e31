// Package keygen implements the distributed key generation protocol:
// every party samples an additive ECDSA share with no trusted dealer,
// commits to it, and proves knowledge of it in zero knowledge before
// any share is revealed in the clear. The output, a KeyShareSeed, only
// becomes usable for signing once combined with Auxiliary's
// KeyShareChange via config.Combine.
package keygen

import (
	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/pool"
)

// FinalRoundNumber is the last round number this protocol reaches
// before producing an Output or Abort.
const FinalRoundNumber round.Number = 4

// Start returns a session.StartFunc that begins key generation for the
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
