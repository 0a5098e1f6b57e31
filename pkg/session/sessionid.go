package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/luxfi/cggmp21/pkg/party"
)

// DeriveSessionID derives a session ID deterministically from a
// protocol name, the sorted party set, and a caller-supplied nonce
// (typically a timestamp or a counter), via HKDF-SHA256. This lets two
// honest callers agree on the same session ID out of band without
// exchanging one explicitly, as long as they agree on protocolID,
// partyIDs and nonce — spec.md §6's suggested shared_randomness
// derivation.
func DeriveSessionID(protocolID string, partyIDs party.IDSlice, nonce []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("session: DeriveSessionID size must be positive, got %d", size)
	}
	ikm := sha256.New()
	ikm.Write([]byte(protocolID))
	for _, id := range partyIDs {
		ikm.Write([]byte(id))
	}
	reader := hkdf.New(sha256.New, ikm.Sum(nil), nonce, []byte("cggmp21/session-id"))
	out := make([]byte, size)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("session: failed to derive session id: %w", err)
	}
	return out, nil
}
