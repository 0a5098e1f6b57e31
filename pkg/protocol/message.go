// Package protocol defines the wire-level Message envelope exchanged
// between parties, independent of any particular transport, plus the
// error taxonomy every round reports through (see errors.go).
package protocol

import (
	"github.com/zeebo/blake3"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/party"
)

// Message is a single wire-level protocol message. Data holds the
// CBOR-encoded round.Content; the session layer is responsible for
// unmarshaling it into the concrete type the current round expects.
type Message struct {
	SSID        []byte
	From        party.ID
	To          party.ID
	Protocol    string
	RoundNumber round.Number
	Data        []byte
	Broadcast   bool
	// BroadcastVerification carries the hash of the previous broadcast
	// round's message set, letting the receiver detect equivocation one
	// round after the fact (per the echo-broadcast construction).
	BroadcastVerification []byte
}

// IsFor reports whether this message is addressed to id, either
// directly or as part of a broadcast to everyone.
func (m *Message) IsFor(id party.ID) bool {
	if m.Broadcast || m.To == "" {
		return m.From != id
	}
	return m.To == id
}

// Hash returns a content digest used to build the echo-broadcast
// verification hash; two honest parties must compute the same value
// for the same sender in the same round.
func (m *Message) Hash() []byte {
	h := blake3.New()
	_, _ = h.Write(m.SSID)
	_, _ = h.Write([]byte(m.From))
	_, _ = h.Write([]byte(m.To))
	_, _ = h.Write([]byte(m.Protocol))
	var roundBuf [4]byte
	roundBuf[0] = byte(m.RoundNumber)
	roundBuf[1] = byte(m.RoundNumber >> 8)
	roundBuf[2] = byte(m.RoundNumber >> 16)
	roundBuf[3] = byte(m.RoundNumber >> 24)
	_, _ = h.Write(roundBuf[:])
	_, _ = h.Write(m.Data)
	return h.Sum(nil)
}
