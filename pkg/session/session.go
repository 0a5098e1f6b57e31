// Package session drives a single protocol execution to completion.
// It owns exactly the four operations spec.md §4.4 names — Start,
// Outbound, Ingest, TryFinalize — and nothing else: no goroutines, no
// channels, no blocking I/O. The caller pumps it: feed inbound wire
// messages to Ingest, drain newly produced traffic from Outbound, call
// TryFinalize to attempt advancing once it looks like every message for
// the current round has arrived.
//
// This mirrors the bookkeeping of a classic channel-pushing handler
// (duplicate detection, per-round message/broadcast accumulators, echo
// consistency hashing, queued-message replay across round boundaries)
// but replaces the blocking channel write at its core with a plain
// returned slice, satisfying the non-suspending, single-threaded
// requirement every round here is built against.
package session

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/protocol"
	"github.com/luxfi/cggmp21/pkg/transport"
)

// StartFunc creates the first round of a protocol, bound to a
// session ID that must be unique across every concurrent execution
// sharing a transport.
type StartFunc func(sessionID []byte) (round.Session, error)

// Session drives one protocol execution for one local party.
type Session struct {
	protocolID string
	signer     transport.Signer
	verifiers  transport.VerifierSet

	current round.Session
	rounds  map[round.Number]round.Session

	messages        map[round.Number]map[party.ID]*protocol.Message
	broadcast       map[round.Number]map[party.ID]*protocol.Message
	broadcastHashes map[round.Number][]byte

	pending []*protocol.Message
	err     *protocol.Error
	result  interface{}
}

// Start creates round 1 via create, finalizes it at once, and returns the
// Session; any messages round 1 produces immediately (e.g. a commitment
// it can compute without hearing from anyone else) are queued for
// Outbound.
func Start(create StartFunc, sessionID []byte, signer transport.Signer, verifiers transport.VerifierSet) (*Session, error) {
	r, err := create(sessionID)
	if err != nil {
		return nil, &protocol.LocalError{Reason: "failed to create round 1", Err: err}
	}
	s := &Session{
		protocolID:      r.ProtocolID(),
		signer:          signer,
		verifiers:       verifiers,
		current:         r,
		rounds:          map[round.Number]round.Session{r.Number(): r},
		messages:        make(map[round.Number]map[party.ID]*protocol.Message),
		broadcast:       make(map[round.Number]map[party.ID]*protocol.Message),
		broadcastHashes: make(map[round.Number][]byte),
	}
	s.initRoundStorage(r)

	// Round 1 of every protocol here depends only on local state (a
	// party's own randomness, its existing KeyShare, its PresigningData)
	// and never on a peer's input, so it finalizes unconditionally,
	// immediately producing the real first wire round (which carries the
	// round-1 commitment or equivalent) as s.current.
	rr, ok := r.(round.Round)
	if !ok {
		return s, nil
	}
next, outMsgs, err := rr.Finalize(nil)
	if err != nil {
		s.abort(err)
		return s, nil
	}
	switch R := next.(type) {
	case *round.Abort:
		if err := s.emit(r, outMsgs); err != nil {
			s.abort(err)
			return s, nil
		}
		s.abort(&protocol.RemoteError{Culprits: R.Culprits, Reason: R.Err.Error()})
		return s, nil
	case *round.Output:
		if err := s.emit(r, outMsgs); err != nil {
			s.abort(err)
			return s, nil
		}
		s.result = R.Result
		return s, nil
	}
	// initRoundStorage must run before emit: emit self-delivers any
	// broadcast round 1 produced into round 2's storage via store(),
	// which only writes into maps that already exist.
	s.initRoundStorage(next)
	if err := s.emit(r, outMsgs); err != nil {
		s.abort(err)
		return s, nil
	}
	s.current = next
	s.rounds[next.Number()] = next
	if err := s.replayQueued(next.Number()); err != nil {
		s.abort(err)
		return s, nil
	}
	return s, nil
}

// Outbound drains and returns every message produced since the last
// call, wrapped and signed as transport.SignedMessage envelopes.
func (s *Session) Outbound() ([]*transport.SignedMessage, error) {
	out := make([]*transport.SignedMessage, 0, len(s.pending))
	for _, m := range s.pending {
		sm := &transport.SignedMessage{
			SessionID: m.SSID,
			RoundID:   uint32(m.RoundNumber),
			Kind:      transport.Direct,
			From:      m.From,
			To:        m.To,
			Payload:   m.Data,
		}
		if m.Broadcast {
			sm.Kind = transport.Echo
		}
		if s.signer != nil {
			sig, err := s.signer.Sign(sm.SigningInput())
			if err != nil {
				return nil, &protocol.LocalError{Reason: "failed to sign outbound message", Err: err}
			}
			sm.Signature = sig
		}
		out = append(out, sm)
	}
	s.pending = nil
	return out, nil
}

// Result returns the protocol's output if it has completed, or the
// terminating error otherwise.
func (s *Session) Result() (interface{}, error) {
	if s.result != nil {
		return s.result, nil
	}
	if s.err != nil {
		return nil, *s.err
	}
	return nil, fmt.Errorf("session: protocol has not finished")
}

// Ingest authenticates and stores an inbound wire envelope, attempting
// to finalize the current round if this message completes it. It never
// blocks: a message for a future round is buffered until the session
// catches up to it.
func (s *Session) Ingest(sm *transport.SignedMessage) error {
	if s.err != nil || s.result != nil {
		return nil
	}
	if err := s.authenticate(sm); err != nil {
		s.abort(&protocol.RemoteError{Culprits: []party.ID{sm.From}, Reason: "signature verification failed"})
		return err
	}

	msg := &protocol.Message{
		SSID:        sm.SessionID,
		From:        sm.From,
		To:          sm.To,
		Protocol:    s.protocolID,
		RoundNumber: round.Number(sm.RoundID),
		Data:        sm.Payload,
		Broadcast:   sm.Kind != transport.Direct,
	}

	if !s.canAccept(msg) {
		return nil
	}
	if s.queueFor(msg) == nil {
		// No storage exists yet for this round: create it so the message
		// is buffered until replayQueued drains it.
		q := make(map[party.ID]*protocol.Message)
		if msg.Broadcast {
			s.broadcast[msg.RoundNumber] = q
		} else {
			s.messages[msg.RoundNumber] = q
		}
	}
	if s.duplicate(msg) {
		return &protocol.RemoteError{Culprits: []party.ID{msg.From}, Reason: "duplicate message"}
	}

	s.store(msg)
	if s.current.Number() != msg.RoundNumber {
		return nil
	}

	if err := s.verify(msg); err != nil {
		s.abort(err)
		return err
	}

	_, _ = s.TryFinalize()
	return nil
}

// TryFinalize attempts to advance the current round if every message it
// expects has arrived, recursing through any subsequent rounds that
// also turn out to be immediately satisfiable (e.g. because their
// inputs were already queued). It returns whether the session advanced
// at least one round.
func (s *Session) TryFinalize() (bool, error) {
	advanced := false
	for {
		if s.err != nil || s.result != nil {
			return advanced, nil
		}
		if !s.receivedAll() {
			return advanced, nil
		}
		if !s.checkBroadcastHash() {
			s.abort(&protocol.RemoteError{Reason: "broadcast echo mismatch"})
			return advanced, *s.err
		}

		r, ok := s.current.(round.Round)
		if !ok {
			return advanced, nil
		}
	next, outMsgs, err := r.Finalize(nil)
		if err != nil {
			s.abort(err)
			return advanced, err
		}

		switch R := next.(type) {
		case *round.Abort:
			if err := s.emit(s.current, outMsgs); err != nil {
				s.abort(err)
				return advanced, err
			}
			s.abort(&protocol.RemoteError{Culprits: R.Culprits, Reason: R.Err.Error()})
			return true, *s.err
		case *round.Output:
			if err := s.emit(s.current, outMsgs); err != nil {
				s.abort(err)
				return advanced, err
			}
			s.result = R.Result
			return true, nil
		}

		// initRoundStorage must run before emit: emit self-delivers any
		// broadcast this round produced into next's storage via store(),
		// which only writes into maps that already exist.
		s.initRoundStorage(next)
		if err := s.emit(s.current, outMsgs); err != nil {
			s.abort(err)
			return advanced, err
		}
		s.current = next
		s.rounds[next.Number()] = next
		advanced = true

		if err := s.replayQueued(next.Number()); err != nil {
			s.abort(err)
			return advanced, err
		}
	}
}

func (s *Session) replayQueued(number round.Number) error {
	r, ok := s.rounds[number].(round.Round)
	if !ok {
		return nil
	}
	if _, ok := r.(round.BroadcastRound); ok {
		for _, m := range s.broadcast[number] {
			if m == nil {
				continue
			}
			if err := s.verify(m); err != nil {
				return err
			}
		}
	}
	for _, m := range s.messages[number] {
		if m == nil {
			continue
		}
		if err := s.verify(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) verify(msg *protocol.Message) error {
	r, ok := s.rounds[msg.RoundNumber]
	if !ok {
		return nil
	}
	roundMsg, err := decodeMessage(msg, r)
	if err != nil {
		return &protocol.RemoteError{Culprits: []party.ID{msg.From}, Reason: err.Error()}
	}

	rr, ok := r.(round.Round)
	if !ok {
		return nil
	}

	if msg.Broadcast {
		br, ok := rr.(round.BroadcastRound)
		if !ok {
			return &protocol.RemoteError{Culprits: []party.ID{msg.From}, Reason: "unexpected broadcast message"}
		}
		if err := br.StoreBroadcastMessage(roundMsg); err != nil {
			return &protocol.RemoteError{Culprits: []party.ID{msg.From}, Reason: err.Error()}
		}
		return nil
	}

	if err := rr.VerifyMessage(roundMsg); err != nil {
		return &protocol.RemoteError{Culprits: []party.ID{msg.From}, Reason: err.Error()}
	}
	if err := rr.StoreMessage(roundMsg); err != nil {
		return &protocol.RemoteError{Culprits: []party.ID{msg.From}, Reason: err.Error()}
	}
	return nil
}

// emit converts a round's freshly produced round.Message values into
// wire-level protocol.Message envelopes, recording our own broadcasts
// into the accumulator (needed for the echo-consistency hash, the same
// way a remote broadcast is) and queuing everything for Outbound.
func (s *Session) emit(r round.Session, roundMsgs []*round.Message) error {
	for _, rm := range roundMsgs {
		data, err := cbor.Marshal(rm.Content)
		if err != nil {
			return fmt.Errorf("session: failed to encode outbound message: %w", err)
		}
		m := &protocol.Message{
			SSID:                  r.SSID(),
			From:                  r.SelfID(),
			To:                    rm.To,
			Protocol:              r.ProtocolID(),
			RoundNumber:           rm.Content.RoundNumber(),
			Data:                  data,
			Broadcast:             rm.Broadcast,
			BroadcastVerification: s.broadcastHashes[r.Number()],
		}
		if m.Broadcast {
			s.store(m)
		}
		s.pending = append(s.pending, m)
	}
	return nil
}

func (s *Session) canAccept(msg *protocol.Message) bool {
	r := s.current
	if msg == nil || msg.Data == nil {
		return false
	}
	if !msg.IsFor(r.SelfID()) {
		return false
	}
	if msg.Protocol != r.ProtocolID() {
		return false
	}
	if !bytes.Equal(msg.SSID, r.SSID()) {
		return false
	}
	if !r.PartyIDs().Contains(msg.From) {
		return false
	}
	if msg.RoundNumber > r.FinalRoundNumber() {
		return false
	}
	if msg.RoundNumber < r.Number() {
		return false
	}
	return true
}

func (s *Session) authenticate(sm *transport.SignedMessage) error {
	if s.verifiers == nil {
		return nil
	}
	return s.verifiers.Verify(sm.From, sm.SigningInput(), sm.Signature)
}

func (s *Session) duplicate(msg *protocol.Message) bool {
	q := s.queueFor(msg)
	if q == nil {
		return true
	}
	return q[msg.From] != nil
}

func (s *Session) store(msg *protocol.Message) {
	q := s.queueFor(msg)
	if q == nil || q[msg.From] != nil {
		return
	}
	q[msg.From] = msg
}

func (s *Session) queueFor(msg *protocol.Message) map[party.ID]*protocol.Message {
	if msg.Broadcast {
		return s.broadcast[msg.RoundNumber]
	}
	return s.messages[msg.RoundNumber]
}

func (s *Session) initRoundStorage(r round.Session) {
	number := r.Number()
	rr, ok := r.(round.Round)
	if !ok {
		return
	}
	if _, ok := rr.(round.BroadcastRound); ok {
		if s.broadcast[number] == nil {
			q := make(map[party.ID]*protocol.Message, r.N())
			for _, id := range r.PartyIDs() {
				q[id] = nil
			}
			s.broadcast[number] = q
		}
	}
	if rr.MessageContent() != nil {
		if s.messages[number] == nil {
			q := make(map[party.ID]*protocol.Message, r.N()-1)
			for _, id := range r.OtherPartyIDs() {
				q[id] = nil
			}
			s.messages[number] = q
		}
	}
}

func (s *Session) receivedAll() bool {
	r := s.current
	number := r.Number()
	rr, isRound := r.(round.Round)
	if !isRound {
		return false
	}

	if _, ok := rr.(round.BroadcastRound); ok {
		q := s.broadcast[number]
		if q == nil {
			return false
		}
		for _, id := range r.PartyIDs() {
			if q[id] == nil {
				return false
			}
		}
		if s.broadcastHashes[number] == nil {
			h := r.Hash()
			for _, id := range r.PartyIDs() {
				_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: "session/message", Bytes: q[id].Hash()})
			}
			s.broadcastHashes[number] = h.Sum()
		}
	}

	if rr.MessageContent() != nil {
		q := s.messages[number]
		if q == nil {
			return true
		}
		for _, id := range r.OtherPartyIDs() {
			if q[id] == nil {
				return false
			}
		}
	}
	return true
}

func (s *Session) checkBroadcastHash() bool {
	number := s.current.Number()
	previous := s.broadcastHashes[number-1]
	if previous == nil {
		return true
	}
	for _, msg := range s.messages[number] {
		if msg != nil && !bytes.Equal(previous, msg.BroadcastVerification) {
			return false
		}
	}
	for _, msg := range s.broadcast[number] {
		if msg != nil && !bytes.Equal(previous, msg.BroadcastVerification) {
			return false
		}
	}
	return true
}

func (s *Session) abort(err error) {
	if s.err != nil {
		return
	}
	var culprits []party.ID
	if re, ok := err.(*protocol.RemoteError); ok {
		culprits = re.Culprits
	}
	s.err = &protocol.Error{Culprits: culprits, Err: err}
}

func decodeMessage(msg *protocol.Message, r round.Session) (round.Message, error) {
	rr, ok := r.(round.Round)
	if !ok {
		return round.Message{}, fmt.Errorf("session: round %d accepts no messages", r.Number())
	}
	var content round.Content
	if msg.Broadcast {
		br, ok := rr.(round.BroadcastRound)
		if !ok {
			return round.Message{}, fmt.Errorf("session: got broadcast message when none was expected")
		}
		content = br.BroadcastContent()
	} else {
		content = rr.MessageContent()
	}
	if content == nil {
		return round.Message{}, fmt.Errorf("session: round %d expects no such message", r.Number())
	}
	if err := cbor.Unmarshal(msg.Data, content); err != nil {
		return round.Message{}, fmt.Errorf("session: failed to decode message: %w", err)
	}
	return round.Message{From: msg.From, To: msg.To, Content: content, Broadcast: msg.Broadcast}, nil
}
