// Package test provides an in-process network for driving a full set
// of party Sessions to completion without any real transport: it exists
// for integration tests and the CLI's simulate mode, standing in for
// whatever wire the embedding application would otherwise use.
package test

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/session"
	"github.com/luxfi/cggmp21/pkg/transport"
)

// PartyIDs returns n sorted, deterministically-named party IDs, the
// group every integration test in this module runs its pipeline over.
func PartyIDs(n int) party.IDSlice {
	ids := make([]party.ID, n)
	for i := 0; i < n; i++ {
		ids[i] = party.ID(fmt.Sprintf("party-%d", i+1))
	}
	return party.NewIDSlice(ids)
}

// Network authenticates every party with a freshly-generated, purely
// local secp256k1 signing key, unrelated to the threshold key any
// protocol run under it produces.
type Network struct {
	Signers   map[party.ID]transport.Signer
	Verifiers transport.VerifierSet
}

// NewNetwork mints a Secp256k1Signer/Verifier pair per id.
func NewNetwork(ids party.IDSlice) (*Network, error) {
	signers := make(map[party.ID]transport.Signer, len(ids))
	verifiers := make(transport.VerifierSet, len(ids))
	for _, id := range ids {
		key, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, fmt.Errorf("test: failed to generate transport key for %s: %w", id, err)
		}
		signers[id] = transport.NewSecp256k1Signer(key)
		verifiers[id] = transport.NewSecp256k1Verifier(key.PubKey())
	}
	return &Network{Signers: signers, Verifiers: verifiers}, nil
}

// Run starts one Session per entry in starts, then repeatedly drains
// Outbound and feeds it to Ingest across every session until nobody
// makes further progress, returning each party's final Result. It
// fails the whole run if any session aborts, since the scenarios this
// harness exists for are all happy-path unless the caller specifically
// wants to watch a RemoteError surface (in which case it inspects the
// returned error itself rather than calling Run).
func (n *Network) Run(sessionID []byte, starts map[party.ID]session.StartFunc) (map[party.ID]interface{}, error) {
	sessions := make(map[party.ID]*session.Session, len(starts))
	for id, start := range starts {
		s, err := session.Start(start, sessionID, n.Signers[id], n.Verifiers)
		if err != nil {
			return nil, fmt.Errorf("test: failed to start session for %s: %w", id, err)
		}
		sessions[id] = s
	}

	for {
		progressed := false
		for from, s := range sessions {
			out, err := s.Outbound()
			if err != nil {
				return nil, fmt.Errorf("test: %s: failed to drain outbound: %w", from, err)
			}
			for _, sm := range out {
				progressed = true
				if sm.To != "" {
					if err := sessions[sm.To].Ingest(sm); err != nil {
						return nil, fmt.Errorf("test: %s: failed to ingest direct message from %s: %w", sm.To, from, err)
					}
					continue
				}
				for to, recv := range sessions {
					if to == from {
						continue
					}
					if err := recv.Ingest(sm); err != nil {
						return nil, fmt.Errorf("test: %s: failed to ingest broadcast from %s: %w", to, from, err)
					}
				}
			}
		}
		if !progressed {
			break
		}
	}

	results := make(map[party.ID]interface{}, len(sessions))
	for id, s := range sessions {
		result, err := s.Result()
		if err != nil {
			return nil, fmt.Errorf("test: %s: %w", id, err)
		}
		results[id] = result
	}
	return results, nil
}
