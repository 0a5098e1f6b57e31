package cmp_test

import (
	"crypto/rand"
	"crypto/sha256"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/internal/test"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/pool"
	"github.com/luxfi/cggmp21/pkg/session"
	"github.com/luxfi/cggmp21/protocols/cmp/auxiliary"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
	"github.com/luxfi/cggmp21/protocols/cmp/keygen"
	"github.com/luxfi/cggmp21/protocols/cmp/presign"
	"github.com/luxfi/cggmp21/protocols/cmp/sign"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "cmp protocol pipeline")
}

// runRound drives info/starts through pl across a fresh Network and
// returns each party's typed result, failing the spec immediately on
// any session error.
func runRound(ids party.IDSlice, protocolID string, final round.Number, pl *pool.Pool,
	makeStart func(info round.Info) func(sessionID []byte) (round.Session, error)) map[party.ID]interface{} {
	net, err := test.NewNetwork(ids)
	Expect(err).NotTo(HaveOccurred())

	starts := make(map[party.ID]session.StartFunc, len(ids))
	for _, id := range ids {
		info := round.Info{
			ProtocolID:       protocolID,
			FinalRoundNumber: final,
			SelfID:           id,
			PartyIDs:         ids,
			Group:            "secp256k1",
		}
		starts[id] = makeStart(info)
	}

	results, err := net.Run([]byte("integration-test-session"), starts)
	Expect(err).NotTo(HaveOccurred())
	return results
}

var _ = Describe("KeyGen through Signing", func() {
	var ids party.IDSlice
	var pl *pool.Pool

	BeforeEach(func() {
		ids = test.PartyIDs(3)
		pl = pool.New(1)
	})

	It("produces a consistent group key across KeyGen and Auxiliary", func() {
		keygenResults := runRound(ids, "cmp/keygen", keygen.FinalRoundNumber, pl, func(info round.Info) func([]byte) (round.Session, error) {
			return keygen.Start(info, pl)
		})

		seeds := make(map[party.ID]*config.KeyShareSeed, len(ids))
		for id, r := range keygenResults {
			seed, ok := r.(*config.KeyShareSeed)
			Expect(ok).To(BeTrue())
			seeds[id] = seed
		}

		groupKey := curve.NewIdentityPoint()
		for _, id := range ids {
			groupKey = groupKey.Add(seeds[ids[0]].PublicShares[id])
		}
		Expect(groupKey.IsIdentity()).To(BeFalse())
		for _, id := range ids {
			for _, other := range ids {
				Expect(seeds[id].PublicShares[other].Equal(seeds[ids[0]].PublicShares[other])).To(BeTrue())
			}
		}

		auxResults := runRound(ids, "cmp/auxiliary", auxiliary.FinalRoundNumber, pl, func(info round.Info) func([]byte) (round.Session, error) {
			return auxiliary.Start(info, pl)
		})

		shares := make(map[party.ID]*config.KeyShare, len(ids))
		for id := range ids {
			pid := ids[id]
			change, ok := auxResults[pid].(*config.KeyShareChange)
			Expect(ok).To(BeTrue())
			combined, err := config.Combine(seeds[pid], change)
			Expect(err).NotTo(HaveOccurred())
			shares[pid] = combined
		}

		want := shares[ids[0]].VerifyingKey()
		for _, id := range ids {
			Expect(shares[id].VerifyingKey().Equal(want)).To(BeTrue())
			Expect(shares[id].Validate()).To(Succeed())
		}
	})

	It("runs Presigning and Signing to a verifiable signature", func() {
		secret, err := curve.RandomScalar(rand.Reader)
		Expect(err).NotTo(HaveOccurred())

		shares, err := config.NewCentralized(ids, secret)
		Expect(err).NotTo(HaveOccurred())

		presignResults := runRound(ids, "cmp/presign", presign.FinalRoundNumber, pl, func(info round.Info) func([]byte) (round.Session, error) {
			return presign.Start(info, shares[info.SelfID], pl)
		})

		presignData := make(map[party.ID]*presign.PresigningData, len(ids))
		for id, r := range presignResults {
			data, ok := r.(*presign.PresigningData)
			Expect(ok).To(BeTrue())
			presignData[id] = data
		}

		digest := sha256.Sum256([]byte("sign me, please"))

		signResults := runRound(ids, "cmp/sign", sign.FinalRoundNumber, pl, func(info round.Info) func([]byte) (round.Session, error) {
			return sign.Start(info, shares[info.SelfID], presignData[info.SelfID], digest[:], pl)
		})

		var m *curve.Scalar
		for _, id := range ids {
			sig, ok := signResults[id].(*curve.RecoverableSignature)
			Expect(ok).To(BeTrue())
			if m == nil {
				var digestArr [32]byte
				copy(digestArr[:], digest[:])
				m = curve.FromReducedBytes(digestArr)
			}
			Expect(curve.Verify(shares[id].VerifyingKey(), m, sig.R, sig.S)).To(BeTrue())
		}
	})
})
