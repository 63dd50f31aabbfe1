package proof

import (
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/findy-network/findy-wrapper-go/dto"
)

// presentProofRep is the persistent data of one proof run: the request as
// issued and, once the prover has built it, the proof itself.
type presentProofRep struct {
	StateKey psm.StateKey
	ProofReq string
	Proof    string
}

func init() {
	psm.Creator.Add(psm.BucketPresentProof, newPresentProofRep)
}

func newPresentProofRep(d []byte) psm.Rep {
	p := &presentProofRep{}
	dto.FromGOB(d, p)
	return p
}

func (r *presentProofRep) Key() psm.StateKey {
	return r.StateKey
}

func (r *presentProofRep) Data() []byte {
	return dto.ToGOB(r)
}

func (r *presentProofRep) Type() byte {
	return psm.BucketPresentProof
}

func getRep(k psm.StateKey) (rep *presentProofRep, err error) {
	r, err := psm.GetRep(psm.BucketPresentProof, k)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: no proof data for nonce %s",
			psm.ErrSequence, k.Nonce)
	}
	return r.(*presentProofRep), nil
}
