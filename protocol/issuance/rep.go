package issuance

import (
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/findy-network/findy-wrapper-go/dto"
)

// issueCredRep is the persistent data of one credential run, journaled
// beside the state machine under the run's key. The issuer side carries
// the offer and the authoritative values it will sign; the prover side
// carries the fetched cred def and the blinding metadata, which never
// leaves the prover.
type issueCredRep struct {
	StateKey    psm.StateKey
	CredDefID   string
	CredDef     string
	CredOffer   string
	CredReqMeta string
	Values      string
}

func init() {
	psm.Creator.Add(psm.BucketIssueCred, newIssueCredRep)
}

func newIssueCredRep(d []byte) psm.Rep {
	p := &issueCredRep{}
	dto.FromGOB(d, p)
	return p
}

func (r *issueCredRep) Key() psm.StateKey {
	return r.StateKey
}

func (r *issueCredRep) Data() []byte {
	return dto.ToGOB(r)
}

func (r *issueCredRep) Type() byte {
	return psm.BucketIssueCred
}

// getRep loads the run's journal record. A missing record means the peer
// skipped a step, which is a sequence violation like any other.
func getRep(k psm.StateKey) (rep *issueCredRep, err error) {
	r, err := psm.GetRep(psm.BucketIssueCred, k)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: no issuing data for nonce %s",
			psm.ErrSequence, k.Nonce)
	}
	return r.(*issueCredRep), nil
}
