/*
Package proof implements the proof presentation protocol between a
verifier and a prover. One run walks the phase chain ProofRequested ->
ProofCreated -> ProofVerified under the same sequencing rules as the
issuing protocol.

Verification is a pure function of the request, the response, and the
ledger artifacts the proof identifies. The verifier accepts a proof only
when the response nonce equals the nonce it issued, the response answers
exactly the referents the request asked, and the cryptographic check
passes. Self attested values pass the check unbound; judging them is the
caller's policy.
*/
package proof

import (
	"errors"
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// ErrProofInvalid is returned when a received proof fails verification:
// the crypto check fails, the response nonce is not the issued one, or
// the response doesn't answer the request referent by referent. The run's
// machine stays where it was, an invalid proof never verifies silently.
var ErrProofInvalid = errors.New("proof invalid")

// Attestation is the verifier's view of a verified proof: the revealed
// values bound to credentials and the self attested values, which carry
// no cryptographic weight.
type Attestation struct {
	Revealed     map[string]RevealedAttr
	SelfAttested map[string]string
}

// RequestProof starts one proof run: it stamps the request with a fresh
// single use nonce, opens the run's state machine, and sends the request
// to the prover. The returned nonce names the run on both ends.
func RequestProof(
	verifier *actor.Actor,
	proverName string,
	req *anoncreds.ProofRequest,
) (nonce string, err error) {
	defer err2.Handle(&err, "proof request")

	if req.Nonce == "" {
		req.Nonce = utils.NewNonceStr()
	}
	nonce = req.Nonce

	release := verifier.LockRun(proverName, nonce)
	defer release()

	conn := try.To1(verifier.Connection(proverName))
	key := psm.StateKey{DID: conn.MyDID, Nonce: nonce}

	reqJSON := dto.ToJSON(req)
	try.To(psm.Start(&psm.PSM{
		Key:         key,
		StartedByUs: true,
		PeerDID:     conn.TheirDID,
	}, psm.ProofRequested))
	try.To(psm.AddRep(&presentProofRep{StateKey: key, ProofReq: reqJSON}))

	pipe := try.To1(verifier.PipeTo(proverName))
	addr := try.To1(verifier.AddrTo(proverName))
	msg := Message{Nonce: nonce, Data: reqJSON}
	try.To1(comm.SendEnvelope(pipe, addr.WithKind(comm.KindProofReq),
		dto.ToJSONBytes(&msg)))

	glog.V(1).Infoln(verifier.Name(), "requested proof", req.Name,
		"from", proverName)
	return nonce, nil
}

// HandleProof is the verifier's handler for an inbound proof. On success
// the run's machine reaches ProofVerified and the attestation carries
// what the proof revealed.
func HandleProof(verifier *actor.Actor, p comm.Packet) (att *Attestation, err error) {
	defer err2.Handle(&err, "proof verify")

	conn, msg, err := openMessage(verifier, p)
	try.To(err)

	release := verifier.LockRun(conn.ID, msg.Nonce)
	defer release()

	key := psm.StateKey{DID: conn.MyDID, Nonce: msg.Nonce}
	try.To1(psm.Advance(key, psm.ProofCreated))

	rep := try.To1(getRep(key))
	rep.Proof = msg.Data
	try.To(psm.AddRep(rep))

	// replay defense: the response must carry the nonce this verifier
	// issued, a machine alone is not proof of that
	var req anoncreds.ProofRequest
	dto.FromJSONStr(rep.ProofReq, &req)
	if req.Nonce != msg.Nonce {
		return nil, fmt.Errorf("%w: response nonce %s is not the issued one",
			ErrProofInvalid, msg.Nonce)
	}

	var body proofBody
	dto.FromJSONStr(msg.Data, &body)
	try.To(checkReferents(&req, &body.RequestedProof))

	var proof anoncreds.Proof
	dto.FromJSONStr(msg.Data, &proof)

	rootDID := verifier.RootDid().Did()
	schemas := try.To1(schemasJSON(rootDID, schemaIDSet(proof.Identifiers)))
	credDefs := try.To1(credDefsJSON(rootDID, credDefIDSet(proof.Identifiers)))

	r := <-anoncreds.VerifierVerifyProof(rep.ProofReq, msg.Data,
		schemas, credDefs, "{}", "{}")
	try.To(r.Err())
	if !r.Yes() {
		return nil, fmt.Errorf("%w: crypto check failed for nonce %s",
			ErrProofInvalid, msg.Nonce)
	}

	try.To1(psm.Advance(key, psm.ProofVerified))

	glog.V(1).Infoln(verifier.Name(), "verified proof", req.Name,
		"from", conn.ID)
	return &Attestation{
		Revealed:     body.RequestedProof.RevealedAttrs,
		SelfAttested: body.RequestedProof.SelfAttestedAttrs,
	}, nil
}

// checkReferents demands the response answers the request exactly: every
// attribute referent lands in exactly one of the response categories,
// every predicate referent is answered, and nothing extra rides along.
func checkReferents(req *anoncreds.ProofRequest, rp *requestedProof) error {
	answered := len(rp.RevealedAttrs) + len(rp.SelfAttestedAttrs) +
		len(rp.UnrevealedAttrs)
	if answered != len(req.RequestedAttributes) {
		return fmt.Errorf("%w: %d attrs answered, %d requested",
			ErrProofInvalid, answered, len(req.RequestedAttributes))
	}
	for ref := range req.RequestedAttributes {
		_, revealed := rp.RevealedAttrs[ref]
		_, self := rp.SelfAttestedAttrs[ref]
		_, unrevealed := rp.UnrevealedAttrs[ref]
		if !revealed && !self && !unrevealed {
			return fmt.Errorf("%w: referent %s unanswered", ErrProofInvalid, ref)
		}
	}

	if len(rp.Predicates) != len(req.RequestedPredicates) {
		return fmt.Errorf("%w: %d predicates answered, %d requested",
			ErrProofInvalid, len(rp.Predicates), len(req.RequestedPredicates))
	}
	for ref := range req.RequestedPredicates {
		if _, ok := rp.Predicates[ref]; !ok {
			return fmt.Errorf("%w: predicate %s unanswered", ErrProofInvalid, ref)
		}
	}
	return nil
}
