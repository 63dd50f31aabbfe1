package proof

import (
	"errors"
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/findy-network/findy-common-go/dto"
	findy "github.com/findy-network/findy-wrapper-go"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// ErrNoMatchingCredential is returned when a referent with restrictions
// matches none of the prover's stored credentials. The proof attempt is
// aborted and nothing is sent to the verifier.
var ErrNoMatchingCredential = errors.New("no matching credential")

// fetchMax is the wallet search batch size per referent.
const fetchMax = 2

// HandleProofRequest is the prover's handler for an inbound proof
// request. It opens the run's state machine and journals the request.
// The returned verifier name and message are handed to CreateProof to
// continue the run.
func HandleProofRequest(prover *actor.Actor, p comm.Packet) (
	verifierName string,
	msg *Message,
	err error,
) {
	defer err2.Handle(&err, "proof request handler")

	conn, msg, err := openMessage(prover, p)
	try.To(err)

	release := prover.LockRun(conn.ID, msg.Nonce)
	defer release()

	var req anoncreds.ProofRequest
	dto.FromJSONStr(msg.Data, &req)
	if req.Nonce != msg.Nonce || len(req.RequestedAttributes) == 0 {
		return "", nil, fmt.Errorf("malformed proof request")
	}

	key := psm.StateKey{DID: conn.MyDID, Nonce: msg.Nonce}
	try.To(psm.Start(&psm.PSM{
		Key:     key,
		PeerDID: conn.TheirDID,
	}, psm.ProofRequested))
	try.To(psm.AddRep(&presentProofRep{StateKey: key, ProofReq: msg.Data}))

	glog.V(1).Infoln(prover.Name(), "got proof request", req.Name,
		"from", conn.ID)
	return conn.ID, msg, nil
}

// CreateProof resolves the request's referents against the prover's
// stored credentials, builds the proof, and sends it to the verifier.
// Referents without restrictions take the caller's self attested value
// when one is given for the attribute name; everything else must resolve
// to a stored credential matching every restriction, or the attempt
// aborts with ErrNoMatchingCredential before anything is sent.
func CreateProof(
	prover *actor.Actor,
	verifierName string,
	msg *Message,
	selfAttested map[string]string,
) (err error) {
	defer err2.Handle(&err, "proof create")

	release := prover.LockRun(verifierName, msg.Nonce)
	defer release()

	conn := try.To1(prover.Connection(verifierName))
	key := psm.StateKey{DID: conn.MyDID, Nonce: msg.Nonce}

	rep := try.To1(getRep(key))

	var req anoncreds.ProofRequest
	dto.FromJSONStr(rep.ProofReq, &req)

	reqCred, credInfos := try.To2(
		selectCredentials(prover, rep.ProofReq, &req, selfAttested))

	rootDID := prover.RootDid().Did()
	foundSchemas := make(map[string]struct{}, len(credInfos))
	foundCredDefs := make(map[string]struct{}, len(credInfos))
	for _, ci := range credInfos {
		foundSchemas[ci.CredInfo.SchemaID] = struct{}{}
		foundCredDefs[ci.CredInfo.CredDefID] = struct{}{}
	}
	schemas := try.To1(schemasJSON(rootDID, foundSchemas))
	credDefs := try.To1(credDefsJSON(rootDID, foundCredDefs))

	masterSec := try.To1(prover.MasterSecret())
	r := <-anoncreds.ProverCreateProof(prover.Wallet(), rep.ProofReq,
		dto.ToJSON(reqCred), masterSec, schemas, credDefs, "{}")
	try.To(r.Err())
	rep.Proof = r.Str1()
	try.To(psm.AddRep(rep))

	try.To1(psm.Advance(key, psm.ProofCreated))

	pipe := try.To1(prover.PipeTo(verifierName))
	addr := try.To1(prover.AddrTo(verifierName))
	out := Message{Nonce: msg.Nonce, Data: rep.Proof}
	try.To1(comm.SendEnvelope(pipe, addr.WithKind(comm.KindProof),
		dto.ToJSONBytes(&out)))

	glog.V(1).Infoln(prover.Name(), "sent proof", req.Name, "to", verifierName)
	return nil
}

// selectCredentials partitions the request's referents and picks one
// stored credential per bound referent. Search results are filtered
// against the referent's restrictions: a credential from the wrong cred
// def is never selected, whatever the wallet search returns.
func selectCredentials(
	prover *actor.Actor,
	proofReqJSON string,
	req *anoncreds.ProofRequest,
	selfAttested map[string]string,
) (
	reqCred *anoncreds.RequestedCredentials,
	credInfos []anoncreds.Credentials,
	err error,
) {
	defer err2.Handle(&err, "select credentials")

	r := <-anoncreds.ProverSearchCredentialsForProofReq(
		prover.Wallet(), proofReqJSON, findy.NullString)
	try.To(r.Err())
	searchHandle := r.Handle()

	defer func() {
		r := <-anoncreds.ProverCloseCredentialsSearchForProofReq(searchHandle)
		if r.Err() != nil {
			glog.Warningln("closing credential search:", r.Err())
		}
	}()

	reqCred = &anoncreds.RequestedCredentials{
		SelfAttestedAttributes: make(map[string]string),
		RequestedAttributes:    make(map[string]anoncreds.RequestedAttrObject),
		RequestedPredicates:    make(map[string]anoncreds.RequestedPredObject),
	}
	credInfos = make([]anoncreds.Credentials, 0, fetchMax)

	for attrRef, aInfo := range req.RequestedAttributes {
		if value, ok := selfAttested[aInfo.Name]; ok && len(aInfo.Restrictions) == 0 {
			reqCred.SelfAttestedAttributes[attrRef] = value
			continue
		}

		found := try.To1(fetchMatching(searchHandle, attrRef, aInfo.Restrictions))
		if len(found) == 0 {
			if len(aInfo.Restrictions) == 0 {
				reqCred.SelfAttestedAttributes[attrRef] = selfAttested[aInfo.Name]
				continue
			}
			return nil, nil, fmt.Errorf("%w: for attr %s",
				ErrNoMatchingCredential, aInfo.Name)
		}
		credInfos = append(credInfos, found...)
		reqCred.RequestedAttributes[attrRef] = anoncreds.RequestedAttrObject{
			CredID:   found[0].CredInfo.Referent,
			Revealed: true,
		}
	}

	for predRef, pInfo := range req.RequestedPredicates {
		found := try.To1(fetchMatching(searchHandle, predRef, pInfo.Restrictions))
		if len(found) == 0 {
			return nil, nil, fmt.Errorf("%w: for predicate %s",
				ErrNoMatchingCredential, pInfo.Name)
		}
		credInfos = append(credInfos, found...)
		reqCred.RequestedPredicates[predRef] = anoncreds.RequestedPredObject{
			CredID: found[0].CredInfo.Referent,
		}
	}

	return reqCred, credInfos, nil
}

// fetchMatching drains the wallet search for one referent and keeps the
// credentials that satisfy every restriction.
func fetchMatching(
	searchHandle int,
	referent string,
	restrictions []anoncreds.Filter,
) (matching []anoncreds.Credentials, err error) {
	defer err2.Handle(&err, "fetch credentials")

	matching = make([]anoncreds.Credentials, 0, fetchMax)
	for {
		r := <-anoncreds.ProverFetchCredentialsForProofReq(
			searchHandle, referent, fetchMax)
		try.To(r.Err())

		batch := make([]anoncreds.Credentials, 0, fetchMax)
		dto.FromJSONStr(r.Str1(), &batch)

		for _, ci := range batch {
			if matchesRestrictions(ci, restrictions) {
				matching = append(matching, ci)
			}
		}
		if len(batch) < fetchMax {
			return matching, nil
		}
	}
}

func matchesRestrictions(ci anoncreds.Credentials, restrictions []anoncreds.Filter) bool {
	if len(restrictions) == 0 {
		return true
	}
	for _, f := range restrictions {
		if f.CredDefID != "" && ci.CredInfo.CredDefID == f.CredDefID {
			return true
		}
	}
	return false
}
