package issuance

import (
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/findy-network/findy-common-go/dto"
	findy "github.com/findy-network/findy-wrapper-go"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// HandleOffer is the prover's handler for an inbound credential offer.
// It makes sure the prover's master secret exists, fetches the offered
// cred def from the ledger, and opens the run's state machine. The
// returned issuer name and message are handed to RequestCredential to
// continue the run.
func HandleOffer(prover *actor.Actor, p comm.Packet) (issuerName string, msg *Message, err error) {
	defer err2.Handle(&err, "issuance offer handler")

	conn, msg, err := openMessage(prover, p)
	try.To(err)

	release := prover.LockRun(conn.ID, msg.SchemaName)
	defer release()

	ids := &ledgerIDs{}
	dto.FromJSONStr(msg.Data, ids)
	if ids.SchemaID == "" || ids.CredDefID == "" {
		return "", nil, fmt.Errorf("offer carries no ledger ids")
	}

	// created once per actor lifetime, a no-op after the first offer
	try.To1(prover.MasterSecret())

	credDef := try.To1(ssi.CredDefFromLedger(prover.RootDid().Did(), ids.CredDefID))

	st := prover.SchemaState(msg.SchemaName)
	st.SchemaID = ids.SchemaID
	st.CredDefID = ids.CredDefID
	st.CredDef = credDef
	st.CredOffer = msg.Data

	key := psm.StateKey{DID: conn.MyDID, Nonce: msg.Nonce}
	try.To(psm.Start(&psm.PSM{
		Key:      key,
		PeerDID:  conn.TheirDID,
		SchemaID: ids.SchemaID,
	}, psm.Offered))
	try.To(psm.AddRep(&issueCredRep{
		StateKey:  key,
		CredDefID: ids.CredDefID,
		CredDef:   credDef,
		CredOffer: msg.Data,
	}))

	glog.V(1).Infoln(prover.Name(), "got", msg.SchemaName, "offer from", conn.ID)
	return conn.ID, msg, nil
}

// RequestCredential builds the blinded credential request from the
// prover's master secret and the fetched cred def and sends it to the
// issuer. The blinding metadata stays journaled in the prover's wallet
// side, it is never transmitted.
func RequestCredential(prover *actor.Actor, issuerName string, msg *Message) (err error) {
	defer err2.Handle(&err, "issuance request")

	release := prover.LockRun(issuerName, msg.SchemaName)
	defer release()

	conn := try.To1(prover.Connection(issuerName))
	key := psm.StateKey{DID: conn.MyDID, Nonce: msg.Nonce}

	rep := try.To1(getRep(key))
	masterSec := try.To1(prover.MasterSecret())

	r := <-anoncreds.ProverCreateCredentialReq(prover.Wallet(),
		prover.RootDid().Did(), rep.CredOffer, rep.CredDef, masterSec)
	try.To(r.Err())
	credReq := r.Str1()

	rep.CredReqMeta = r.Str2()
	try.To(psm.AddRep(rep))

	st := prover.SchemaState(msg.SchemaName)
	st.CredRequest = credReq
	st.CredRequestMeta = rep.CredReqMeta

	try.To1(psm.Advance(key, psm.Requested))

	pipe := try.To1(prover.PipeTo(issuerName))
	addr := try.To1(prover.AddrTo(issuerName))
	out := Message{Nonce: msg.Nonce, SchemaName: msg.SchemaName, Data: credReq}
	try.To1(comm.SendEnvelope(pipe, addr.WithKind(comm.KindCredReq),
		dto.ToJSONBytes(&out)))

	glog.V(1).Infoln(prover.Name(), "requested", msg.SchemaName, "from", issuerName)
	return nil
}

// HandleCredential is the prover's handler for the signed credential. It
// checks the credential is about the ids the run started with, re-fetches
// the cred def so storage binds to the ledger's view of it, and persists
// the credential with the retained blinding metadata.
func HandleCredential(prover *actor.Actor, p comm.Packet) (err error) {
	defer err2.Handle(&err, "issuance store")

	conn, msg, err := openMessage(prover, p)
	try.To(err)

	release := prover.LockRun(conn.ID, msg.SchemaName)
	defer release()

	key := psm.StateKey{DID: conn.MyDID, Nonce: msg.Nonce}
	try.To1(psm.Advance(key, psm.Issued))

	rep := try.To1(getRep(key))

	ids := &ledgerIDs{}
	dto.FromJSONStr(msg.Data, ids)
	if ids.CredDefID != rep.CredDefID {
		return fmt.Errorf("credential is for def %s, run is for %s",
			ids.CredDefID, rep.CredDefID)
	}

	credDef := try.To1(ssi.CredDefFromLedger(prover.RootDid().Did(), rep.CredDefID))

	r := <-anoncreds.ProverStoreCredential(prover.Wallet(), findy.NullString,
		rep.CredReqMeta, msg.Data, credDef, findy.NullString)
	try.To(r.Err())

	try.To1(psm.Advance(key, psm.Stored))

	glog.V(1).Infoln(prover.Name(), "stored", msg.SchemaName,
		"credential from", conn.ID)
	return nil
}
