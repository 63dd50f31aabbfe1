/*
Package issuance implements the credential issuing protocol between an
issuer and a prover. One run walks the strict phase chain Offered ->
Requested -> Issued -> Stored; a message arriving out of that order
fails with psm.ErrSequence. Runs are serialized per (peer, schema) pair
and distinct pairs run in parallel, see actor.Actor.LockRun.

The issuer is authoritative for the attribute values: the values bound
to its schema state at offer time are the values the credential is
signed with, whatever the prover suggests in between.
*/
package issuance

import (
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/findy-network/findy-common-go/dto"
	findy "github.com/findy-network/findy-wrapper-go"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Offer starts one credential run: it builds a credential offer bound to
// the schema's cred def, opens the run's state machine, and sends the
// offer to the prover. The returned nonce names the run on both ends.
// The schema must be registered and the issuer's values for it set.
func Offer(issuer *actor.Actor, proverName, schemaName string) (nonce string, err error) {
	defer err2.Handle(&err, "issuance offer")

	release := issuer.LockRun(proverName, schemaName)
	defer release()

	st := issuer.SchemaState(schemaName)
	if st.CredDefID == "" {
		return "", fmt.Errorf("no cred def for schema %s", schemaName)
	}
	if st.Values == "" {
		return "", fmt.Errorf("no attribute values for schema %s", schemaName)
	}

	r := <-anoncreds.IssuerCreateCredentialOffer(issuer.Wallet(), st.CredDefID)
	try.To(r.Err())
	credOffer := r.Str1()
	st.CredOffer = credOffer

	conn := try.To1(issuer.Connection(proverName))
	nonce = utils.NewNonceStr()
	key := psm.StateKey{DID: conn.MyDID, Nonce: nonce}

	try.To(psm.Start(&psm.PSM{
		Key:         key,
		StartedByUs: true,
		PeerDID:     conn.TheirDID,
		SchemaID:    st.SchemaID,
	}, psm.Offered))

	// the values journaled here are the ones signed at issue time
	try.To(psm.AddRep(&issueCredRep{
		StateKey:  key,
		CredDefID: st.CredDefID,
		CredOffer: credOffer,
		Values:    st.Values,
	}))

	pipe := try.To1(issuer.PipeTo(proverName))
	addr := try.To1(issuer.AddrTo(proverName))
	msg := Message{Nonce: nonce, SchemaName: schemaName, Data: credOffer}
	try.To1(comm.SendEnvelope(pipe, addr.WithKind(comm.KindOffer),
		dto.ToJSONBytes(&msg)))

	glog.V(1).Infoln(issuer.Name(), "offered", schemaName, "to", proverName)
	return nonce, nil
}

// HandleCredRequest is the issuer's handler for an inbound credential
// request. It signs the credential with the values journaled at offer
// time and sends it back to the prover.
func HandleCredRequest(issuer *actor.Actor, p comm.Packet) (err error) {
	defer err2.Handle(&err, "issuance cred request")

	conn, msg, err := openMessage(issuer, p)
	try.To(err)

	release := issuer.LockRun(conn.ID, msg.SchemaName)
	defer release()

	key := psm.StateKey{DID: conn.MyDID, Nonce: msg.Nonce}
	try.To1(psm.Advance(key, psm.Requested))

	rep := try.To1(getRep(key))

	r := <-anoncreds.IssuerCreateCredential(issuer.Wallet(), rep.CredOffer,
		msg.Data, rep.Values, findy.NullString, findy.NullHandle)
	try.To(r.Err())
	cred := r.Str1()

	try.To1(psm.Advance(key, psm.Issued))

	pipe := try.To1(issuer.PipeTo(conn.ID))
	addr := try.To1(issuer.AddrTo(conn.ID))
	out := Message{Nonce: msg.Nonce, SchemaName: msg.SchemaName, Data: cred}
	try.To1(comm.SendEnvelope(pipe, addr.WithKind(comm.KindCred),
		dto.ToJSONBytes(&out)))

	glog.V(1).Infoln(issuer.Name(), "issued", msg.SchemaName, "to", conn.ID)
	return nil
}
