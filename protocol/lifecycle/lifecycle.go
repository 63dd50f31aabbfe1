/*
Package lifecycle orchestrates one complete credential lifecycle run
over the four roles: the steward anchors the issuer and the verifier,
they onboard the prover, the issuer registers the Degree schema and its
cred def and issues the example credential, and the verifier asks for
and verifies the Job-Application proof. The demo command runs it against
a live agency; the end to end test runs it in-process.
*/
package lifecycle

import (
	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/protocol/issuance"
	"github.com/alloy-network/alloy-agent/protocol/onboarding"
	"github.com/alloy-network/alloy-agent/protocol/proof"
	"github.com/alloy-network/alloy-agent/protocol/registry"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Runner holds the four actors of one lifecycle run. The steward must
// have its ledger identity before Run, see cmds/steward.
type Runner struct {
	Steward  *actor.Actor
	Issuer   *actor.Actor
	Prover   *actor.Actor
	Verifier *actor.Actor
}

// Run walks the whole lifecycle and returns the verifier's attestation
// of the Job-Application proof. The protocol steps run in their strict
// order; the run fails on the first step that does.
func (r *Runner) Run() (att *proof.Attestation, err error) {
	defer err2.Handle(&err, "lifecycle run")

	try.To(r.Connect())
	schemaName := try.To1(r.Register())
	try.To(r.Issue(schemaName))
	return r.Prove(schemaName)
}

// Connect onboards the demo pairs: the steward anchors the issuer and
// the verifier, then the issuer and the verifier anchor the prover.
func (r *Runner) Connect() (err error) {
	defer err2.Handle(&err, "lifecycle connect")

	glog.V(1).Infoln("lifecycle: onboarding the actors")

	try.To(onboarding.Onboard(r.Steward, r.Issuer.Name(), r.Issuer.Addr(),
		r.Issuer.Role().LedgerRole()))
	try.To(onboarding.Onboard(r.Steward, r.Verifier.Name(), r.Verifier.Addr(),
		r.Verifier.Role().LedgerRole()))
	try.To(onboarding.Onboard(r.Issuer, r.Prover.Name(), r.Prover.Addr(),
		r.Prover.Role().LedgerRole()))
	try.To(onboarding.Onboard(r.Verifier, r.Prover.Name(), r.Prover.Addr(),
		r.Prover.Role().LedgerRole()))
	return nil
}

// Register publishes the Degree schema and its cred def and binds the
// example values to the issuer's schema state.
func (r *Runner) Register() (schemaName string, err error) {
	defer err2.Handle(&err, "lifecycle register")

	glog.V(1).Infoln("lifecycle: registering schema and cred def")

	schemaName = try.To1(registry.CreateSchema(r.Issuer, DegreeSchema()))
	try.To1(registry.CreateCredDef(r.Issuer, schemaName, false))

	r.Issuer.SchemaState(schemaName).Values = issuance.CodedValues(DegreeValues())
	return schemaName, nil
}

// Issue walks one issuing run from offer to stored credential.
func (r *Runner) Issue(schemaName string) (err error) {
	defer err2.Handle(&err, "lifecycle issue")

	glog.V(1).Infoln("lifecycle: issuing the credential")

	try.To1(issuance.Offer(r.Issuer, r.Prover.Name(), schemaName))

	pkt := <-r.Prover.Inbox().Offers()
	issuerName, msg := try.To2(issuance.HandleOffer(r.Prover, pkt))
	try.To(issuance.RequestCredential(r.Prover, issuerName, msg))

	pkt = <-r.Issuer.Inbox().CredReqs()
	try.To(issuance.HandleCredRequest(r.Issuer, pkt))

	pkt = <-r.Prover.Inbox().Creds()
	try.To(issuance.HandleCredential(r.Prover, pkt))
	return nil
}

// Prove walks one proof run from request to verified attestation.
func (r *Runner) Prove(schemaName string) (att *proof.Attestation, err error) {
	defer err2.Handle(&err, "lifecycle prove")

	glog.V(1).Infoln("lifecycle: proving the credential")

	credDefID := r.Issuer.SchemaState(schemaName).CredDefID
	try.To1(proof.RequestProof(r.Verifier, r.Prover.Name(),
		JobApplication(credDefID)))

	pkt := <-r.Prover.Inbox().ProofReqs()
	verifierName, msg := try.To2(proof.HandleProofRequest(r.Prover, pkt))
	try.To(proof.CreateProof(r.Prover, verifierName, msg, SelfAttested()))

	pkt = <-r.Verifier.Inbox().Proofs()
	att = try.To1(proof.HandleProof(r.Verifier, pkt))

	glog.V(1).Infoln("lifecycle: proof verified")
	return att, nil
}
