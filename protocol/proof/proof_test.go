package proof_test

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/endp"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/alloy-network/alloy-agent/enclave"
	"github.com/alloy-network/alloy-agent/protocol/issuance"
	"github.com/alloy-network/alloy-agent/protocol/onboarding"
	"github.com/alloy-network/alloy-agent/protocol/proof"
	"github.com/alloy-network/alloy-agent/protocol/registry"
	"github.com/findy-network/findy-common-go/dto"
	_ "github.com/findy-network/findy-wrapper-go/addons"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "4Vwsj6Qcczmhk2Ak7H5GGvFE1cQCdRtWfW4jchahNUoE"
	hexKey  = "ff799e65bd3da1d3225b04acbcd08f7bdc7b05ba0337ab41e7d2b6e30985bcdb"

	schemaName = "degree"
)

var (
	issuer   *actor.Actor
	prover   *actor.Actor
	verifier *actor.Actor

	actors = map[string]*actor.Actor{}

	psmFile     string
	enclaveFile string
)

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	_ = flag.Set("logtostderr", "true")

	tag := fmt.Sprintf("%d", time.Now().Unix())
	psmFile = filepath.Join(os.TempDir(), "proof-test-psm-"+tag+".bolt")
	enclaveFile = filepath.Join(os.TempDir(), "proof-test-enclave-"+tag+".bolt")

	if err := psm.Open(psmFile); err != nil {
		panic(err)
	}
	if err := enclave.InitSealedBox(enclaveFile, "", hexKey); err != nil {
		panic(err)
	}

	issuer = newActor("proof-test-issuer"+tag, actor.RoleIssuer)
	prover = newActor("proof-test-prover"+tag, actor.RoleProver)
	verifier = newActor("proof-test-verifier"+tag, actor.RoleVerifier)

	issuer.OpenPool("FINDY_MEM_LEDGER")
	issuer.SetRootDid(issuer.CreateDID("000000000000000000000000Steward1"))
	verifier.SetRootDid(verifier.CreateDID(""))

	prover.SetHandshake(onboarding.HandlerFor(prover))

	comm.SendAndWaitReq = func(urlStr string, msg io.Reader, _ time.Duration) ([]byte, error) {
		addr := endp.NewClientAddr(urlStr)
		a, ok := actors[addr.Rcvr]
		if !ok {
			return nil, fmt.Errorf("unknown actor %s", addr.Rcvr)
		}
		body, _ := io.ReadAll(msg)
		if addr.Kind == endp.HandshakeKind {
			return a.Handshake(body)
		}
		return nil, a.Deliver(addr.Kind, comm.Packet{Addr: addr, Payload: body})
	}

	check(onboarding.Onboard(issuer, prover.Name(), prover.Addr(),
		prover.Role().LedgerRole()))
	check(onboarding.Onboard(verifier, prover.Name(), prover.Addr(), ""))

	name, err := registry.CreateSchema(issuer, &ssi.Schema{
		Name:    "Degree",
		Version: "1.0",
		Attrs: []string{
			"first_name", "last_name", "degree", "status",
			"ssn", "year", "average",
		},
	})
	check(err)
	_, err = registry.CreateCredDef(issuer, name, false)
	check(err)

	issuer.SchemaState(schemaName).Values = issuance.CodedValues(map[string]string{
		"first_name": "Alice",
		"last_name":  "Garcia",
		"degree":     "Bachelor of Science, Marketing",
		"status":     "graduated",
		"ssn":        "123-45-6789",
		"year":       "2015",
		"average":    "5",
	})

	issueCredential()
}

// issueCredential walks a full issuing run so the proof tests have a
// stored credential to present.
func issueCredential() {
	_, err := issuance.Offer(issuer, prover.Name(), schemaName)
	check(err)

	pkt := <-prover.Inbox().Offers()
	issuerName, msg, err := issuance.HandleOffer(prover, pkt)
	check(err)
	check(issuance.RequestCredential(prover, issuerName, msg))

	pkt = <-issuer.Inbox().CredReqs()
	check(issuance.HandleCredRequest(issuer, pkt))

	pkt = <-prover.Inbox().Creds()
	check(issuance.HandleCredential(prover, pkt))
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func tearDown() {
	issuer.CloseWallet()
	prover.CloseWallet()
	verifier.CloseWallet()
	ssi.Wallets.Reset()

	psm.Close()
	enclave.Close()
	_ = os.RemoveAll(psmFile)
	_ = os.RemoveAll(psmFile + "_backup")
	_ = os.RemoveAll(enclaveFile)

	home := utils.IndyBaseDir()
	removeFiles(home, "/.indy_client/wallet/proof-test-*")
}

func removeFiles(home, nameFilter string) {
	filter := filepath.Join(home, nameFilter)
	files, _ := filepath.Glob(filter)
	for _, f := range files {
		if err := os.RemoveAll(f); err != nil {
			panic(err)
		}
	}
}

func newActor(name string, role actor.Role) *actor.Actor {
	w := ssi.NewRawWalletCfg(name, testKey)
	w.Create()
	a := actor.New(name, role, w)
	a.SetAddr(endp.NewClientAddr("http://test/agency/" + name))
	actors[name] = a
	return a
}

func jobApplication(credDefID string) *anoncreds.ProofRequest {
	restrictions := []anoncreds.Filter{{CredDefID: credDefID}}
	return &anoncreds.ProofRequest{
		Name:    "Job-Application",
		Version: "0.1",
		RequestedAttributes: map[string]anoncreds.AttrInfo{
			"attr1_referent": {Name: "first_name"},
			"attr2_referent": {Name: "last_name"},
			"attr3_referent": {Name: "degree", Restrictions: restrictions},
			"attr4_referent": {Name: "status", Restrictions: restrictions},
			"attr5_referent": {Name: "ssn", Restrictions: restrictions},
			"attr6_referent": {Name: "phone_number"},
		},
		RequestedPredicates: map[string]anoncreds.PredicateInfo{
			"predicate1_referent": {
				Name:         "average",
				PType:        ">=",
				PValue:       4,
				Restrictions: restrictions,
			},
		},
	}
}

var selfAttested = map[string]string{
	"first_name":   "Alice",
	"last_name":    "Garcia",
	"phone_number": "123-45-6789",
}

func TestProofRoundTrip(t *testing.T) {
	credDefID := issuer.SchemaState(schemaName).CredDefID
	require.NotEmpty(t, credDefID)

	nonce, err := proof.RequestProof(verifier, prover.Name(),
		jobApplication(credDefID))
	require.NoError(t, err)
	require.NotEmpty(t, nonce)

	pkt := <-prover.Inbox().ProofReqs()
	verifierName, msg, err := proof.HandleProofRequest(prover, pkt)
	require.NoError(t, err)
	require.Equal(t, verifier.Name(), verifierName)
	require.Equal(t, nonce, msg.Nonce)

	require.NoError(t, proof.CreateProof(prover, verifierName, msg, selfAttested))

	pkt = <-verifier.Inbox().Proofs()
	att, err := proof.HandleProof(verifier, pkt)
	require.NoError(t, err)

	require.Equal(t, "Bachelor of Science, Marketing",
		att.Revealed["attr3_referent"].Raw)
	require.Equal(t, "graduated", att.Revealed["attr4_referent"].Raw)
	require.Equal(t, "123-45-6789", att.Revealed["attr5_referent"].Raw)

	require.Equal(t, "Alice", att.SelfAttested["attr1_referent"])
	require.Equal(t, "Garcia", att.SelfAttested["attr2_referent"])
	require.Equal(t, "123-45-6789", att.SelfAttested["attr6_referent"])

	vConn, err := verifier.Connection(prover.Name())
	require.NoError(t, err)
	pConn, err := prover.Connection(verifier.Name())
	require.NoError(t, err)

	ready, err := psm.IsPSMReady(psm.StateKey{DID: vConn.MyDID, Nonce: nonce})
	require.NoError(t, err)
	require.True(t, ready)
	ready, err = psm.IsPSMReady(psm.StateKey{DID: pConn.MyDID, Nonce: nonce})
	require.NoError(t, err)
	require.True(t, ready)
}

func TestRestrictionToUnknownCredDef(t *testing.T) {
	// restricted to a def the prover holds no credential for
	bogus := "T3NDjvbEeYAwVZCsh52Ads:3:CL:9999:TAG1"

	nonce, err := proof.RequestProof(verifier, prover.Name(), jobApplication(bogus))
	require.NoError(t, err)

	pkt := <-prover.Inbox().ProofReqs()
	verifierName, msg, err := proof.HandleProofRequest(prover, pkt)
	require.NoError(t, err)
	require.Equal(t, nonce, msg.Nonce)

	err = proof.CreateProof(prover, verifierName, msg, selfAttested)
	require.True(t, errors.Is(err, proof.ErrNoMatchingCredential))

	// nothing was sent to the verifier
	select {
	case <-verifier.Inbox().Proofs():
		t.Fatal("proof sent even though no credential matched")
	default:
	}
}

func TestProofWithoutRequestFails(t *testing.T) {
	// a proof for a run the verifier never started
	pipe, err := prover.PipeTo(verifier.Name())
	require.NoError(t, err)
	crypted, _, err := pipe.Pack(dto.ToJSONBytes(&proof.Message{
		Nonce: utils.NewNonceStr(),
		Data:  "{}",
	}))
	require.NoError(t, err)

	_, err = proof.HandleProof(verifier, comm.Packet{Payload: crypted})
	require.True(t, errors.Is(err, psm.ErrSequence))
}

func TestReplayedProofRequestFails(t *testing.T) {
	credDefID := issuer.SchemaState(schemaName).CredDefID

	_, err := proof.RequestProof(verifier, prover.Name(), jobApplication(credDefID))
	require.NoError(t, err)

	pkt := <-prover.Inbox().ProofReqs()
	_, _, err = proof.HandleProofRequest(prover, pkt)
	require.NoError(t, err)

	// the same envelope again: the run nonce is already taken
	_, _, err = proof.HandleProofRequest(prover, pkt)
	require.True(t, errors.Is(err, psm.ErrSequence))
}
