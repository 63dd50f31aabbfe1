package issuance_test

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
	"github.com/alloy-network/alloy-agent/protocol/registry"
	"github.com/findy-network/findy-common-go/dto"
	_ "github.com/findy-network/findy-wrapper-go/addons"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "4Vwsj6Qcczmhk2Ak7H5GGvFE1cQCdRtWfW4jchahNUoE"
	hexKey  = "ff799e65bd3da1d3225b04acbcd08f7bdc7b05ba0337ab41e7d2b6e30985bcdb"

	schemaName = "degree"
)

var (
	issuer *actor.Actor
	prover *actor.Actor

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
	psmFile = filepath.Join(os.TempDir(), "iss-test-psm-"+tag+".bolt")
	enclaveFile = filepath.Join(os.TempDir(), "iss-test-enclave-"+tag+".bolt")

	if err := psm.Open(psmFile); err != nil {
		panic(err)
	}
	if err := enclave.InitSealedBox(enclaveFile, "", hexKey); err != nil {
		panic(err)
	}

	issuer = newActor("iss-test-issuer"+tag, actor.RoleIssuer)
	prover = newActor("iss-test-prover"+tag, actor.RoleProver)

	issuer.OpenPool("FINDY_MEM_LEDGER")
	issuer.SetRootDid(issuer.CreateDID("000000000000000000000000Steward1"))

	prover.SetHandshake(onboarding.HandlerFor(prover))

	// transport shortcut: every send lands straight in the named actor
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

	if err := onboarding.Onboard(issuer, prover.Name(), prover.Addr(),
		prover.Role().LedgerRole()); err != nil {
		panic(err)
	}

	name, err := registry.CreateSchema(issuer, &ssi.Schema{
		Name:    "Degree",
		Version: "1.0",
		Attrs: []string{
			"first_name", "last_name", "degree", "status",
			"ssn", "year", "average",
		},
	})
	if err != nil {
		panic(err)
	}
	if _, err := registry.CreateCredDef(issuer, name, false); err != nil {
		panic(err)
	}

	issuer.SchemaState(schemaName).Values = issuance.CodedValues(map[string]string{
		"first_name": "Alice",
		"last_name":  "Garcia",
		"degree":     "Bachelor of Science, Marketing",
		"status":     "graduated",
		"ssn":        "123-45-6789",
		"year":       "2015",
		"average":    "5",
	})
}

func tearDown() {
	issuer.CloseWallet()
	prover.CloseWallet()
	ssi.Wallets.Reset()

	psm.Close()
	enclave.Close()
	_ = os.RemoveAll(psmFile)
	_ = os.RemoveAll(psmFile + "_backup")
	_ = os.RemoveAll(enclaveFile)

	home := utils.IndyBaseDir()
	removeFiles(home, "/.indy_client/wallet/iss-test-*")
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

func TestIssueRoundTrip(t *testing.T) {
	nonce, err := issuance.Offer(issuer, prover.Name(), schemaName)
	require.NoError(t, err)
	require.NotEmpty(t, nonce)

	pkt := <-prover.Inbox().Offers()
	issuerName, msg, err := issuance.HandleOffer(prover, pkt)
	require.NoError(t, err)
	require.Equal(t, issuer.Name(), issuerName)
	require.Equal(t, nonce, msg.Nonce)
	require.Equal(t, schemaName, msg.SchemaName)

	require.NoError(t, issuance.RequestCredential(prover, issuerName, msg))

	pkt = <-issuer.Inbox().CredReqs()
	require.NoError(t, issuance.HandleCredRequest(issuer, pkt))

	pkt = <-prover.Inbox().Creds()
	require.NoError(t, issuance.HandleCredential(prover, pkt))

	// the stored credential's ids equal the issuance time ids
	iState := issuer.SchemaState(schemaName)
	pState := prover.SchemaState(schemaName)
	require.Equal(t, iState.SchemaID, pState.SchemaID)
	require.Equal(t, iState.CredDefID, pState.CredDefID)

	// and the metadata needed for storage never travelled
	require.NotEmpty(t, pState.CredRequestMeta)

	iConn, err := issuer.Connection(prover.Name())
	require.NoError(t, err)
	pConn, err := prover.Connection(issuer.Name())
	require.NoError(t, err)

	ready, err := psm.IsPSMReady(psm.StateKey{DID: iConn.MyDID, Nonce: nonce})
	require.NoError(t, err)
	require.True(t, ready)
	ready, err = psm.IsPSMReady(psm.StateKey{DID: pConn.MyDID, Nonce: nonce})
	require.NoError(t, err)
	require.True(t, ready)
}

func TestReplayedOfferFails(t *testing.T) {
	_, err := issuance.Offer(issuer, prover.Name(), schemaName)
	require.NoError(t, err)

	pkt := <-prover.Inbox().Offers()
	_, _, err = issuance.HandleOffer(prover, pkt)
	require.NoError(t, err)

	// the same envelope again: the run nonce is already taken
	_, _, err = issuance.HandleOffer(prover, pkt)
	require.True(t, errors.Is(err, psm.ErrSequence))
}

func TestCredentialBeforeRequestFails(t *testing.T) {
	nonce, err := issuance.Offer(issuer, prover.Name(), schemaName)
	require.NoError(t, err)

	pkt := <-prover.Inbox().Offers()
	_, _, err = issuance.HandleOffer(prover, pkt)
	require.NoError(t, err)

	// the issuer skips the request phase and pushes a credential
	pipe, err := issuer.PipeTo(prover.Name())
	require.NoError(t, err)
	crypted, _, err := pipe.Pack(dto.ToJSONBytes(&issuance.Message{
		Nonce:      nonce,
		SchemaName: schemaName,
		Data:       "{}",
	}))
	require.NoError(t, err)

	err = issuance.HandleCredential(prover, comm.Packet{Payload: crypted})
	require.True(t, errors.Is(err, psm.ErrSequence))
}
