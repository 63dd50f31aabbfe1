package lifecycle_test

import (
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
	"github.com/alloy-network/alloy-agent/protocol/lifecycle"
	"github.com/alloy-network/alloy-agent/protocol/onboarding"
	_ "github.com/findy-network/findy-wrapper-go/addons"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "4Vwsj6Qcczmhk2Ak7H5GGvFE1cQCdRtWfW4jchahNUoE"
	hexKey  = "ff799e65bd3da1d3225b04acbcd08f7bdc7b05ba0337ab41e7d2b6e30985bcdb"

	stewardSeed = "000000000000000000000000Steward1"
)

var (
	runner *lifecycle.Runner
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
	psmFile = filepath.Join(os.TempDir(), "lc-test-psm-"+tag+".bolt")
	enclaveFile = filepath.Join(os.TempDir(), "lc-test-enclave-"+tag+".bolt")

	if err := psm.Open(psmFile); err != nil {
		panic(err)
	}
	if err := enclave.InitSealedBox(enclaveFile, "", hexKey); err != nil {
		panic(err)
	}

	runner = &lifecycle.Runner{
		Steward:  newActor("lc-test-steward"+tag, actor.RoleSteward),
		Issuer:   newActor("lc-test-issuer"+tag, actor.RoleIssuer),
		Prover:   newActor("lc-test-prover"+tag, actor.RoleProver),
		Verifier: newActor("lc-test-verifier"+tag, actor.RoleVerifier),
	}

	runner.Steward.OpenPool("FINDY_MEM_LEDGER")
	runner.Steward.SetRootDid(runner.Steward.CreateDID(stewardSeed))

	for _, a := range []*actor.Actor{runner.Issuer, runner.Prover, runner.Verifier} {
		a.SetHandshake(onboarding.HandlerFor(a))
	}

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
}

func tearDown() {
	for _, a := range actors {
		a.CloseWallet()
	}
	ssi.Wallets.Reset()

	psm.Close()
	enclave.Close()
	_ = os.RemoveAll(psmFile)
	_ = os.RemoveAll(psmFile + "_backup")
	_ = os.RemoveAll(enclaveFile)

	home := utils.IndyBaseDir()
	removeFiles(home, "/.indy_client/wallet/lc-test-*")
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

func TestLifecycleEndToEnd(t *testing.T) {
	att, err := runner.Run()
	require.NoError(t, err)
	require.NotNil(t, att)

	require.Equal(t, "Bachelor of Science, Marketing",
		att.Revealed["attr3_referent"].Raw)
	require.Equal(t, "graduated", att.Revealed["attr4_referent"].Raw)
	require.Equal(t, "123-45-6789", att.Revealed["attr5_referent"].Raw)

	require.Equal(t, "Alice", att.SelfAttested["attr1_referent"])
	require.Equal(t, "Garcia", att.SelfAttested["attr2_referent"])
	require.Equal(t, "123-45-6789", att.SelfAttested["attr6_referent"])

	// the prover's stored record points to the published artifacts
	schemaName := "degree"
	iState := runner.Issuer.SchemaState(schemaName)
	pState := runner.Prover.SchemaState(schemaName)
	require.Equal(t, iState.SchemaID, pState.SchemaID)
	require.Equal(t, iState.CredDefID, pState.CredDefID)
}
