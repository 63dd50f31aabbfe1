package cmds_test

import (
	"flag"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/alloy-network/alloy-agent/cmds/agency"
	stewardCmd "github.com/alloy-network/alloy-agent/cmds/steward"
	"github.com/alloy-network/alloy-agent/enclave"
	"github.com/alloy-network/alloy-agent/server"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

const (
	stewardTmpWalletKey = "6cih1cVgRH8yHD54nEYyPKLmdv67o8QbufxaTHot3Qxp"
)

var (
	stewardTmpWalletName string

	agencyCmd      agency.Cmd
	httpTestServer *httptest.Server

	registerFile string
	psmFile      string
	enclaveFile  string
)

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	defer err2.Catch(func(err error) {
		fmt.Println("error on setup", err)
	})

	// we don't want logs on file with tests
	try.To(flag.Set("logtostderr", "true"))

	tag := fmt.Sprintf("%d", time.Now().Unix())
	stewardTmpWalletName = "cmds-test-steward" + tag
	registerFile = filepath.Join(os.TempDir(), "cmds-test-register-"+tag+".json")
	psmFile = filepath.Join(os.TempDir(), "cmds-test-psm-"+tag+".bolt")
	enclaveFile = filepath.Join(os.TempDir(), "cmds-test-enclave-"+tag+".bolt")

	agencyCmd = agency.Cmd{
		PoolProtocol: 2,
		PoolName:     "FINDY_MEM_LEDGER",
		ServiceName:  "agency",
		HostAddr:     "localhost",
		HostScheme:   "http",
		HostPort:     8080,
		ServerPort:   8080,
		EnclavePath:  enclaveFile,
		Register:     registerFile,
		PsmDb:        psmFile,
		ResetData:    true, // IMPORTANT for testing
		VersionInfo:  "test test",
		Actors:       []string{"cmds-test-alice" + tag + ":prover"},
	}
	try.To(agencyCmd.Validate())

	agencyCmd.PreRun()
	try.To(agencyCmd.Setup())

	httpTestServer = server.StartTestHTTPServer2()
}

func tearDown() {
	httpTestServer.Close()

	ssi.Wallets.Reset()
	psm.Close()
	enclave.Close()
	pool.Close()

	_ = os.RemoveAll(registerFile)
	_ = os.RemoveAll(psmFile)
	_ = os.RemoveAll(enclaveFile)

	home := utils.IndyBaseDir()
	removeFiles(home, "/.indy_client/wallet/cmds-test-*")
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

func Test_CreateSteward(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	createStewardCmd := stewardCmd.CreateCmd{
		Cmd: cmds.Cmd{
			WalletName: stewardTmpWalletName,
			WalletKey:  stewardTmpWalletKey,
		},
		PoolName:    "FINDY_MEM_LEDGER",
		StewardSeed: "000000000000000000000000Steward2",
	}
	err := createStewardCmd.Validate()
	assert.NoError(err)
	r, err := createStewardCmd.Exec(os.Stdout)
	assert.NoError(err)
	assert.INotNil(r)
}

func Test_ValidateWalletExistence(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	cmd := cmds.Cmd{
		WalletName: stewardTmpWalletName,
		WalletKey:  "",
	}
	err := cmd.ValidateWalletExistence(false)
	assert.Error(err)
	err = cmd.ValidateWalletExistence(true)
	assert.NoError(err)

	cmd = cmds.Cmd{
		WalletName: stewardTmpWalletName + "NOT_EXIST",
		WalletKey:  "",
	}
	err = cmd.ValidateWalletExistence(false)
	assert.NoError(err)
	err = cmd.ValidateWalletExistence(true)
	assert.Error(err)
}

func Test_VersionEndpoint(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	resp := try.To1(httpTestServer.Client().Get(httpTestServer.URL + "/version"))
	defer resp.Body.Close()
	assert.Equal(resp.StatusCode, 200)
}
