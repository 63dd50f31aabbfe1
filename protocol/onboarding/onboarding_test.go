package onboarding_test

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
	"github.com/alloy-network/alloy-agent/agent/sec"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/alloy-network/alloy-agent/protocol/onboarding"
	"github.com/findy-network/findy-common-go/dto"
	_ "github.com/findy-network/findy-wrapper-go/addons"
	"github.com/stretchr/testify/require"
)

const testKey = "4Vwsj6Qcczmhk2Ak7H5GGvFE1cQCdRtWfW4jchahNUoE"

var (
	steward *actor.Actor
	issuer  *actor.Actor

	walletTag string
)

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	_ = flag.Set("logtostderr", "true")

	walletTag = fmt.Sprintf("%d", time.Now().Unix())

	steward = newActor("onb-test-steward", actor.RoleSteward)
	issuer = newActor("onb-test-issuer", actor.RoleIssuer)

	steward.OpenPool("FINDY_MEM_LEDGER")

	// the steward is the only actor with a pre-seeded ledger identity
	root := steward.CreateDID("000000000000000000000000Steward1")
	steward.SetRootDid(root)

	steward.SetAddr(endp.NewClientAddr("http://test/agency/onb-test-steward"))
	issuer.SetAddr(endp.NewClientAddr("http://test/agency/onb-test-issuer"))
	issuer.SetHandshake(onboarding.HandlerFor(issuer))

	// transport shortcut: handshakes go straight to the issuer's handler
	comm.SendAndWaitReq = func(urlStr string, msg io.Reader, _ time.Duration) ([]byte, error) {
		addr := endp.NewClientAddr(urlStr)
		if addr.Kind != endp.HandshakeKind {
			return nil, fmt.Errorf("unexpected kind %s", addr.Kind)
		}
		body, _ := io.ReadAll(msg)
		return issuer.Handshake(body)
	}
}

func tearDown() {
	steward.CloseWallet()
	issuer.CloseWallet()
	ssi.Wallets.Reset()

	home := utils.IndyBaseDir()
	removeFiles(home, "/.indy_client/wallet/onb-test-*")
	removeFiles(home, "/.indy_client/onb-test-*.bolt*")
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
	w := ssi.NewRawWalletCfg(name+walletTag, testKey)
	w.Create()
	return actor.New(name, role, w)
}

func TestOnboard(t *testing.T) {
	err := onboarding.Onboard(steward, issuer.Name(), issuer.Addr(),
		issuer.Role().LedgerRole())
	require.NoError(t, err)

	// both ends hold the connection now
	sConn, err := steward.Connection(issuer.Name())
	require.NoError(t, err)
	iConn, err := issuer.Connection(steward.Name())
	require.NoError(t, err)

	require.Equal(t, sConn.MyDID, iConn.TheirDID)
	require.Equal(t, iConn.MyDID, sConn.TheirDID)
	require.Equal(t, sConn.Nonce, iConn.Nonce)

	// the issuer got its root identity from its first onboarding
	require.NotNil(t, issuer.Root)
	require.Equal(t, iConn.MyDID, issuer.RootDid().Did())
}

func TestOnboardMutualAuthRoundTrip(t *testing.T) {
	// runs after TestOnboard: pipes exist in both directions
	toIssuer, err := steward.PipeTo(issuer.Name())
	require.NoError(t, err)
	toSteward, err := issuer.PipeTo(steward.Name())
	require.NoError(t, err)

	msg := []byte("mutual auth check")

	packed, _, err := toIssuer.Pack(msg)
	require.NoError(t, err)
	received, senderVK, err := toSteward.Unpack(packed)
	require.NoError(t, err)
	require.Equal(t, msg, received)
	require.Equal(t, toSteward.Out.VerKey(), senderVK)

	// and back again
	packed, _, err = toSteward.Pack(msg)
	require.NoError(t, err)
	received, senderVK, err = toIssuer.Unpack(packed)
	require.NoError(t, err)
	require.Equal(t, msg, received)
	require.Equal(t, toIssuer.Out.VerKey(), senderVK)
}

func TestOnboardWrongKeyFails(t *testing.T) {
	// a mallory actor packs the response with its own unrelated key
	mallory := newActor("onb-test-mallory", actor.RoleProver)
	defer mallory.CloseWallet()
	malloryDID := mallory.CreateDID("")

	old := comm.SendAndWaitReq
	defer func() { comm.SendAndWaitReq = old }()

	comm.SendAndWaitReq = func(urlStr string, msg io.Reader, _ time.Duration) ([]byte, error) {
		body, _ := io.ReadAll(msg)
		reply, err := issuer.Handshake(body)
		if err != nil {
			return nil, err
		}
		// drop the legitimate reply and re-crypt a response with
		// mallory's key: the envelope opens but the sender cannot be
		// the declared one
		_ = reply
		var req onboarding.Request
		dto.FromJSON(body, &req)
		p := sec.NewPipeByVerkey(malloryDID, req.VerKey)
		crypted, _, err := p.Pack([]byte(
			`{"label":"onb-test-issuer","did":"` + malloryDID.Did() +
				`","verkey":"` + issuer.RootDid().VerKey() +
				`","endpoint":"http://test/agency/onb-test-issuer","nonce":"` +
				req.Nonce + `"}`))
		return crypted, err
	}

	err := onboarding.Onboard(steward, "onb-test-evil", issuer.Addr(), "")
	require.ErrorIs(t, err, onboarding.ErrOnboarding)

	// nothing was stored for the failed handshake
	_, err = steward.Connection("onb-test-evil")
	require.Error(t, err)
}
