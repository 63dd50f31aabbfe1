// Package actor binds a role, a wallet and a transport address into one
// value that the protocol packages operate on. Every protocol call takes
// the acting Actor explicitly; there are no process wide actor registries
// or singletons, which keeps two actors of the same role in one process
// fully independent.
package actor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/endp"
	"github.com/alloy-network/alloy-agent/agent/sec"
	"github.com/alloy-network/alloy-agent/agent/service"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/agent/storage/api"
	"github.com/alloy-network/alloy-agent/enclave"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

// Role tells what part an actor plays in the credential lifecycle.
type Role byte

const (
	RoleSteward Role = iota
	RoleIssuer
	RoleProver
	RoleVerifier
)

func (r Role) String() string {
	switch r {
	case RoleSteward:
		return "steward"
	case RoleIssuer:
		return "issuer"
	case RoleProver:
		return "prover"
	case RoleVerifier:
		return "verifier"
	default:
		return "unknown"
	}
}

// RoleByName parses a role name, the form the CLI and the actor register
// carry roles in.
func RoleByName(s string) (r Role, err error) {
	switch s {
	case "steward":
		return RoleSteward, nil
	case "issuer":
		return RoleIssuer, nil
	case "prover":
		return RoleProver, nil
	case "verifier":
		return RoleVerifier, nil
	default:
		return 0, fmt.Errorf("unknown role %s", s)
	}
}

// LedgerRole returns the NYM role an actor of this role is anchored with.
// Only issuers write ledger artifacts (schemas, cred defs) so only they
// need the trust anchor role; everyone else is anchored role-less.
func (r Role) LedgerRole() string {
	if r == RoleIssuer {
		return "TRUST_ANCHOR"
	}
	return ""
}

// indy error code for a master secret that is already in the wallet
const masterSecretExistsError = 404

type PipeMap map[string]sec.Pipe

// Actor is one participant of the credential lifecycle. It owns its wallet
// exclusively, shares the ledger pool with the process, and talks to its
// peers only through authcrypted envelopes.
type Actor struct {
	ssi.DIDAgent

	name string
	role Role
	addr *endp.Addr

	inbox *comm.Inbox

	handshake func(request []byte) (response []byte, err error)

	pwLock sync.Mutex // pw map lock, see below:
	pws    PipeMap    // pairwise secure pipes by peer name

	schemaLock sync.Mutex
	schemas    map[string]*SchemaBoundState

	runLock sync.Mutex
	runs    map[string]*sync.Mutex
}

var _ comm.Receiver = (*Actor)(nil)

// New creates an actor and opens its wallet. The wallet must exist, see
// ssi.Wallet.Create.
func New(name string, role Role, walletCfg *ssi.Wallet) *Actor {
	a := &Actor{
		name:    name,
		role:    role,
		inbox:   comm.NewInbox(),
		pws:     make(PipeMap),
		schemas: make(map[string]*SchemaBoundState),
		runs:    make(map[string]*sync.Mutex),
	}
	a.OpenWallet(*walletCfg)
	return a
}

func (a *Actor) Name() string {
	return a.name
}

func (a *Actor) Role() Role {
	return a.role
}

func (a *Actor) Inbox() *comm.Inbox {
	return a.inbox
}

// Addr returns the actor's own transport base address. It is nil until the
// server wires the actor in, see SetAddr.
func (a *Actor) Addr() *endp.Addr {
	return a.addr
}

func (a *Actor) SetAddr(addr *endp.Addr) {
	a.addr = addr
}

// SetHandshake sets the handler for inbound onboarding requests. Actors
// without one refuse the handshake.
func (a *Actor) SetHandshake(h func(request []byte) (response []byte, err error)) {
	a.handshake = h
}

// Deliver routes an inbound packet to the actor's typed inbox.
func (a *Actor) Deliver(kind string, p comm.Packet) error {
	return a.inbox.Deliver(kind, p)
}

// Handshake runs the onboardee side of the onboarding protocol for an
// inbound plain text connection request.
func (a *Actor) Handshake(request []byte) (response []byte, err error) {
	if a.handshake == nil {
		return nil, fmt.Errorf("actor %s does not accept onboarding", a.name)
	}
	return a.handshake(request)
}

// Storage is the actor's persistent directory: peer DIDs, connections and
// published cred defs.
func (a *Actor) Storage() api.AgentStorage {
	return a.ManagedWallet().Storage()
}

// SaveConnection stores one pairwise relationship everywhere the actor
// needs it: the peer DID and verkey to the wallet and DID cache, the
// pairwise binding between the DIDs, and the connection record with the
// peer's transport endpoint to the directory.
func (a *Actor) SaveConnection(conn api.Connection) (err error) {
	defer err2.Handle(&err, "save connection")

	theirDID := try.To1(a.SaveTheirDID(conn.TheirDID, conn.TheirVerKey))

	myDID := a.LoadDID(conn.MyDID)
	myDID.Pairwise(a.Wallet(), theirDID, conn.ID)
	try.To(theirDID.StoreResult())

	try.To(a.Storage().DIDStorage().SaveDID(api.DID{
		ID:     conn.TheirDID,
		VerKey: conn.TheirVerKey,
	}))
	try.To(a.Storage().ConnectionStorage().SaveConnection(conn))

	// the connection may replace an older one under the same name
	a.pwLock.Lock()
	delete(a.pws, conn.ID)
	a.pwLock.Unlock()

	glog.V(1).Infoln(a.name, "connected to", conn.ID, "as", conn.MyDID)
	return nil
}

// Connection returns the stored connection record for the peer name.
func (a *Actor) Connection(peerName string) (conn *api.Connection, err error) {
	defer err2.Handle(&err, "actor connection")

	return try.To1(a.Storage().ConnectionStorage().GetConnection(peerName)), nil
}

// ConnectionByVerKey finds the connection whose peer speaks with the given
// verkey. Inbound envelopes authenticate their sender by this key; the
// connection tells who the sender is.
func (a *Actor) ConnectionByVerKey(vk string) (conn *api.Connection, err error) {
	defer err2.Handle(&err, "connection by verkey")

	conns := try.To1(a.Storage().ConnectionStorage().ListConnections())
	for i := range conns {
		if conns[i].TheirVerKey == vk {
			return &conns[i], nil
		}
	}
	return nil, fmt.Errorf("no connection for verkey %s", vk)
}

// PipeTo returns the crypted channel to a named peer built from the stored
// connection: our pairwise DID in, their verkey out. Pipes are cached by
// peer name.
func (a *Actor) PipeTo(peerName string) (cp sec.Pipe, err error) {
	defer err2.Handle(&err, "actor pipe")

	a.pwLock.Lock()
	defer a.pwLock.Unlock()

	if secPipe, ok := a.pws[peerName]; ok {
		return secPipe, nil
	}

	conn := try.To1(a.Storage().ConnectionStorage().GetConnection(peerName))

	cp.In = a.LoadDID(conn.MyDID)
	out := ssi.NewDid(conn.TheirDID, conn.TheirVerKey)
	out.SetAEndp(service.Addr{Endp: conn.TheirEndpoint, Key: conn.TheirVerKey})
	cp.Out = out

	a.pws[peerName] = cp
	return cp, nil
}

// AddrTo returns the peer's transport base address. Protocol senders
// compose the kind endpoint from it with WithKind.
func (a *Actor) AddrTo(peerName string) (addr *endp.Addr, err error) {
	defer err2.Handle(&err, "actor peer addr")

	conn := try.To1(a.Storage().ConnectionStorage().GetConnection(peerName))
	return endp.NewClientAddrWithKey(conn.TheirEndpoint, conn.TheirVerKey), nil
}

// EnsureRoot promotes the DID to the actor's root identity if the actor
// has none yet. An actor's first onboarding gives it its ledger identity
// and did/verkey are immutable after that.
func (a *Actor) EnsureRoot(d *ssi.DID) {
	if a.Root == nil {
		a.SetRootDid(d)
		glog.V(1).Infoln(a.name, "root identity is", d.Did())
	}
}

// MasterSecret returns this actor's master secret id, creating both the
// enclave record and the wallet side secret on the first call. The secret
// is created once per actor lifetime and reused across all schemas.
func (a *Actor) MasterSecret() (sec string, err error) {
	defer err2.Handle(&err, "master secret")

	assert.NotNil(a.Root, "actor needs its root identity first")

	sec, err = enclave.WalletMasterSecretByDID(a.RootDid().Did())
	if err == nil {
		return sec, nil
	}
	if !errors.Is(err, enclave.ErrNotExists) {
		return "", err
	}

	glog.V(2).Infoln(a.name, "creating a master secret into the wallet")
	sec = try.To1(enclave.NewWalletMasterSecret(a.RootDid().Did()))
	r := <-anoncreds.ProverCreateMasterSecret(a.Wallet(), sec)
	if r.Err() != nil || sec != r.Str1() {
		try.To(fmt.Errorf("wallet master secret: %v", r.Err()))
	}
	return sec, nil
}

// LockRun reserves the (peer, schema) negotiation for the caller and
// returns the release. Steps of one credential run execute strictly in
// order, one in flight per pair; distinct pairs run in parallel.
func (a *Actor) LockRun(peerName, schemaName string) (release func()) {
	a.runLock.Lock()
	key := peerName + "|" + schemaName
	l, ok := a.runs[key]
	if !ok {
		l = &sync.Mutex{}
		a.runs[key] = l
	}
	a.runLock.Unlock()

	l.Lock()
	return l.Unlock
}
