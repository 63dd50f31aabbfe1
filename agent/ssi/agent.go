package ssi

import (
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/async"
	"github.com/alloy-network/alloy-agent/agent/managed"
	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/findy-network/findy-wrapper-go/did"
	"github.com/findy-network/findy-wrapper-go/ledger"
	"github.com/findy-network/findy-wrapper-go/pairwise"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Agent interface {
	Wallet() (h int)
	RootDid() *DID
	CreateDID(seed string) (agentDid *DID)
	SendNYM(targetDid *DID, submitterDid, alias, role string) error
	AddDIDCache(DID *DID)
}

// DIDAgent is the base of every agent in the system. It owns the wallet,
// the root DID which names the agent on the ledger, and a DID cache for
// the peer DIDs the agent works with. Role specific behavior is layered on
// top of this type by the actor package.
type DIDAgent struct {
	WalletH managed.Wallet

	// the root DID, for a steward the one which gives rights to write ledger
	Root *DID

	// keep 'all' DIDs for performance reasons as well as better usability of our APIs
	DidCache Cache
}

func (a *DIDAgent) AddDIDCache(DID *DID) {
	a.DidCache.Add(DID)
}

func (a *DIDAgent) AssertWallet() {
	if a.WalletH == nil {
		panic("wallet is not open")
	}
}

func (a *DIDAgent) assertPool() {
	if a.Pool() == 0 {
		panic("pool is not open")
	}
}

// MARK: Wallet --

func (a *DIDAgent) OpenWallet(aw Wallet) {
	a.WalletH = Wallets.Open(&aw)
	if glog.V(5) {
		glog.Info("opening wallet: ", aw.Config.ID)
	}
}

func (a *DIDAgent) CloseWallet() {
	if a.WalletH != nil {
		a.WalletH.Close()
	} else {
		glog.Warning("no wallet to close!")
	}
}

func (a *DIDAgent) Wallet() (h int) {
	return a.WalletH.Handle()
}

func (a *DIDAgent) ManagedWallet() managed.Wallet {
	a.AssertWallet()
	return a.WalletH
}

// MARK: Pool --

func (a *DIDAgent) OpenPool(name string) {
	pool.Open(name)
}

func (a *DIDAgent) Pool() (v int) {
	return pool.Handle()
}

// MARK: DID --

// CreateDID creates a new DID thru the Future which means that returned
// *DID follows the 'lazy fetch' principle. You should call this as early as
// possible for the performance reasons. Most cases seed should be empty
// string.
func (a *DIDAgent) CreateDID(seed string) (agentDid *DID) {
	a.AssertWallet()
	f := new(async.Future)
	f.SetChan(did.CreateAndStore(a.Wallet(), did.Did{Seed: seed}))
	return NewAgentDid(a.WalletH, f)
}

func (a *DIDAgent) RootDid() *DID {
	return a.Root
}

func (a *DIDAgent) SetRootDid(rootDid *DID) {
	a.Root = rootDid
}

// MARK: App logic

func (a *DIDAgent) SendNYM(
	targetDid *DID, submitterDid, alias, role string) (err error) {

	a.AssertWallet()
	a.assertPool()
	targetDID := targetDid.Did()
	verkey := targetDid.VerKey()
	return ledger.WriteDID(a.Pool(), a.Wallet(), submitterDid, targetDID, verkey, alias, role)
}

// localKey returns a future to the verkey of the DID from a local wallet.
func (a *DIDAgent) localKey(didName string) (f *async.Future) {
	f = new(async.Future)
	f.SetChan(did.LocalKey(a.Wallet(), didName))
	return
}

// SaveTheirDID stores a peer DID and its verkey to our wallet and DID
// cache and returns the stored DID for pairwise binding. Anchoring the DID
// to the ledger is the caller's decision, see SendNYM.
func (a *DIDAgent) SaveTheirDID(did, vk string) (theirDID *DID, err error) {
	defer err2.Handle(&err, "save their DID")

	theirDID = NewDid(did, vk)
	a.DidCache.Add(theirDID)
	theirDID.Store(a.Wallet())

	// previous is an async func so make sure results are ready and check
	// the errors now before the DID is used further
	try.To(theirDID.StoreResult())

	return theirDID, nil
}

func (a *DIDAgent) OpenDID(name string) *DID {
	verkey := a.localKey(name)
	newDid := NewDid(name, verkey.Str1())
	a.DidCache.LazyAdd(name, newDid)
	return newDid
}

func (a *DIDAgent) LoadDID(did string) *DID {
	cached := a.DidCache.Get(did, true)
	if cached != nil {
		if cached.Wallet() == 0 {
			cached.SetWallet(a.WalletH)
		}
		return cached
	}
	d := NewDidWithKeyFuture(a.WalletH, did, a.localKey(did))
	a.DidCache.Add(d)
	return d
}

// Pairwise returns the DID pair of the pairwise stored under name. Empty
// name returns the first pairwise in the wallet.
func (a *DIDAgent) Pairwise(name string) (my string, their string, err error) {
	a.AssertWallet()
	r := <-pairwise.List(a.Wallet())
	if r.Err() != nil {
		return "", "", fmt.Errorf("agent pairwise: %s", r.Err())
	}
	pwd := pairwise.NewData(r.Str1())

	for _, d := range pwd {
		if d.Metadata == name || name == "" {
			return d.MyDid, d.TheirDid, nil
		}
	}
	return "", "", nil
}

// FindPW finds a pairwise by our DID and returns their DID and the name the
// pairwise is stored under.
func (a *DIDAgent) FindPW(my string) (their string, pwname string, err error) {
	a.AssertWallet()
	r := <-pairwise.List(a.Wallet())
	if r.Err() != nil {
		return "", "", fmt.Errorf("agent pairwise: %s", r.Err())
	}
	pwd := pairwise.NewData(r.Str1())
	for _, d := range pwd {
		if d.MyDid == my {
			return d.TheirDid, d.Metadata, nil
		}
	}
	return "", "", nil
}
