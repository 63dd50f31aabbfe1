package ssi

import (
	"fmt"
	"sync"

	"github.com/alloy-network/alloy-agent/agent/async"
	"github.com/alloy-network/alloy-agent/agent/managed"
	"github.com/alloy-network/alloy-agent/agent/service"
	"github.com/findy-network/findy-wrapper-go/did"
	"github.com/findy-network/findy-wrapper-go/dto"
	"github.com/findy-network/findy-wrapper-go/pairwise"
	"github.com/golang/glog"
	"github.com/lainio/err2"
)

type DidComm interface {
	Did() string
}

type Out interface {
	DidComm
	VerKey() string
	Endpoint() string
	AEndp() (ae service.Addr, err error)
}

type In interface {
	Out
	Wallet() int
}

// DID is an application framework level wrapper for an indy DID. Uses
// Future for async processing of the findy.Channel results.
type DID struct {
	wallet managed.Wallet // wallet handle if available

	data   *async.Future // DID data when queried from the wallet or received from a peer
	stored *async.Future // result of the store-their-DID operation
	key    *async.Future // DID construct where key is Future
	meta   *async.Future // meta data stored to DID
	pw     *async.Future // pairwise data stored to DID
	endp   *async.Future // the service endpoint of the DID when known

	sync.Mutex // when setting Future ptrs making sure that happens atomically
}

func NewAgentDid(wallet managed.Wallet, f *async.Future) (ad *DID) {
	return &DID{wallet: wallet, data: f}
}

func NewDid(did, verkey string) (d *DID) {
	f := &async.Future{V: dto.Result{Data: dto.Data{Str1: did, Str2: verkey}}, On: async.Consumed}
	return &DID{data: f}
}

func NewDidWithKeyFuture(wallet managed.Wallet, did string, verkey *async.Future) (d *DID) {
	f := &async.Future{V: dto.Result{Data: dto.Data{Str1: did, Str2: ""}}, On: async.Consumed}
	d = &DID{wallet: wallet, data: f, key: verkey}
	return d
}

func (d *DID) Did() string {
	didStr, _, _ := d.data.Strs()
	return didStr
}

func (d *DID) URI() string {
	return "did:sov:" + d.Did()
}

func (d *DID) VerKey() (vk string) {
	if d.hasKeyData() {
		_, vk, _ = d.data.Strs()
	} else if d.key != nil {
		vk = d.key.Str1()
	} else {
		vk = ""
	}
	return vk
}

func (d *DID) Wallet() int {
	if d.wallet == nil {
		return 0
	}
	return d.wallet.Handle()
}

func (d *DID) SetWallet(w managed.Wallet) {
	d.wallet = w
}

// Store stores this DID as their DID to the given wallet. Work is done thru
// futures so the call doesn't block. The meta data is set "pairwise". See
// StoreResult() for status.
func (d *DID) Store(wallet int) {
	ds, vk, _ := d.data.Strs()

	idJSON := did.Did{Did: ds, VerKey: vk}
	json := dto.ToJSON(idJSON)
	f := new(async.Future)

	f.SetChan(did.StoreTheir(wallet, json))

	d.Lock()
	d.stored = f
	d.Unlock()

	go func() {
		defer err2.Catch(func(err error) {
			glog.V(1).Infoln("set did meta:", err)
		})

		f := new(async.Future)
		f.SetChan(did.SetMeta(wallet, ds, "pairwise"))

		if f.Result().Err() == nil { // no error
			d.Lock()
			d.meta = f
			d.Unlock()
		}
	}()
}

// StoreResult returns error status of the Store() functions result. If
// storing their DID and related meta and pairwise data isn't ready, this
// call blocks.
func (d *DID) StoreResult() (err error) {
	defer err2.Handle(&err, "store DID")

	d.Lock()
	stored := d.stored
	d.Unlock()

	if stored != nil && stored.Result().Err() != nil {
		return fmt.Errorf("their: %s", stored.Result().Error())
	}

	d.Lock()
	meta := d.meta
	d.Unlock()

	if meta != nil && meta.Result().Err() != nil {
		return fmt.Errorf("meta: %s", meta.Result().Error())
	}

	d.Lock()
	pw := d.pw
	d.Unlock()

	if pw != nil && pw.Result().Err() != nil {
		return fmt.Errorf("pairwise: %s", pw.Result().Error())
	}
	return nil
}

// Pairwise writes the pairwise record binding our DID to their DID under
// the given name. The call blocks until both DIDs are ready.
func (d *DID) Pairwise(wallet int, theirDID *DID, meta string) {
	ok := d.data.Result().Err() == nil && theirDID.stored.Result().Err() == nil
	if ok {
		f := new(async.Future)
		f.SetChan(pairwise.Create(wallet, theirDID.Did(), d.Did(), meta))

		theirDID.Lock()
		theirDID.pw = f
		theirDID.Unlock()
	} else {
		glog.Error("could not store pairwise info")
	}
}

func (d *DID) hasKeyData() bool {
	_, vk, _ := d.data.Strs()
	return vk != ""
}

func (d *DID) Endpoint() string {
	ae, err := d.AEndp()
	if err != nil {
		return ""
	}
	return ae.Endp
}

func (d *DID) SetAEndp(ae service.Addr) {
	d.Lock()
	defer d.Unlock()

	d.endp = &async.Future{
		V:  dto.Result{Data: dto.Data{Str1: ae.Endp, Str2: ae.Key}},
		On: async.Consumed,
	}
}

func (d *DID) AEndp() (ae service.Addr, err error) {
	d.Lock()
	endp := d.endp
	d.Unlock()

	if endp == nil {
		return service.Addr{}, fmt.Errorf("no endpoint data")
	}
	if endp.Result().Err() != nil {
		return service.Addr{}, endp.Result().Err()
	}
	endP, vk, _ := endp.Strs()
	return service.Addr{Endp: endP, Key: vk}, nil
}
