package ssi

import (
	"os"
	"path/filepath"

	"github.com/alloy-network/alloy-agent/agent/async"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/findy-network/findy-wrapper-go/wallet"
	"github.com/golang/glog"
)

// Wallet is the configuration of one agent's indy wallet: the ID names the
// wallet file, the credentials open it. The value is used both for creating
// the wallet and for opening it later.
type Wallet struct {
	Config      wallet.Config
	Credentials wallet.Credentials
}

const WalletAlreadyExistsError = 203

func NewWalletCfg(name, key string) (w *Wallet) {
	return &Wallet{
		Config: wallet.Config{ID: name},
		Credentials: wallet.Credentials{
			Key:                 key,
			KeyDerivationMethod: "ARGON2I_MOD",
		},
	}
}

// NewRawWalletCfg uses the RAW derivation method which skips the expensive
// key derivation. The key must then be a ready 32 byte key in base58.
func NewRawWalletCfg(name, key string) (w *Wallet) {
	return &Wallet{
		Config: wallet.Config{ID: name},
		Credentials: wallet.Credentials{
			Key:                 key,
			KeyDerivationMethod: "RAW",
		},
	}
}

func walletPath() string {
	const walletSubPath = "/.indy_client/wallet"

	home := utils.IndyBaseDir()
	return filepath.Join(home, walletSubPath)
}

// Create makes the wallet and tells if it already existed. Other errors are
// thrown as err2 errors.
func (w *Wallet) Create() (exist bool) {
	r := <-wallet.Create(w.Config, w.Credentials)
	if r.Err() != nil {
		// already exist, not a real error, let it thru
		if WalletAlreadyExistsError != r.ErrCode() {
			panic(r.Err()) // panic with error type, err2 will catch
		}
		return true
	}
	return false
}

func (w *Wallet) Open() (f *async.Future) {
	if glog.V(3) {
		glog.Info("opening wallet: ", w.Config.ID)
	}
	f = new(async.Future)
	f.SetChan(wallet.Open(w.Config, w.Credentials))
	return f
}

func (w *Wallet) Close(handle int) (f *async.Future) {
	if glog.V(3) {
		glog.Infof("closing wallet(%d): %s", handle, w.Config.ID)
	}
	f = new(async.Future)
	f.SetChan(wallet.Close(handle))
	return f
}

func (w *Wallet) Exists() bool {
	name := filepath.Join(walletPath(), w.Config.ID)
	_, err := os.Stat(name)
	return !os.IsNotExist(err)
}

func (w *Wallet) UniqueID() string {
	return filepath.Join(walletPath(), w.Config.ID)
}

func (w *Wallet) SetID(id string) {
	w.Config.ID = id
}

func (w *Wallet) SetKey(key string) {
	w.Credentials.Key = key
}

func (w *Wallet) SetKeyMethod(m string) {
	w.Credentials.KeyDerivationMethod = m
}

func (w *Wallet) ID() string {
	return w.Config.ID
}

func (w *Wallet) Key() string {
	return w.Credentials.Key
}
