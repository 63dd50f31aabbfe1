package managed

import storage "github.com/alloy-network/alloy-agent/agent/storage/api"

// Wallet is a helper interface for managed wallets. You should always use
// this type instead of a plain indy SDK wallet handle. You present wallet
// configurations with ssi.Wallet and open them with ssi.Wallets.Open().
// The manager keeps only a limited amount of OS level handles open and
// reopens evicted wallets transparently.
type Wallet interface {
	Close()
	Handle() int
	Config() WalletCfg
	Storage() storage.AgentStorage
}

type Identifier interface {
	UniqueID() string
}

type WalletCfg interface {
	Identifier
	ID() string
	Key() string
}
