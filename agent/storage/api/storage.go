package api

import (
	"github.com/hyperledger/aries-framework-go/spi/storage"
)

type AgentStorageConfig struct {
	AgentKey string
	AgentID  string
	FilePath string
}

// AgentStorage is the persistent, non-wallet state of a single agent. The
// wallet holds key material and credentials, this storage holds everything
// the agent knows about its peers and about the ledger objects it owns.
type AgentStorage interface {
	Open() error
	Close() error

	DIDStorage() DIDStorage
	ConnectionStorage() ConnectionStorage
	CredDefStorage() CredDefStorage

	OpenStore(name string) (storage.Store, error)
	SetStoreConfig(name string, config storage.StoreConfiguration) error
	GetStoreConfig(name string) (storage.StoreConfiguration, error)
	GetOpenStores() []storage.Store
}

// DID is a peer DID together with its verification key. The key is what the
// rest of the system needs: authcrypt addressing and signature checks are
// done with verkeys, not with the DID string itself.
type DID struct {
	ID     string
	VerKey string
}

type DIDStorage interface {
	SaveDID(did DID) error
	GetDID(id string) (*DID, error)
}

// Connection is one pairwise relationship from this agent's point of view.
// ID is the local name of the relationship i.e. what the user called the
// peer when the connection was made.
type Connection struct {
	ID            string
	MyDID         string
	TheirDID      string
	TheirVerKey   string
	TheirEndpoint string
	Nonce         string
}

type ConnectionStorage interface {
	SaveConnection(conn Connection) error
	GetConnection(id string) (*Connection, error)
	ListConnections() ([]Connection, error)
}

// CredDefRecord binds a schema to the credential definition this agent has
// published for it. There is exactly one record per schema, keyed by the
// schema ID, so an issuer can always answer "which cred def do I issue with
// for this schema" without scanning the ledger.
type CredDefRecord struct {
	SchemaID  string
	CredDefID string
	Tag       string
}

type CredDefStorage interface {
	SaveCredDef(cd CredDefRecord) error
	GetCredDef(schemaID string) (*CredDefRecord, error)
	ListCredDefs() ([]CredDefRecord, error)
}
