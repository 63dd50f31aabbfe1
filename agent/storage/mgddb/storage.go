package mgddb

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/alloy-network/alloy-agent/agent/storage/api"
	"github.com/alloy-network/alloy-agent/agent/storage/wrapper"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

const (
	NameDID        = "did"
	NameConnection = "connection"
	NameCredDef    = "creddef"
)

var bucketIDs = []string{
	NameDID,
	NameConnection,
	NameCredDef,
}

// Storage is the bolt backed agent storage. It keeps the agent's pairwise
// connections, the verkeys of its peers and the cred def records the agent
// has published, all encrypted with the agent's storage key.
type Storage struct {
	*wrapper.StorageProvider
	didStore     wrapper.Store
	connStore    wrapper.Store
	credDefStore wrapper.Store
}

func New(config api.AgentStorageConfig) (a *Storage, err error) {
	defer err2.Handle(&err, "agent storage new")

	me := &Storage{
		StorageProvider: wrapper.New(wrapper.Config{
			Key:       config.AgentKey,
			FileName:  config.AgentID,
			FilePath:  config.FilePath,
			BucketIDs: bucketIDs,
		}),
	}

	try.To(me.Init())

	var ok bool
	didStore := try.To1(me.OpenStore(NameDID))
	me.didStore, ok = didStore.(wrapper.Store)
	assert.That(ok, "did store should always be wrapper store")

	connStore := try.To1(me.OpenStore(NameConnection))
	me.connStore, ok = connStore.(wrapper.Store)
	assert.That(ok, "conn store should always be wrapper store")

	credDefStore := try.To1(me.OpenStore(NameCredDef))
	me.credDefStore, ok = credDefStore.(wrapper.Store)
	assert.That(ok, "cred def store should always be wrapper store")

	return me, nil
}

// StorageKey derives the storage encryption key from the wallet key, so
// that the one secret the agent owner already has opens both the wallet
// and the agent storage. The ID is mixed in to keep two agents with the
// same wallet key from sharing a storage key.
func StorageKey(walletKey, id string) string {
	h := sha256.Sum256([]byte(walletKey + "/" + id))
	return hex.EncodeToString(h[:])
}

func (s *Storage) Open() error {
	return s.Init()
}

func (s *Storage) DIDStorage() api.DIDStorage {
	return s
}

func (s *Storage) ConnectionStorage() api.ConnectionStorage {
	return s
}

func (s *Storage) CredDefStorage() api.CredDefStorage {
	return s
}

// DIDStorage

func (s *Storage) SaveDID(did api.DID) error {
	return s.didStore.Put(did.ID, dto.ToGOB(did))
}

func (s *Storage) GetDID(id string) (did *api.DID, err error) {
	defer err2.Handle(&err, "did storage get did")

	bytes := try.To1(s.didStore.Get(id))

	did = &api.DID{}
	dto.FromGOB(bytes, did)
	return
}

// ConnectionStorage

func (s *Storage) SaveConnection(conn api.Connection) error {
	return s.connStore.Put(conn.ID, dto.ToGOB(conn))
}

func (s *Storage) GetConnection(id string) (conn *api.Connection, err error) {
	defer err2.Handle(&err, "conn storage get conn")

	bytes := try.To1(s.connStore.Get(id))

	conn = &api.Connection{}
	dto.FromGOB(bytes, conn)
	return
}

func (s *Storage) ListConnections() (res []api.Connection, err error) {
	defer err2.Handle(&err, "conn storage list conn")

	res = make([]api.Connection, 0)
	conn := &api.Connection{}
	_ = try.To1(s.connStore.GetAll(func(bytes []byte) []byte {
		dto.FromGOB(bytes, conn)
		res = append(res, *conn)
		return bytes
	}))

	return res, nil
}

// CredDefStorage

func (s *Storage) SaveCredDef(cd api.CredDefRecord) error {
	return s.credDefStore.Put(cd.SchemaID, dto.ToGOB(cd))
}

func (s *Storage) GetCredDef(schemaID string) (cd *api.CredDefRecord, err error) {
	defer err2.Handle(&err, "cred def storage get")

	bytes := try.To1(s.credDefStore.Get(schemaID))

	cd = &api.CredDefRecord{}
	dto.FromGOB(bytes, cd)
	return
}

func (s *Storage) ListCredDefs() (res []api.CredDefRecord, err error) {
	defer err2.Handle(&err, "cred def storage list")

	res = make([]api.CredDefRecord, 0)
	cd := &api.CredDefRecord{}
	_ = try.To1(s.credDefStore.GetAll(func(bytes []byte) []byte {
		dto.FromGOB(bytes, cd)
		res = append(res, *cd)
		return bytes
	}))

	return res, nil
}
