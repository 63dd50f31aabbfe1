package psm

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/findy-network/findy-common-go/crypto"
	"github.com/findy-network/findy-common-go/crypto/db"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

// Bucket types double as Rep type tags: a rep's Type names the bucket it
// lives in.
const (
	BucketPSM byte = 0 + iota
	BucketIssueCred
	BucketPresentProof
)

var (
	buckets = [][]byte{
		{BucketPSM},
		{BucketIssueCred},
		{BucketPresentProof},
	}

	theCipher *crypto.Cipher

	mgdDB db.Handle
)

// Open opens the state machine database by the name of the file. Without a
// cipher the data is stored as plain text, see OpenWithKey.
func Open(filename string) (err error) {
	mgdDB = db.New(db.Cfg{
		Filename:   filename,
		Buckets:    buckets,
		BackupName: filename + "_backup",
	})
	return nil
}

// OpenWithKey opens the database like Open and sets the cipher from the hex
// coded symmetric key. With the cipher set, keys are stored hashed and
// values encrypted, and the bolt file on disk leaks neither peer DIDs nor
// protocol data.
func OpenWithKey(filename, hexKey string) (err error) {
	defer err2.Handle(&err, "psm open")

	k := try.To1(hex.DecodeString(hexKey))
	theCipher = crypto.NewCipher(k)
	return Open(filename)
}

// Close closes the database. It can be opened again with Open or
// OpenWithKey.
func Close() {
	defer err2.Catch(func(err error) {
		glog.Error(err)
	})

	if mgdDB != nil {
		try.To(mgdDB.Close())
		mgdDB = nil
	}
	theCipher = nil
}

func addData(key []byte, value []byte, bucketID byte) (err error) {
	return mgdDB.AddKeyValueToBucket(buckets[bucketID],
		&db.Data{
			Data: value,
			Read: encrypt,
		},
		&db.Data{
			Data: key,
			Read: hash,
		},
	)
}

// get executes a read transaction by a key and a bucket. Instead of
// returning the data, it uses lambda for the result transport to prevent
// cloning the byte slice.
func get(
	k StateKey,
	bucketID byte,
	use func(d []byte),
) (
	found bool,
	err error,
) {
	value := &db.Data{
		Write: decrypt,
		Use: func(d []byte) interface{} {
			use(d)
			return nil
		},
	}
	found, err = mgdDB.GetKeyValueFromBucket(buckets[bucketID],
		&db.Data{
			Data: k.Data(),
			Read: hash,
		},
		value)

	return found, err
}

func rm(k StateKey, bucketID byte) (err error) {
	return mgdDB.RmKeyValueFromBucket(buckets[bucketID],
		&db.Data{
			Data: k.Data(),
			Read: hash,
		})
}

func AddPSM(p *PSM) (err error) {
	return addData(p.Key.Data(), p.Data(), BucketPSM)
}

func getPSM(k StateKey) (m *PSM, err error) {
	_, err = get(k, BucketPSM, func(d []byte) {
		m = NewPSM(d)
	})
	return m, err
}

// GetPSM loads a machine by its key. A missing machine is an error.
func GetPSM(key StateKey) (m *PSM, err error) {
	defer err2.Handle(&err, "get psm")

	m, _ = getPSM(key)
	if m == nil {
		return nil, fmt.Errorf("machine %s not found", key)
	}
	return m, nil
}

func IsPSMReady(key StateKey) (yes bool, err error) {
	defer err2.Handle(&err, "is ready")

	m := try.To1(GetPSM(key))
	return m.IsReady(), nil
}

// Rep is a persistent protocol data record bound to a state machine run.
// Protocol packages define their own rep types and register a factory for
// them with Creator.
type Rep interface {
	Key() StateKey
	Data() []byte
	Type() byte
}

// RepCreator builds a rep from its serialized form.
type RepCreator func(d []byte) Rep

type repCreators map[byte]RepCreator

// Creator is the registry of rep factories by rep type.
var Creator = repCreators{}

func (c repCreators) Add(t byte, creator RepCreator) {
	c[t] = creator
}

// AddRep saves a rep to the bucket its type names.
func AddRep(p Rep) (err error) {
	return addData(p.Key().Data(), p.Data(), p.Type())
}

// GetRep loads a rep by its type and key. The factory registered for the
// type builds the returned value. A missing rep returns nil without error.
func GetRep(repType byte, k StateKey) (m Rep, err error) {
	defer err2.Handle(&err, "get rep")

	creator, ok := Creator[repType]
	assert.That(ok, "rep type %d is not registered", repType)

	_, err = get(k, repType, func(d []byte) {
		m = creator(d)
	})
	return m, err
}

// RmPSM removes the machine and the protocol rep bound to it.
func RmPSM(p *PSM) (err error) {
	glog.V(1).Infoln("--- rm PSM:", p.Key)
	switch p.Protocol {
	case ProtocolIssue:
		err = rm(p.Key, BucketIssueCred)
	case ProtocolProof:
		err = rm(p.Key, BucketPresentProof)
	}
	if err != nil {
		return err
	}
	return rm(p.Key, BucketPSM)
}

// allStale returns the machines that have reached their final state before
// the given moment.
func allStale(before int64) (ms []*PSM, err error) {
	defer err2.Handle(&err, "all stale")

	values := try.To1(mgdDB.GetAllValuesFromBucket(buckets[BucketPSM], decrypt))
	ms = make([]*PSM, 0, len(values))
	for _, d := range values {
		m := NewPSM(d)
		if m.IsReady() && m.Timestamp() < before {
			ms = append(ms, m)
		}
	}
	return ms, nil
}

// SweepStale removes finished machines and the reps bound to them when
// their last transition is older than the given moment. Machines still in
// flight are left alone. Returns the removal count.
func SweepStale(before int64) (count int, err error) {
	defer err2.Handle(&err, "sweep stale")

	for _, m := range try.To1(allStale(before)) {
		try.To(RmPSM(m))
		count++
	}
	return count, nil
}

// all of the following has same signature. They also panic on error

// hash makes the cryptographic hash of the map key value. This prevents us
// to store key value index (DID, nonce) to the DB aka sealed box as plain
// text.
func hash(key []byte) (k []byte) {
	if theCipher != nil {
		h := md5.Sum(key)
		return h[:]
	}
	return append(key[:0:0], key...)
}

// encrypt encrypts the actual data value. This is used when data is stored
// to the DB aka sealed box.
func encrypt(value []byte) (k []byte) {
	if theCipher != nil {
		return theCipher.TryEncrypt(value)
	}
	return append(value[:0:0], value...)
}

// decrypt decrypts the actual data value. This is used when data is
// retrieved from the DB aka sealed box.
func decrypt(value []byte) (k []byte) {
	if theCipher != nil {
		return theCipher.TryDecrypt(value)
	}
	return append(value[:0:0], value...)
}
