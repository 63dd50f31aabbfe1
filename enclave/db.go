package enclave

import (
	"errors"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	bolt "go.etcd.io/bbolt"
)

var db *bolt.DB

// ErrNotExists is an error for key not exist in the enclave.
var ErrNotExists = errors.New("key not exists")

// ErrSealBoxAlreadyExists is an error for enclave sealed box already exists.
var ErrSealBoxAlreadyExists = errors.New("enclave sealed box exists")

func assertDB() {
	if db == nil {
		panic("don't forget init the seal box")
	}
}

func open(filename string) (err error) {
	if db != nil {
		return ErrSealBoxAlreadyExists
	}
	defer err2.Handle(&err)

	db = try.To1(bolt.Open(filename, 0600, nil))

	try.To(db.Update(func(tx *bolt.Tx) (err error) {
		defer err2.Handle(&err, "create buckets")

		try.To1(tx.CreateBucketIfNotExists([]byte(nameBucket)))
		try.To1(tx.CreateBucketIfNotExists([]byte(didBucket)))
		try.To1(tx.CreateBucketIfNotExists([]byte(masterSecretBucket)))
		return nil
	}))
	return err
}

// Close closes the sealed box of the enclave. It can be open again with
// InitSealedBox.
func Close() {
	defer err2.Catch(func(err error) {
		glog.Error(err)
	})
	assertDB()

	try.To(db.Close())
	db = nil
}

// Backup writes a copy of the sealed box to the backup file set at init.
func Backup() (err error) {
	defer err2.Handle(&err, "enclave backup")
	assertDB()

	try.To(db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(sealedBackupName, 0600)
	}))
	glog.V(1).Infoln("enclave backup to", sealedBackupName)
	return nil
}

func addKeyValueToBucket(bucket, keyValue, index string) (err error) {
	assertDB()

	defer err2.Handle(&err, "add key")

	try.To(db.Update(func(tx *bolt.Tx) (err error) {
		defer err2.Handle(&err)

		b := tx.Bucket([]byte(bucket))
		try.To(b.Put([]byte(index), []byte(keyValue)))
		return nil
	}))
	return nil
}

func getKeyValueFromBucket(bucket, index string) (keyValue string, err error) {
	assertDB()

	defer err2.Handle(&err)

	try.To(db.View(func(tx *bolt.Tx) (err error) {
		defer err2.Handle(&err)

		b := tx.Bucket([]byte(bucket))
		d := b.Get([]byte(index))
		if d == nil {
			return ErrNotExists
		}
		keyValue = string(d)
		return nil
	}))
	return keyValue, nil
}
