package wrapper

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/findy-network/findy-common-go/crypto"
	"github.com/findy-network/findy-common-go/crypto/db"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const level7 = 7

type Store interface {
	storage.Store
	GetAll(transform db.Filter) ([][]byte, error)
}

type Config struct {
	Key       string
	FileName  string
	FilePath  string
	BucketIDs []string
}

// StorageProvider is an encrypted bolt DB exposed through the aries storage
// SPI. Keys are written as keyed hashes and values as AEAD cipher text, so
// the file on disk leaks neither peer names nor peer data.
type StorageProvider struct {
	l sync.RWMutex

	conf    Config
	db      db.Handle
	buckets map[string]bucket
	cfgs    map[string]storage.StoreConfiguration
	cipher  *crypto.Cipher
	hashKey []byte
}

func New(config Config) *StorageProvider {
	s := &StorageProvider{
		l:       sync.RWMutex{},
		conf:    config,
		db:      nil,
		buckets: make(map[string]bucket),
		cfgs:    make(map[string]storage.StoreConfiguration),
	}

	var bucketKey byte
	for _, name := range s.conf.BucketIDs {
		s.buckets[name] = newBucket(s, bucketKey)
		bucketKey++
	}

	return s
}

func (s *StorageProvider) Init() (err error) {
	defer err2.Handle(&err, "storage open")

	s.l.Lock()
	defer s.l.Unlock()

	if s.db != nil {
		glog.Warningf("skipping storage provider initialization for %s, already open", s.conf.FileName)
		return nil
	}

	k := try.To1(hex.DecodeString(s.conf.Key))

	path := "."
	if s.conf.FilePath != "" {
		path = s.conf.FilePath
	}

	filename := path + "/" + s.conf.FileName + ".bolt"

	if len(s.conf.BucketIDs) == 0 {
		return fmt.Errorf("no buckets specified")
	}

	mgdBuckets := make([][]byte, 0)

	var bucketKey byte
	for range s.conf.BucketIDs {
		mgdBuckets = append(mgdBuckets, []byte{bucketKey})
		bucketKey++
	}

	// this will not open the file handle to db, just initializes it
	s.db = db.New(db.Cfg{
		Filename:   filename,
		Buckets:    mgdBuckets,
		BackupName: filename + "_backup",
	})

	s.cipher = crypto.NewCipher(k)
	s.hashKey = k

	return nil
}

func (s *StorageProvider) ID() string {
	return s.conf.FileName
}

func (s *StorageProvider) Key() string {
	return s.conf.Key
}

func (s *StorageProvider) OpenStore(name string) (storage.Store, error) {
	glog.V(level7).Infoln("StorageProvider::OpenStore", s.ID(), name)

	if b, ok := s.buckets[name]; ok {
		return &b, nil
	}
	return nil, fmt.Errorf("store %s not found", name)
}

func (s *StorageProvider) Close() (err error) {
	defer err2.Handle(&err, "storage close")

	s.l.RLock()
	defer s.l.RUnlock()

	if s.db == nil {
		glog.Warningf("skipping storage provider close for %s, already closed", s.conf.FileName)
		return nil
	}

	try.To(s.db.Close())
	s.db = nil
	return
}

func (s *StorageProvider) addData(bucketID byte, key, value []byte) (err error) {
	s.l.RLock()
	defer s.l.RUnlock()

	err = s.db.AddKeyValueToBucket([]byte{bucketID},
		&db.Data{
			Data: value,
			Read: s.encrypt,
		},
		&db.Data{
			Data: key,
			Read: s.hash,
		},
	)
	return err
}

// hash is a keyed hash so that storage keys cannot be brute forced from the
// bolt file alone.
func (s *StorageProvider) hash(key []byte) (k []byte) {
	if s.cipher != nil {
		mac := hmac.New(sha256.New, s.hashKey)
		_, _ = mac.Write(key)
		return mac.Sum(nil)
	}
	return append(key[:0:0], key...)
}

func (s *StorageProvider) encrypt(value []byte) (k []byte) {
	if s.cipher != nil {
		return s.cipher.TryEncrypt(value)
	}
	return append(value[:0:0], value...)
}

func (s *StorageProvider) decrypt(value []byte) (k []byte) {
	if s.cipher != nil {
		return s.cipher.TryDecrypt(value)
	}
	return append(value[:0:0], value...)
}

func (s *StorageProvider) getData(
	bucketID byte,
	key []byte,
) (
	value []byte,
	err error,
) {
	s.l.RLock()
	defer s.l.RUnlock()

	data := &db.Data{
		Write: s.decrypt,
		Use: func(d []byte) interface{} {
			value = d
			return nil
		},
	}
	_, err = s.db.GetKeyValueFromBucket([]byte{bucketID},
		&db.Data{
			Data: key,
			Read: s.hash,
		},
		data)

	return value, err
}

func (s *StorageProvider) deleteData(bucketID byte, key string) (err error) {
	s.l.RLock()
	defer s.l.RUnlock()

	err = s.db.RmKeyValueFromBucket([]byte{bucketID}, &db.Data{
		Data: []byte(key),
		Read: s.hash,
	})
	return
}

func (s *StorageProvider) getAll(bucketID byte, transform db.Filter) (res [][]byte, err error) {
	s.l.RLock()
	defer s.l.RUnlock()

	return s.db.GetAllValuesFromBucket([]byte{bucketID}, s.decrypt, transform)
}

func (s *StorageProvider) SetStoreConfig(name string, config storage.StoreConfiguration) error {
	glog.V(level7).Infoln("StorageProvider::SetStoreConfig", name)

	s.l.Lock()
	defer s.l.Unlock()

	if _, ok := s.buckets[name]; !ok {
		return fmt.Errorf("store %s not found", name)
	}
	s.cfgs[name] = config
	return nil
}

func (s *StorageProvider) GetStoreConfig(name string) (storage.StoreConfiguration, error) {
	glog.V(level7).Infoln("StorageProvider::GetStoreConfig", name)

	s.l.RLock()
	defer s.l.RUnlock()

	if _, ok := s.buckets[name]; !ok {
		return storage.StoreConfiguration{}, fmt.Errorf("store %s not found", name)
	}
	return s.cfgs[name], nil
}

func (s *StorageProvider) GetOpenStores() []storage.Store {
	glog.V(level7).Infoln("StorageProvider::GetOpenStores")

	s.l.RLock()
	defer s.l.RUnlock()

	stores := make([]storage.Store, 0, len(s.buckets))
	for name := range s.buckets {
		b := s.buckets[name]
		stores = append(stores, &b)
	}
	return stores
}
