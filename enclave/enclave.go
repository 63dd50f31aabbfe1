/*
Package enclave is a server-side secure enclave. It offers a sealed storage
for indy wallet keys and master secrets on the agency server. Map keys are
stored as salted hashes and values as AEAD cipher text, so the sealed box
file leaks nothing about the agents it serves. The box cipher key comes
from the deployment configuration; without it the box falls back to plain
storage which is meant for development and tests only.
*/
package enclave

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"

	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/findy-network/findy-wrapper-go/wallet"
	"github.com/golang/glog"
	"github.com/google/tink/go/aead/subtle"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const nameBucket = "name_bucket"
const didBucket = "did_bucket"
const masterSecretBucket = "master_secret_bucket"

const backupPostfix = "_backup"

var (
	sealedBoxFilename string
	sealedBackupName  string

	boxCipher *subtle.AESGCM
	boxSalt   []byte
)

// InitSealedBox initializes the enclave's sealed box. This must be called
// once during the app life cycle. The key is the hex coded 32 byte box
// cipher key, empty key opens the box without encryption.
func InitSealedBox(filename, backupName, key string) (err error) {
	defer err2.Handle(&err, "init sealed box")

	glog.V(1).Info("init enclave ", filename)

	if key != "" {
		k := try.To1(hex.DecodeString(key))
		boxCipher = try.To1(subtle.NewAESGCM(k))
		salt := sha256.Sum256(k)
		boxSalt = salt[:]
	} else {
		glog.Warning("opening sealed box without a cipher key")
		boxCipher = nil
		boxSalt = nil
	}

	sealedBoxFilename = filename
	sealedBackupName = backupName
	if sealedBackupName == "" {
		sealedBackupName = filename + backupPostfix
	}
	return open(filename)
}

// WipeSealedBox closes and destroys the enclave permanently. This version
// only removes the sealed box file. In the future we might add sector
// wiping functionality.
func WipeSealedBox() {
	if db != nil {
		Close()
	}

	err := os.RemoveAll(sealedBoxFilename)
	if err != nil {
		glog.Error(err.Error())
	}
}

// NewWalletKey creates and stores a new indy wallet key to the enclave.
// The name is the agent name the key belongs to.
func NewWalletKey(name string) (key string, err error) {
	defer err2.Handle(&err, "new wallet key")

	key, _ = decrypt(getKeyValueFromBucket(nameBucket, hash(name)))
	if key != "" {
		return "", errors.New("key already exists")
	}

	key = try.To1(generateKey())
	try.To(addKeyValueToBucket(nameBucket, encrypt(key), hash(name)))

	return key, nil
}

// NewWalletMasterSecret creates and stores a new master secret for the DID.
// A master secret is created once per holder and reused for every
// credential it receives.
func NewWalletMasterSecret(did string) (sec string, err error) {
	defer err2.Handle(&err, "new master secret")

	sec, _ = decrypt(getKeyValueFromBucket(masterSecretBucket, hash(did)))
	if sec != "" {
		return "", errors.New("master secret already exists")
	}

	sec = utils.UUID()
	try.To(addKeyValueToBucket(masterSecretBucket, encrypt(sec), hash(did)))

	return sec, nil
}

// WalletKeyNotExists returns true if a wallet key is not in the enclave
// associated by a name.
func WalletKeyNotExists(name string) bool {
	k, err := WalletKeyByName(name)
	return errors.Is(err, ErrNotExists) && k == ""
}

// WalletKeyByName retrieves a wallet key from the sealed box by the agent
// name associated to it.
func WalletKeyByName(name string) (key string, err error) {
	return decrypt(getKeyValueFromBucket(nameBucket, hash(name)))
}

// WalletKeyByDID retrieves a wallet key by a DID.
func WalletKeyByDID(DID string) (key string, err error) {
	return decrypt(getKeyValueFromBucket(didBucket, hash(DID)))
}

// WalletMasterSecretByDID retrieves a wallet master secret key by a DID.
func WalletMasterSecretByDID(DID string) (key string, err error) {
	return decrypt(getKeyValueFromBucket(masterSecretBucket, hash(DID)))
}

// SetKeysDID stores a wallet key by its DID. We can retrieve a wallet key
// by its DID with WalletKeyByDID.
func SetKeysDID(key, DID string) (err error) {
	return addKeyValueToBucket(didBucket, encrypt(key), hash(DID))
}

func generateKey() (key string, err error) {
	defer err2.Handle(&err)

	r := <-wallet.GenerateKey("")
	try.To(r.Err())
	key = r.Str1()
	return key, nil
}

// hash makes the salted hash of the map key value. This prevents us from
// storing the key value index (name, DID) to the sealed box as plain text.
func hash(mapKeyValue string) (k string) {
	if boxSalt == nil {
		return mapKeyValue
	}
	h := sha256.New()
	_, _ = h.Write(boxSalt)
	_, _ = h.Write([]byte(mapKeyValue))
	return hex.EncodeToString(h.Sum(nil))
}

// encrypt encrypts the actual key value. This is used when data is stored
// to the sealed box.
func encrypt(keyValue string) (k string) {
	if boxCipher == nil {
		return keyValue
	}
	ct := try.To1(boxCipher.Encrypt([]byte(keyValue), nil))
	return string(ct)
}

// decrypt decrypts the actual key value. This is used when data is
// retrieved from the sealed box.
func decrypt(keyValue string, e error) (k string, err error) {
	if e != nil || boxCipher == nil {
		return keyValue, e
	}
	pt, err := boxCipher.Decrypt([]byte(keyValue), nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
