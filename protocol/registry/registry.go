/*
Package registry implements the issuer side schema and credential
definition registration. Both operations are idempotent towards the
ledger: an artifact that is already registered is treated as a met
precondition, not an error, so a replayed setup run converges to the
same identifiers it produced the first time.
*/
package registry

import (
	"fmt"
	"strings"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/agent/storage/api"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/findy-network/findy-wrapper-go/ledger"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

// CredDefTag tags every credential definition this agency publishes.
// Uniqueness comes from the (issuer DID, schema, tag) triple, so a fixed
// tag still gives one definition per issuer and schema.
const CredDefTag = "TAG1"

const sigTypeCL = "CL"

// CreateSchema builds the schema artifact, writes it to the ledger and
// binds the per schema state of the issuer under the returned canonical
// name. Registering the same schema twice returns the same name and id.
func CreateSchema(issuer *actor.Actor, s *ssi.Schema) (name string, err error) {
	defer err2.Handle(&err, "create schema")

	assert.NotNil(issuer.Root, "issuer needs its ledger identity first")

	DID := issuer.RootDid().Did()
	try.To(s.Create(DID))

	name = ssi.CanonName(s.Name)
	glog.V(1).Infoln(issuer.Name(), "registering schema", name)

	if err := s.ToLedger(issuer.Wallet(), DID); err != nil {
		if !alreadyExists(err) {
			return "", err
		}
		glog.V(1).Infoln("schema", name, "already on ledger")
	}

	st := issuer.SchemaState(name)
	st.SchemaID = s.ValidID()
	return name, nil
}

// CreateCredDef publishes a credential definition binding the registered
// schema to the issuer's signing key. The schema is read back from the
// ledger first; a freshly written schema may not be immediately readable,
// which the read tolerates with bounded backoff. A definition this issuer
// already published for the schema is reused as is.
func CreateCredDef(
	issuer *actor.Actor,
	schemaName string,
	revocable bool,
) (credDefID string, err error) {
	defer err2.Handle(&err, "create cred def")

	st := issuer.SchemaState(schemaName)
	if st.SchemaID == "" {
		return "", fmt.Errorf("schema %s is not registered", schemaName)
	}

	store := issuer.Storage().CredDefStorage()
	if old, _ := store.GetCredDef(st.SchemaID); old != nil {
		glog.V(1).Infoln(issuer.Name(), "reusing cred def", old.CredDefID)
		st.CredDefID = old.CredDefID
		return old.CredDefID, nil
	}

	DID := issuer.RootDid().Did()

	// read after write: the schema must come from the ledger, not from
	// the local artifact, so the definition binds to the sequence number
	// the ledger assigned
	sch := ssi.Schema{ID: st.SchemaID}
	try.To(sch.FromLedger(DID))

	cfg := fmt.Sprintf(`{"support_revocation":%v}`, revocable)
	r := <-anoncreds.IssuerCreateAndStoreCredentialDef(
		issuer.Wallet(), DID, sch.LazySchema(), CredDefTag, sigTypeCL, cfg)
	try.To(r.Err())
	credDefID = r.Str1()

	if err := ledger.WriteCredDef(issuer.Pool(), issuer.Wallet(), DID, r.Str2()); err != nil {
		if !alreadyExists(err) {
			return "", fmt.Errorf("%w: %v", ssi.ErrLedgerUnavailable, err)
		}
		glog.V(1).Infoln("cred def", credDefID, "already on ledger")
	}

	st.CredDefID = credDefID
	try.To(store.SaveCredDef(api.CredDefRecord{
		SchemaID:  st.SchemaID,
		CredDefID: credDefID,
		Tag:       CredDefTag,
	}))

	glog.V(1).Infoln(issuer.Name(), "published cred def", credDefID)
	return credDefID, nil
}

// alreadyExists tells if the collaborator error means the artifact is
// registered already. Those are met preconditions and never fatal.
func alreadyExists(err error) bool {
	return err != nil &&
		strings.Contains(strings.ToLower(err.Error()), "already exist")
}
