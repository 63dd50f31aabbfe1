package actor

// SchemaBoundState is everything an actor accumulates about one schema
// while credentials for it move through the pipeline. There is one record
// per canonical schema name. The identifier fields are written once when
// the schema and cred def become known and are immutable after that; the
// negotiation fields carry the latest run's artifacts, whose authoritative
// per-run copies live in the protocol journal.
type SchemaBoundState struct {
	SchemaID  string
	CredDefID string

	// CredDef caches the ledger's cred def JSON so one negotiation fetches
	// it once.
	CredDef string

	CredOffer       string
	CredRequest     string
	CredRequestMeta string

	// Values holds the anoncreds values JSON. On an issuer these are the
	// authoritative attribute values the credential is signed with; on a
	// prover they are advisory only.
	Values string
}

// SchemaState returns the actor's record for the schema name, creating an
// empty one on first use. Mutate the record only inside the run lock of a
// (peer, schema) negotiation, see LockRun.
func (a *Actor) SchemaState(name string) *SchemaBoundState {
	a.schemaLock.Lock()
	defer a.schemaLock.Unlock()

	s, ok := a.schemas[name]
	if !ok {
		s = &SchemaBoundState{}
		a.schemas[name] = s
	}
	return s
}
