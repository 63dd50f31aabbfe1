package proof

import (
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Both ends of the proof protocol resolve the schemas and cred defs the
// proof depends on from the ledger. The id sets deduplicate the lookups:
// within one proof every artifact is fetched once however many referents
// point to it.

func schemasJSON(DID string, schemaIDs map[string]struct{}) (sJSON string, err error) {
	defer err2.Handle(&err, "proof schemas")

	schemas := make(map[string]map[string]interface{}, len(schemaIDs))
	for schemaID := range schemaIDs {
		sch := ssi.Schema{ID: schemaID}
		try.To(sch.FromLedger(DID))
		schemaObject := map[string]interface{}{}
		dto.FromJSONStr(sch.LazySchema(), &schemaObject)
		schemas[schemaID] = schemaObject
	}
	return dto.ToJSON(schemas), nil
}

func credDefsJSON(DID string, credDefIDs map[string]struct{}) (cJSON string, err error) {
	defer err2.Handle(&err, "proof cred defs")

	credDefs := make(map[string]map[string]interface{}, len(credDefIDs))
	for cdID := range credDefIDs {
		credDef := try.To1(ssi.CredDefFromLedger(DID, cdID))
		credDefObject := map[string]interface{}{}
		dto.FromJSONStr(credDef, &credDefObject)
		credDefs[cdID] = credDefObject
	}
	return dto.ToJSON(credDefs), nil
}

func schemaIDSet(identifiers []anoncreds.IdentifiersObj) map[string]struct{} {
	IDs := make(map[string]struct{}, len(identifiers))
	for _, v := range identifiers {
		IDs[v.SchemaID] = struct{}{}
	}
	return IDs
}

func credDefIDSet(identifiers []anoncreds.IdentifiersObj) map[string]struct{} {
	IDs := make(map[string]struct{}, len(identifiers))
	for _, v := range identifiers {
		IDs[v.CredDefID] = struct{}{}
	}
	return IDs
}
