package lifecycle

import (
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
)

// The Degree example: the schema, the values the issuer signs, and the
// Job-Application proof request the verifier asks for. The demo command
// and the end to end test run on these.

// DegreeSchema returns the example schema artifact.
func DegreeSchema() *ssi.Schema {
	return &ssi.Schema{
		Name:    "Degree",
		Version: "1.0",
		Attrs: []string{
			"first_name", "last_name", "degree", "status",
			"ssn", "year", "average",
		},
	}
}

// DegreeValues returns the attribute values the issuer signs into the
// example credential.
func DegreeValues() map[string]string {
	return map[string]string{
		"first_name": "Alice",
		"last_name":  "Garcia",
		"degree":     "Bachelor of Science, Marketing",
		"status":     "graduated",
		"ssn":        "123-45-6789",
		"year":       "2015",
		"average":    "5",
	}
}

// SelfAttested returns the values the prover attests by itself for the
// request's unrestricted attributes. They carry no cryptographic weight.
func SelfAttested() map[string]string {
	return map[string]string{
		"first_name":   "Alice",
		"last_name":    "Garcia",
		"phone_number": "123-45-6789",
	}
}

// JobApplication builds the example proof request: the degree, status
// and ssn attributes plus the average predicate are bound to the given
// cred def, names and phone number stay self attested.
func JobApplication(credDefID string) *anoncreds.ProofRequest {
	restrictions := []anoncreds.Filter{{CredDefID: credDefID}}
	return &anoncreds.ProofRequest{
		Name:    "Job-Application",
		Version: "0.1",
		RequestedAttributes: map[string]anoncreds.AttrInfo{
			"attr1_referent": {Name: "first_name"},
			"attr2_referent": {Name: "last_name"},
			"attr3_referent": {Name: "degree", Restrictions: restrictions},
			"attr4_referent": {Name: "status", Restrictions: restrictions},
			"attr5_referent": {Name: "ssn", Restrictions: restrictions},
			"attr6_referent": {Name: "phone_number"},
		},
		RequestedPredicates: map[string]anoncreds.PredicateInfo{
			"predicate1_referent": {
				Name:         "average",
				PType:        ">=",
				PValue:       4,
				Restrictions: restrictions,
			},
		},
	}
}
