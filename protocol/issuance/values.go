package issuance

import (
	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
)

// CodedValues builds the anoncreds values JSON a credential is signed
// with: every raw attribute value gets its integer encoding beside it.
// The issuer binds these to a schema with actor.SchemaBoundState.Values
// before it offers the credential.
func CodedValues(attrs map[string]string) string {
	values := make(map[string]anoncreds.CredDefAttr, len(attrs))
	for name, raw := range attrs {
		a := anoncreds.CredDefAttr{}
		a.SetRawAries(raw)
		values[name] = a
	}
	return dto.ToJSON(values)
}
