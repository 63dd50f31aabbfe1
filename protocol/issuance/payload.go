package issuance

import (
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/sec"
	"github.com/alloy-network/alloy-agent/agent/storage/api"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Message is the common frame of the issuing protocol messages. Data
// carries the anoncreds artifact of the step: the credential offer, the
// blinded credential request, or the signed credential. Nonce names the
// protocol run and SchemaName selects the schema bound state on both
// ends.
type Message struct {
	Nonce      string `json:"nonce"`
	SchemaName string `json:"schema_name"`
	Data       string `json:"data"`
}

// ledgerIDs picks the ledger identifiers out of an anoncreds artifact.
// Both the credential offer and the signed credential carry them.
type ledgerIDs struct {
	SchemaID  string `json:"schema_id"`
	CredDefID string `json:"cred_def_id"`
}

// openMessage decrypts an inbound envelope with the actor's own wallet
// and authenticates the sender: the envelope's sender key must belong to
// a stored connection, which tells who the peer is.
func openMessage(a *actor.Actor, p comm.Packet) (
	conn *api.Connection,
	msg *Message,
	err error,
) {
	defer err2.Handle(&err, "issuance open")

	env := try.To1(sec.Pipe{In: a.RootDid()}.UnpackEnvelope(p.Payload))
	conn = try.To1(a.ConnectionByVerKey(string(env.FromKey)))

	msg = &Message{}
	dto.FromJSON(env.Message, msg)
	if msg.Nonce == "" || msg.SchemaName == "" {
		return nil, nil, fmt.Errorf("malformed issuing message")
	}
	return conn, msg, nil
}
