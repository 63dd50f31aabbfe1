package proof

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

// Message is the frame of the proof protocol messages. Data carries the
// proof request JSON on the way out and the proof JSON on the way back.
// Nonce is the proof request's nonce and names the protocol run on both
// ends.
type Message struct {
	Nonce string `json:"nonce"`
	Data  string `json:"data"`
}

// RevealedAttr is one attribute the proof reveals: the raw value and its
// integer encoding, cryptographically bound to a credential.
type RevealedAttr struct {
	SubProofIndex int    `json:"sub_proof_index"`
	Raw           string `json:"raw"`
	Encoded       string `json:"encoded"`
}

type subProofRef struct {
	SubProofIndex int `json:"sub_proof_index"`
}

// requestedProof is the wire view of the proof's requested_proof block,
// the part that partitions the request's referents into categories.
type requestedProof struct {
	RevealedAttrs     map[string]RevealedAttr `json:"revealed_attrs"`
	SelfAttestedAttrs map[string]string       `json:"self_attested_attrs"`
	UnrevealedAttrs   map[string]subProofRef  `json:"unrevealed_attrs"`
	Predicates        map[string]subProofRef  `json:"predicates"`
}

type proofBody struct {
	RequestedProof requestedProof `json:"requested_proof"`
}

// openMessage decrypts an inbound envelope with the actor's own wallet
// and authenticates the sender against the stored connections.
func openMessage(a *actor.Actor, p comm.Packet) (
	conn *api.Connection,
	msg *Message,
	err error,
) {
	defer err2.Handle(&err, "proof open")

	env := try.To1(sec.Pipe{In: a.RootDid()}.UnpackEnvelope(p.Payload))
	conn = try.To1(a.ConnectionByVerKey(string(env.FromKey)))

	msg = &Message{}
	dto.FromJSON(env.Message, msg)
	if msg.Nonce == "" || msg.Data == "" {
		return nil, nil, fmt.Errorf("malformed proof message")
	}
	return conn, msg, nil
}
