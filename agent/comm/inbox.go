package comm

import (
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/endp"
	"github.com/golang/glog"
)

// Message kinds of the agent to agent protocols. The kind selects both the
// URL endpoint and the inbox channel the payload is delivered to.
const (
	KindOffer    = "offer"    // credential offer, issuer -> prover
	KindCredReq  = "credreq"  // credential request, prover -> issuer
	KindCred     = "cred"     // signed credential, issuer -> prover
	KindProofReq = "proofreq" // proof request, verifier -> prover
	KindProof    = "proof"    // proof response, prover -> verifier
)

// Packet is one transport delivery: the address it arrived to and the
// payload bytes. For encrypted kinds the payload is the authcrypt envelope
// and the receiving protocol step opens it with the actor's own wallet,
// transport never does.
type Packet struct {
	Addr    *endp.Addr
	Payload []byte
}

// inboxDepth is how many deliveries a kind channel buffers before Deliver
// starts failing. One negotiation per peer keeps these nearly empty.
const inboxDepth = 8

// Inbox is the set of typed per kind channels of one actor. Each protocol
// message kind has its own channel so a step waiting for a credential
// offer never consumes a proof request.
type Inbox struct {
	offers    chan Packet
	credReqs  chan Packet
	creds     chan Packet
	proofReqs chan Packet
	proofs    chan Packet
}

func NewInbox() *Inbox {
	return &Inbox{
		offers:    make(chan Packet, inboxDepth),
		credReqs:  make(chan Packet, inboxDepth),
		creds:     make(chan Packet, inboxDepth),
		proofReqs: make(chan Packet, inboxDepth),
		proofs:    make(chan Packet, inboxDepth),
	}
}

// Deliver routes the packet to the kind's channel. It never blocks: a full
// channel is an error and the transport reports it to the sender.
func (i *Inbox) Deliver(kind string, p Packet) (err error) {
	ch, err := i.channel(kind)
	if err != nil {
		return err
	}

	select {
	case ch <- p:
		if glog.V(3) {
			glog.Infof("===== Inbox %s <- %d bytes =====", kind, len(p.Payload))
		}
		return nil
	default:
		return fmt.Errorf("inbox full for kind: %s", kind)
	}
}

func (i *Inbox) channel(kind string) (chan Packet, error) {
	switch kind {
	case KindOffer:
		return i.offers, nil
	case KindCredReq:
		return i.credReqs, nil
	case KindCred:
		return i.creds, nil
	case KindProofReq:
		return i.proofReqs, nil
	case KindProof:
		return i.proofs, nil
	}
	return nil, fmt.Errorf("unknown kind: %s", kind)
}

// The receive sides below block until a packet arrives. Timeouts belong to
// the transport boundary, not here.

func (i *Inbox) Offers() <-chan Packet {
	return i.offers
}

func (i *Inbox) CredReqs() <-chan Packet {
	return i.credReqs
}

func (i *Inbox) Creds() <-chan Packet {
	return i.creds
}

func (i *Inbox) ProofReqs() <-chan Packet {
	return i.proofReqs
}

func (i *Inbox) Proofs() <-chan Packet {
	return i.proofs
}
