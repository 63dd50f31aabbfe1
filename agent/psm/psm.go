package psm

import (
	"errors"
	"fmt"
	"time"

	"github.com/findy-network/findy-wrapper-go/dto"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

// ErrSequence is returned when a protocol message arrives out of order: the
// machine is not in the phase the transition needs, the protocol run nonce
// is already taken, or no machine exists for the key at all.
var ErrSequence = errors.New("protocol sequence violation")

// Phase is the lifecycle position of a protocol state machine. Phases form
// two linear chains, one for credential issuing and one for proof
// presentation. A machine enters a chain at its first phase and every later
// transition must come from the phase directly before it. Both ends of a
// protocol walk the same chain as far as their own view reaches: an issuer
// stops at Issued, the receiving holder continues to Stored.
type Phase byte

const (
	None Phase = iota

	// credential issuing chain
	Offered
	Requested
	Issued
	Stored

	// proof presentation chain
	ProofRequested
	ProofCreated
	ProofVerified
)

func (p Phase) String() string {
	switch p {
	case Offered:
		return "Offered"
	case Requested:
		return "Requested"
	case Issued:
		return "Issued"
	case Stored:
		return "Stored"
	case ProofRequested:
		return "ProofRequested"
	case ProofCreated:
		return "ProofCreated"
	case ProofVerified:
		return "ProofVerified"
	case None:
		return "None"
	default:
		return "Unknown Phase"
	}
}

// prevPhase maps each phase to the phase that must precede it. Chain entry
// phases map to None.
var prevPhase = map[Phase]Phase{
	Offered:        None,
	Requested:      Offered,
	Issued:         Requested,
	Stored:         Issued,
	ProofRequested: None,
	ProofCreated:   ProofRequested,
	ProofVerified:  ProofCreated,
}

func (p Phase) protocol() Protocol {
	switch p {
	case Offered, Requested, Issued, Stored:
		return ProtocolIssue
	case ProofRequested, ProofCreated, ProofVerified:
		return ProtocolProof
	}
	return ProtocolNone
}

// Protocol tells which DID protocol a machine is running.
type Protocol byte

const (
	ProtocolNone Protocol = iota
	ProtocolIssue
	ProtocolProof
)

func (p Protocol) String() string {
	switch p {
	case ProtocolIssue:
		return "issue"
	case ProtocolProof:
		return "proof"
	default:
		return "none"
	}
}

// StateKey is the primary key of a protocol state machine: the owner's DID
// and the nonce of the protocol run.
type StateKey struct {
	DID   string
	Nonce string
}

func (key StateKey) Data() []byte {
	return []byte(key.DID + "|" + key.Nonce)
}

func (key StateKey) String() string {
	return key.DID + "|" + key.Nonce
}

// State is one state transition of the machine.
type State struct {
	Timestamp int64
	Phase     Phase
}

// PSM is a protocol state machine for a single credential issuing or proof
// presentation run. It works in event sourcing principle: every state
// transition is appended to its States field and nothing is overwritten.
type PSM struct {
	// Key is the primary key of the machine, pointed by our DID and the
	// protocol run nonce.
	Key StateKey

	// Protocol tells which phase chain this machine walks.
	Protocol Protocol

	// StartedByUs tells if we sent the first protocol message. It decides
	// which chain phase means ready for our end.
	StartedByUs bool

	// PeerDID is the pairwise DID of the other end of the protocol run.
	PeerDID string

	// SchemaID pins the machine to the schema the credential or proof is
	// about.
	SchemaID string

	// States has all of the state history of this machine in timestamp
	// order.
	States []State
}

func NewPSM(d []byte) *PSM {
	p := &PSM{}
	dto.FromGOB(d, p)
	return p
}

func (p *PSM) Data() []byte {
	return dto.ToGOB(p)
}

func (p *PSM) FirstState() *State {
	sCount := len(p.States)
	if sCount > 0 {
		return &p.States[0]
	}
	return nil
}

func (p *PSM) LastState() *State {
	sCount := len(p.States)
	if sCount > 0 {
		return &p.States[sCount-1]
	}
	return nil
}

// Phase returns the current phase of the machine i.e. the phase of its last
// state.
func (p *PSM) Phase() Phase {
	if state := p.LastState(); state != nil {
		return state.Phase
	}
	return None
}

func (p *PSM) Timestamp() int64 {
	if state := p.LastState(); state != nil {
		return state.Timestamp
	}
	return 0
}

// Accept tells if the machine can move to the next phase from where it is
// now. The next phase must belong to the machine's protocol and its
// prerequisite must be the current phase.
func (p *PSM) Accept(next Phase) bool {
	if next.protocol() != p.Protocol {
		return false
	}
	return prevPhase[next] == p.Phase()
}

// IsReady tells if the machine has walked its chain to the end from our
// point of view. The protocol initiator is done one phase before the
// receiving end: an issuer is ready when the credential is built and sent,
// a holder when it is stored; a verifier is ready when the proof is
// verified, a prover when the proof is built and sent.
func (p *PSM) IsReady() bool {
	switch p.Protocol {
	case ProtocolIssue:
		if p.StartedByUs {
			return p.Phase() == Issued
		}
		return p.Phase() == Stored
	case ProtocolProof:
		if p.StartedByUs {
			return p.Phase() == ProofVerified
		}
		return p.Phase() == ProofCreated
	}
	return false
}

// Start creates a new machine and persists its first state. The phase must
// be a chain entry phase. A machine with the same key must not exist yet: a
// reused nonce is a replayed protocol run and fails with ErrSequence.
func Start(p *PSM, phase Phase) (err error) {
	defer err2.Handle(&err, "psm start")

	assert.That(len(p.States) == 0, "start takes a fresh machine")

	if prevPhase[phase] != None || phase == None {
		return fmt.Errorf("%w: cannot start from %s", ErrSequence, phase)
	}
	if old, _ := getPSM(p.Key); old != nil {
		return fmt.Errorf("%w: nonce %s already used", ErrSequence, p.Key.Nonce)
	}
	p.Protocol = phase.protocol()
	p.States = append(p.States, State{
		Timestamp: time.Now().UnixNano(),
		Phase:     phase,
	})
	try.To(AddPSM(p))
	return nil
}

// Advance moves an existing machine to the next phase and persists the
// transition. The machine must exist and accept the phase, otherwise the
// protocol run is out of order and Advance fails with ErrSequence.
func Advance(key StateKey, next Phase) (m *PSM, err error) {
	defer err2.Handle(&err, "psm advance")

	m, _ = getPSM(key)
	if m == nil {
		return nil, fmt.Errorf("%w: no machine for nonce %s", ErrSequence, key.Nonce)
	}
	if !m.Accept(next) {
		return nil, fmt.Errorf("%w: %s does not follow %s",
			ErrSequence, next, m.Phase())
	}
	m.States = append(m.States, State{
		Timestamp: time.Now().UnixNano(),
		Phase:     next,
	})
	try.To(AddPSM(m))
	return m, nil
}
