package endp

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/alloy-network/alloy-agent/agent/service"
)

/*
Addr is the transport address of an agent. It handles the connections both
for server and client: the server side parses incoming request paths into
it, the client side builds full URLs from it. The address grammar is

	{base}/{service}/{actor}/{kind}

where actor is the receiving actor's registered name or its DID, and kind
tells which inbox the payload belongs to. The kinds handshake and ping are
served in plaintext, everything else carries an authcrypted envelope.
*/
type Addr struct {
	Service  string // service name, the URL root of the agency
	Rcvr     string // receiving actor, registered name or DID
	Kind     string // message kind, empty for a peer's base address
	BasePath string // scheme and host, known on the client side only
	VerKey   string // verkey for sending crypted payloads to this address
}

const (
	// HandshakeKind is the plaintext onboarding endpoint of an actor.
	HandshakeKind = "handshake"

	// PingKind is the plaintext liveness endpoint of an actor.
	PingKind = "ping"
)

var didExp *regexp.Regexp

func init() {
	// a base58 indy DID is 21 or 22 chars, no 0, O, I or l
	didExp = regexp.MustCompile("^[1-9A-HJ-NP-Za-km-z]{21,22}$")
}

// NewServerAddr creates and fills a new address from a string usually got
// from service calls like HTTP POST request. For that reason it cannot fill
// the base address field.
func NewServerAddr(s string) (ea *Addr) {
	ea = new(Addr)
	parts := strings.Split(s, "/")
	for i, part := range parts {
		switch i {
		case 1:
			ea.Service = part
		case 2:
			ea.Rcvr = part
		case 3:
			ea.Kind = part
		}
	}
	return
}

// NewClientAddr creates and fills a new address from a string which holds
// the full URL, including the base address. This can and should be used for
// cases where the whole endpoint address is given.
func NewClientAddr(s string) (ea *Addr) {
	ea = new(Addr)
	u, _ := url.Parse(s)
	ea.BasePath = u.Scheme + "://" + u.Host
	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		switch i {
		case 1:
			ea.Service = part
		case 2:
			ea.Rcvr = part
		case 3:
			ea.Kind = part
		}
	}
	return
}

func NewClientAddrWithKey(fullURL, verkey string) *Addr {
	addr := NewClientAddr(fullURL)
	addr.VerKey = verkey
	return addr
}

func NewAddrFromPublic(ae service.Addr) *Addr {
	return NewClientAddrWithKey(ae.Endp, ae.Key)
}

func (e *Addr) Valid() bool {
	return e.Service != "" && e.Rcvr != ""
}

func IsDID(DID string) bool {
	return didExp.MatchString(DID)
}

// ReceiverDID returns the receiving actor part of the address. The caller
// knows from the context if it is a name or a DID.
func (e *Addr) ReceiverDID() string {
	return e.Rcvr
}

// WithKind returns a copy of the address pointing to the given kind
// endpoint of the same actor. Used when a peer's base address is stored and
// a protocol step needs one of its inboxes.
func (e *Addr) WithKind(kind string) *Addr {
	next := *e
	next.Kind = kind
	return &next
}

func (e *Addr) Address() string {
	addr := fmt.Sprintf("%s/%s/%s", e.BasePath, e.Service, e.Rcvr)
	if e.Kind != "" {
		addr += "/" + e.Kind
	}
	return addr
}

// IsEncrypted tells if the payloads to this address are authcrypted
// envelopes. Only the handshake and ping kinds travel in plaintext.
func (e *Addr) IsEncrypted() bool {
	return !isPlainKind(e.Kind)
}

func isPlainKind(kind string) bool {
	return kind == HandshakeKind || kind == PingKind
}

func (e *Addr) String() string {
	return e.Address()
}

// TestAddress returns the address without the base path, the form the
// server side routing sees.
func (e *Addr) TestAddress() string {
	addr := fmt.Sprintf("/%s/%s", e.Service, e.Rcvr)
	if e.Kind != "" {
		addr += "/" + e.Kind
	}
	return addr
}

// AE returns service.Addr which includes URL + VerKey.
func (e *Addr) AE() service.Addr {
	return service.Addr{Endp: e.Address(), Key: e.VerKey}
}
