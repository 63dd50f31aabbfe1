package comm

// Receiver is the transport side of an actor: what the agency server needs
// to route incoming payloads to it. Implemented by actor.Actor, mocked in
// the server tests.
type Receiver interface {
	// Name returns the registered name of the actor, the actor part of
	// its addresses.
	Name() string

	// Deliver routes an incoming envelope to the actor's typed inbox.
	Deliver(kind string, p Packet) error

	// Handshake processes a plaintext connection request and returns the
	// authcrypted connection response. Onboarding is the only synchronous
	// exchange in the transport.
	Handshake(request []byte) (response []byte, err error)
}
