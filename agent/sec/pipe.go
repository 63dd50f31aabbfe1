// Package sec implements the secure pipe between two pairwise DIDs. All
// agent to agent communication after onboarding goes thru a Pipe. For its
// internal structure we must define the direction of the pipe: In is our
// DID whose wallet holds the private key, Out is the peer's DID from which
// only the public verkey is needed.
package sec

import (
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/service"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	indycrypto "github.com/findy-network/findy-wrapper-go/crypto"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/pkg/didcomm/transport"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

var mediaProfile = transport.MediaTypeProfileDIDCommAIP1

// ErrWrongSignature is returned by Verify when the signature doesn't match
// the message and the pipe's Out verkey.
var ErrWrongSignature = fmt.Errorf("signature validation failed")

// Pipe is a secure way to transport data between a DID connection. The
// direction matters: Pack crypts from In to Out, Unpack opens with In's
// wallet, Sign uses In's key and Verify uses Out's.
type Pipe struct {
	In  *ssi.DID
	Out *ssi.DID
}

// NewPipeByVerkey creates a new secure pipe by our DID and the other end's
// public key. Used before their DID is known i.e. during onboarding.
func NewPipeByVerkey(did *ssi.DID, verkey string) Pipe {
	return Pipe{
		In:  did,
		Out: ssi.NewDid("", verkey),
	}
}

// Pack authcrypts the message for the receiving end of the pipe and returns
// the verkey it was crypted for.
func (p Pipe) Pack(src []byte) (dst []byte, vk string, err error) {
	defer err2.Handle(&err, "sec pipe pack")

	wallet := p.wallet()
	toVerKey := p.Out.VerKey()

	if glog.V(5) {
		glog.Infof("==> Pack: w(%d) -> %s", wallet, toVerKey)
	}

	r := <-indycrypto.Pack(wallet, p.In.VerKey(), src, toVerKey)
	try.To(r.Err())

	return r.Bytes(), toVerKey, nil
}

// Unpack opens a crypted message with our wallet and returns the clear text
// with the sender's verkey. The caller authenticates the peer by comparing
// the verkey to the one stored for the connection.
func (p Pipe) Unpack(src []byte) (dst []byte, vk string, err error) {
	defer err2.Handle(&err, "sec pipe unpack")

	env := try.To1(p.UnpackEnvelope(src))
	return env.Message, string(env.FromKey), nil
}

// UnpackEnvelope opens a crypted message and returns the full transport
// envelope: the clear text, the sender verkey, and the recipient verkey the
// message was crypted for. The last one tells which of our connections the
// message belongs to.
func (p Pipe) UnpackEnvelope(src []byte) (e *transport.Envelope, err error) {
	defer err2.Handle(&err, "sec pipe unpack env")

	wallet := p.wallet()

	if glog.V(5) {
		glog.Infof("<== Unpack: w(%d)", wallet)
	}

	r := <-indycrypto.UnpackMessage(wallet, src)
	try.To(r.Err())

	unpacked := indycrypto.NewUnpacked(r.Bytes())

	return &transport.Envelope{
		MediaTypeProfile: mediaProfile,
		Message:          []byte(unpacked.Message),
		FromKey:          []byte(unpacked.SenderVerkey),
		ToKey:            []byte(unpacked.RecipientVerkey),
	}, nil
}

// Sign signs the message with our key and returns the verification key.
func (p Pipe) Sign(src []byte) (dst []byte, vk string, err error) {
	defer err2.Handle(&err, "sec pipe sign")

	vk = p.In.VerKey()
	r := <-indycrypto.SignMsg(p.wallet(), vk, src)
	try.To(r.Err())

	return r.Bytes(), vk, nil
}

// Verify verifies the signature with the other end's verkey. It works on a
// receive only pipe as well, one where In is nil.
func (p Pipe) Verify(msg, signature []byte) (yes bool, vk string, err error) {
	defer err2.Handle(&err, "sec pipe verify")

	vk = p.Out.VerKey()
	r := <-indycrypto.VerifySignature(vk, msg, signature)
	try.To(r.Err())

	if !r.Yes() {
		return false, vk, ErrWrongSignature
	}
	return true, vk, nil
}

// IsNull returns true if pipe is null.
func (p Pipe) IsNull() bool {
	return p.In == nil
}

// EA returns the service endpoint of the other end of the pipe.
func (p Pipe) EA() (ae service.Addr, err error) {
	return p.Out.AEndp()
}

func (p Pipe) wallet() int {
	w := p.In.Wallet()
	if w == 0 {
		panic("pipe needs an opened wallet")
	}
	return w
}
