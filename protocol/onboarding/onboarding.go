/*
Package onboarding implements the pairwise DID exchange which establishes
an authenticated crypted channel between two actors. One end, the anchor,
already has a ledger identity; the other end, the onboardee, may be brand
new. After a successful run both ends hold a connection record with the
peer's pairwise DID, verkey and transport endpoint, and every later
protocol between them runs thru a sec.Pipe built from that record.

The handshake is the only synchronous exchange of the transport: the
anchor POSTs a plaintext Request to the onboardee's handshake endpoint
and the authcrypted Response comes back in the same HTTP round trip.
*/
package onboarding

import (
	"errors"
	"fmt"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/comm"
	"github.com/alloy-network/alloy-agent/agent/endp"
	"github.com/alloy-network/alloy-agent/agent/sec"
	"github.com/alloy-network/alloy-agent/agent/storage/api"
	"github.com/alloy-network/alloy-agent/agent/utils"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
	"github.com/mr-tron/base58"
)

// ErrOnboarding is the handshake failure sentinel. Decryption failures,
// sender keys that don't match the declared one, and nonce mismatches all
// wrap it. A failed handshake leaves the anchor's peer registry untouched.
var ErrOnboarding = errors.New("onboarding handshake failed")

const verKeyLen = 32

// Onboard runs the anchor side of the handshake against the onboardee
// listening at addr. The ledger role tells which rights the onboardee's
// DID is anchored with; it comes from the onboardee's role, see
// actor.Role.LedgerRole.
func Onboard(
	anchor *actor.Actor,
	onboardee string,
	addr *endp.Addr,
	ledgerRole string,
) (err error) {
	defer err2.Handle(&err, "onboarding")

	assert.NotNil(anchor.Root, "anchor needs a ledger identity")
	assert.That(addr.Valid(), "onboardee address is not valid")

	glog.V(1).Infoln(anchor.Name(), "onboarding", onboardee)

	// fresh pairwise identity for this relationship only
	pwDID := anchor.CreateDID("")
	try.To(anchor.SendNYM(pwDID, anchor.RootDid().Did(), anchor.Name(), ""))

	nonce := utils.NewNonceStr()
	request := Request{
		Label:    anchor.Name(),
		DID:      pwDID.Did(),
		VerKey:   pwDID.VerKey(),
		Endpoint: anchor.Addr().Address(),
		Nonce:    nonce,
	}

	reply, err := comm.SendPlain(
		addr.WithKind(endp.HandshakeKind), dto.ToJSONBytes(&request))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOnboarding, err)
	}

	response := try.To1(openResponse(sec.Pipe{In: pwDID}, reply, nonce))

	try.To(anchor.SaveConnection(api.Connection{
		ID:            onboardee,
		MyDID:         pwDID.Did(),
		TheirDID:      response.DID,
		TheirVerKey:   response.VerKey,
		TheirEndpoint: response.Endpoint,
		Nonce:         nonce,
	}))

	// anchoring gives the onboardee its ledger identity; with a writer
	// role it can publish schemas and cred defs of its own
	theirDID := anchor.LoadDID(response.DID)
	try.To(anchor.SendNYM(
		theirDID, anchor.RootDid().Did(), response.Label, ledgerRole))

	glog.V(1).Infoln(anchor.Name(), "onboarded", onboardee, "as", response.DID)
	return nil
}

// openResponse decrypts and authenticates the connection response. Every
// failure mode maps to ErrOnboarding: the anchor must not store anything
// from a response it cannot fully verify.
func openResponse(pipe sec.Pipe, crypted []byte, nonce string) (r *Response, err error) {
	plain, senderVK, err := pipe.Unpack(crypted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOnboarding, err)
	}

	response := &Response{}
	dto.FromJSON(plain, response)

	if !validVerKey(response.VerKey) {
		return nil, fmt.Errorf("%w: bad verkey syntax", ErrOnboarding)
	}
	if senderVK != response.VerKey {
		return nil, fmt.Errorf("%w: sender key %s is not the declared key",
			ErrOnboarding, senderVK)
	}
	if response.Nonce != nonce {
		return nil, fmt.Errorf("%w: connection nonce mismatch", ErrOnboarding)
	}
	if !endp.IsDID(response.DID) {
		return nil, fmt.Errorf("%w: bad DID syntax", ErrOnboarding)
	}
	return response, nil
}

// HandlerFor returns the onboardee side handshake handler for the actor.
// Wire it with actor.SetHandshake before registering the actor to the
// server.
func HandlerFor(a *actor.Actor) func(request []byte) (response []byte, err error) {
	return func(request []byte) (_ []byte, err error) {
		defer err2.Handle(&err, "onboarding handler")

		req := &Request{}
		dto.FromJSON(request, req)

		if req.Label == "" || !endp.IsDID(req.DID) || !validVerKey(req.VerKey) {
			return nil, fmt.Errorf("%w: bad connection request", ErrOnboarding)
		}

		glog.V(1).Infoln(a.Name(), "handshake from", req.Label)

		pwDID := a.CreateDID("")
		a.EnsureRoot(pwDID)

		try.To(a.SaveConnection(api.Connection{
			ID:            req.Label,
			MyDID:         pwDID.Did(),
			TheirDID:      req.DID,
			TheirVerKey:   req.VerKey,
			TheirEndpoint: req.Endpoint,
			Nonce:         req.Nonce,
		}))

		response := Response{
			Label:    a.Name(),
			DID:      pwDID.Did(),
			VerKey:   pwDID.VerKey(),
			Endpoint: a.Addr().Address(),
			Nonce:    req.Nonce,
		}

		pipe := try.To1(a.PipeTo(req.Label))
		crypted, _ := try.To2(pipe.Pack(dto.ToJSONBytes(&response)))
		return crypted, nil
	}
}

func validVerKey(vk string) bool {
	b, err := base58.Decode(vk)
	return err == nil && len(b) == verKeyLen
}
