// Package onboard implements the anchor side onboarding command: the
// anchor wallet connects a peer served by an agency and anchors the
// peer's DID with the rights of its role.
package onboard

import (
	"errors"
	"io"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/endp"
	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/alloy-network/alloy-agent/protocol/onboarding"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Cmd struct {
	cmds.Cmd
	PoolName string

	AnchorDid  string // anchor's root DID, from steward create or onboarding
	AnchorRole string
	Endpoint   string // anchor's own base address the peer answers to

	PeerName string
	PeerURL  string // peer's base address at the agency
	PeerRole string
}

type Result struct {
	MyDID         string `json:"my_did"`
	TheirDID      string `json:"their_did"`
	TheirVerKey   string `json:"their_verkey"`
	TheirEndpoint string `json:"their_endpoint"`
}

func (r *Result) JSON() ([]byte, error) {
	return dto.ToJSONBytes(r), nil
}

func (c *Cmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if err := c.Cmd.ValidateWalletExistence(true); err != nil {
		return err
	}
	if c.PoolName == "" {
		return errors.New("pool name cannot be empty")
	}
	if c.AnchorDid == "" {
		return errors.New("anchor DID cannot be empty")
	}
	if c.Endpoint == "" {
		return errors.New("anchor endpoint cannot be empty")
	}
	if c.PeerName == "" || c.PeerURL == "" {
		return errors.New("peer name and url cannot be empty")
	}
	if _, err := actor.RoleByName(c.AnchorRole); err != nil {
		return err
	}
	if _, err := actor.RoleByName(c.PeerRole); err != nil {
		return err
	}
	return nil
}

func (c *Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "onboard cmd")

	pool.Open(c.PoolName)
	defer pool.Close()

	role := try.To1(actor.RoleByName(c.AnchorRole))
	peerRole := try.To1(actor.RoleByName(c.PeerRole))

	anchor := actor.New(c.WalletName, role,
		ssi.NewRawWalletCfg(c.WalletName, c.WalletKey))
	defer anchor.CloseWallet()

	anchor.SetRootDid(anchor.OpenDID(c.AnchorDid))
	anchor.SetAddr(endp.NewClientAddr(c.Endpoint))

	cmds.Fprintln(w, "onboarding", c.PeerName, "...")
	try.To(onboarding.Onboard(anchor, c.PeerName,
		endp.NewClientAddr(c.PeerURL), peerRole.LedgerRole()))

	conn := try.To1(anchor.Connection(c.PeerName))
	result := &Result{
		MyDID:         conn.MyDID,
		TheirDID:      conn.TheirDID,
		TheirVerKey:   conn.TheirVerKey,
		TheirEndpoint: conn.TheirEndpoint,
	}
	cmds.Fprintln(w, "connected to", c.PeerName, "as", conn.MyDID)
	return result, nil
}
