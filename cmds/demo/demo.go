// Package demo implements the demo command: the whole credential
// lifecycle of the Degree example in one process. Four fresh wallets are
// created per run, connected, and the Job-Application proof is verified
// at the end.
package demo

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/alloy-network/alloy-agent/enclave"
	"github.com/alloy-network/alloy-agent/protocol/lifecycle"
	"github.com/alloy-network/alloy-agent/protocol/onboarding"
	"github.com/alloy-network/alloy-agent/protocol/proof"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Cmd struct {
	PoolName    string
	PsmDb       string
	EnclavePath string
	EnclaveKey  string

	WalletKey    string // one key for all four demo wallets
	WalletPrefix string
	StewardSeed  string
}

type Result struct {
	Revealed     map[string]string `json:"revealed"`
	SelfAttested map[string]string `json:"self_attested"`
}

func (r *Result) JSON() ([]byte, error) {
	return dto.ToJSONBytes(r), nil
}

func (c *Cmd) Validate() error {
	if err := cmds.ValidateKey(c.WalletKey); err != nil {
		return err
	}
	if err := cmds.ValidateSeed(c.StewardSeed); err != nil {
		return err
	}
	if c.StewardSeed == "" {
		return errors.New("steward seed cannot be empty")
	}
	if c.WalletPrefix == "" {
		return errors.New("wallet prefix cannot be empty")
	}
	if c.PoolName == "" {
		return errors.New("pool name cannot be empty")
	}
	if c.PsmDb == "" || c.EnclavePath == "" {
		return errors.New("psm db and enclave paths cannot be empty")
	}
	return nil
}

func (c *Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "demo cmd")

	try.To(psm.Open(c.PsmDb))
	defer psm.Close()
	try.To(enclave.InitSealedBox(c.EnclavePath, "", c.EnclaveKey))
	defer enclave.Close()
	pool.Open(c.PoolName)
	defer pool.Close()

	// fresh wallets per run, the demo never reuses identities
	tag := fmt.Sprintf("%s-%d", c.WalletPrefix, time.Now().Unix())

	runner := &lifecycle.Runner{
		Steward:  c.newActor(tag+"-steward", actor.RoleSteward),
		Issuer:   c.newActor(tag+"-issuer", actor.RoleIssuer),
		Prover:   c.newActor(tag+"-prover", actor.RoleProver),
		Verifier: c.newActor(tag+"-verifier", actor.RoleVerifier),
	}
	defer func() {
		runner.Steward.CloseWallet()
		runner.Issuer.CloseWallet()
		runner.Prover.CloseWallet()
		runner.Verifier.CloseWallet()
	}()

	runner.Steward.SetRootDid(runner.Steward.CreateDID(c.StewardSeed))
	for _, a := range []*actor.Actor{runner.Issuer, runner.Prover, runner.Verifier} {
		a.SetHandshake(onboarding.HandlerFor(a))
	}

	cmds.ServeLocal(runner.Steward, runner.Issuer, runner.Prover, runner.Verifier)

	cmds.Fprintln(w, "running the credential lifecycle ...")
	att := try.To1(runner.Run())

	result := toResult(att)
	cmds.Fprintln(w, "proof verified:")
	for referent, raw := range result.Revealed {
		cmds.Fprintln(w, " ", referent, "=", raw)
	}
	for referent, raw := range result.SelfAttested {
		cmds.Fprintln(w, " ", referent, "=", raw, "(self attested)")
	}
	return result, nil
}

func (c *Cmd) newActor(name string, role actor.Role) *actor.Actor {
	w := ssi.NewRawWalletCfg(name, c.WalletKey)
	w.Create()
	return actor.New(name, role, w)
}

func toResult(att *proof.Attestation) *Result {
	r := &Result{
		Revealed:     make(map[string]string, len(att.Revealed)),
		SelfAttested: att.SelfAttested,
	}
	for referent, attr := range att.Revealed {
		r.Revealed[referent] = attr.Raw
	}
	return r
}
