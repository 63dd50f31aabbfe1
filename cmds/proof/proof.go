// Package proof implements the proving command: one complete proof
// request, presentation and verification run between a verifier and a
// prover wallet, both served in-process. The prover must hold a matching
// credential, see the issue command.
package proof

import (
	"errors"
	"io"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/alloy-network/alloy-agent/enclave"
	"github.com/alloy-network/alloy-agent/protocol/onboarding"
	proofproto "github.com/alloy-network/alloy-agent/protocol/proof"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Cmd struct {
	PoolName    string
	PsmDb       string
	EnclavePath string
	EnclaveKey  string

	VerifierWalletName string
	VerifierWalletKey  string

	ProverWalletName string
	ProverWalletKey  string
	ProverDid        string // root of an earlier issue run, empty in one-process flows

	ProofReqJSON string // anoncreds proof request, nonce is stamped if empty
	SelfAttested map[string]string
}

type Result struct {
	Nonce        string            `json:"nonce"`
	Revealed     map[string]string `json:"revealed"`
	SelfAttested map[string]string `json:"self_attested"`
}

func (r *Result) JSON() ([]byte, error) {
	return dto.ToJSONBytes(r), nil
}

func (c *Cmd) Validate() error {
	if c.VerifierWalletName == "" || c.ProverWalletName == "" {
		return errors.New("wallet names cannot be empty")
	}
	if err := cmds.ValidateKey(c.VerifierWalletKey); err != nil {
		return err
	}
	if err := cmds.ValidateKey(c.ProverWalletKey); err != nil {
		return err
	}
	if c.PoolName == "" {
		return errors.New("pool name cannot be empty")
	}
	if c.PsmDb == "" || c.EnclavePath == "" {
		return errors.New("psm db and enclave paths cannot be empty")
	}
	if c.ProofReqJSON == "" {
		return errors.New("proof request cannot be empty")
	}
	return nil
}

func (c *Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "proof cmd")

	try.To(psm.Open(c.PsmDb))
	defer psm.Close()
	try.To(enclave.InitSealedBox(c.EnclavePath, "", c.EnclaveKey))
	defer enclave.Close()
	pool.Open(c.PoolName)
	defer pool.Close()

	verifierWallet := ssi.NewRawWalletCfg(c.VerifierWalletName, c.VerifierWalletKey)
	verifierWallet.Create()
	verifier := actor.New(c.VerifierWalletName, actor.RoleVerifier, verifierWallet)
	defer verifier.CloseWallet()
	verifier.SetRootDid(verifier.CreateDID(""))

	proverWallet := ssi.NewRawWalletCfg(c.ProverWalletName, c.ProverWalletKey)
	proverWallet.Create()
	prover := actor.New(c.ProverWalletName, actor.RoleProver, proverWallet)
	defer prover.CloseWallet()
	prover.SetHandshake(onboarding.HandlerFor(prover))
	if c.ProverDid != "" {
		// the master secret lives under this identity in the enclave
		prover.SetRootDid(prover.OpenDID(c.ProverDid))
	}

	cmds.ServeLocal(verifier, prover)

	try.To(onboarding.Onboard(verifier, prover.Name(), prover.Addr(), ""))

	req := &anoncreds.ProofRequest{}
	dto.FromJSONStr(c.ProofReqJSON, req)

	cmds.Fprintln(w, "requesting proof from", prover.Name(), "...")

	nonce := try.To1(proofproto.RequestProof(verifier, prover.Name(), req))

	pkt := <-prover.Inbox().ProofReqs()
	verifierName, msg := try.To2(proofproto.HandleProofRequest(prover, pkt))
	try.To(proofproto.CreateProof(prover, verifierName, msg, c.SelfAttested))

	pkt = <-verifier.Inbox().Proofs()
	att := try.To1(proofproto.HandleProof(verifier, pkt))

	result := &Result{
		Nonce:        nonce,
		Revealed:     make(map[string]string, len(att.Revealed)),
		SelfAttested: att.SelfAttested,
	}
	for referent, attr := range att.Revealed {
		result.Revealed[referent] = attr.Raw
	}

	cmds.Fprintln(w, "proof verified")
	return result, nil
}
