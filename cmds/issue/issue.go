// Package issue implements the issuing command: one complete offer,
// request, issue, store run between an issuer and a prover wallet, both
// served in-process.
package issue

import (
	"errors"
	"io"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/alloy-network/alloy-agent/agent/psm"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/alloy-network/alloy-agent/enclave"
	"github.com/alloy-network/alloy-agent/protocol/issuance"
	"github.com/alloy-network/alloy-agent/protocol/onboarding"
	"github.com/alloy-network/alloy-agent/protocol/registry"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Cmd struct {
	PoolName    string
	PsmDb       string
	EnclavePath string
	EnclaveKey  string

	IssuerWalletName string
	IssuerWalletKey  string
	IssuerDid        string // reuse an anchored identity, empty means seed
	StewardSeed      string

	ProverWalletName string
	ProverWalletKey  string

	SchemaName    string
	SchemaVersion string
	Attrs         []string
	Values        map[string]string
}

type Result struct {
	Nonce     string `json:"nonce"`
	SchemaID  string `json:"schema_id"`
	CredDefID string `json:"cred_def_id"`
}

func (r *Result) JSON() ([]byte, error) {
	return dto.ToJSONBytes(r), nil
}

func (c *Cmd) Validate() error {
	if c.IssuerWalletName == "" || c.ProverWalletName == "" {
		return errors.New("wallet names cannot be empty")
	}
	if err := cmds.ValidateKey(c.IssuerWalletKey); err != nil {
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
	if c.IssuerDid == "" {
		if err := cmds.ValidateSeed(c.StewardSeed); err != nil {
			return err
		}
	}
	if c.SchemaName == "" || c.SchemaVersion == "" || len(c.Attrs) == 0 {
		return errors.New("schema name, version and attributes are needed")
	}
	if len(c.Values) == 0 {
		return errors.New("credential values cannot be empty")
	}
	return nil
}

func (c *Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "issue cmd")

	try.To(psm.Open(c.PsmDb))
	defer psm.Close()
	try.To(enclave.InitSealedBox(c.EnclavePath, "", c.EnclaveKey))
	defer enclave.Close()
	pool.Open(c.PoolName)
	defer pool.Close()

	issuerWallet := ssi.NewRawWalletCfg(c.IssuerWalletName, c.IssuerWalletKey)
	issuerWallet.Create()
	issuer := actor.New(c.IssuerWalletName, actor.RoleIssuer, issuerWallet)
	defer issuer.CloseWallet()

	if c.IssuerDid != "" {
		issuer.SetRootDid(issuer.OpenDID(c.IssuerDid))
	} else {
		issuer.SetRootDid(issuer.CreateDID(c.StewardSeed))
	}

	proverWallet := ssi.NewRawWalletCfg(c.ProverWalletName, c.ProverWalletKey)
	proverWallet.Create()
	prover := actor.New(c.ProverWalletName, actor.RoleProver, proverWallet)
	defer prover.CloseWallet()
	prover.SetHandshake(onboarding.HandlerFor(prover))

	cmds.ServeLocal(issuer, prover)

	try.To(onboarding.Onboard(issuer, prover.Name(), prover.Addr(),
		prover.Role().LedgerRole()))

	schemaName := try.To1(registry.CreateSchema(issuer, &ssi.Schema{
		Name:    c.SchemaName,
		Version: c.SchemaVersion,
		Attrs:   c.Attrs,
	}))
	try.To1(registry.CreateCredDef(issuer, schemaName, false))
	issuer.SchemaState(schemaName).Values = issuance.CodedValues(c.Values)

	cmds.Fprintln(w, "issuing", schemaName, "to", prover.Name(), "...")

	nonce := try.To1(issuance.Offer(issuer, prover.Name(), schemaName))

	pkt := <-prover.Inbox().Offers()
	issuerName, msg := try.To2(issuance.HandleOffer(prover, pkt))
	try.To(issuance.RequestCredential(prover, issuerName, msg))

	pkt = <-issuer.Inbox().CredReqs()
	try.To(issuance.HandleCredRequest(issuer, pkt))

	pkt = <-prover.Inbox().Creds()
	try.To(issuance.HandleCredential(prover, pkt))

	st := prover.SchemaState(schemaName)
	result := &Result{Nonce: nonce, SchemaID: st.SchemaID, CredDefID: st.CredDefID}

	cmds.Fprintln(w, "credential stored, cred def:", st.CredDefID)
	return result, nil
}
