// Package schema implements the issuer side registration commands: the
// schema and the credential definition ledger writes.
package schema

import (
	"errors"
	"io"

	"github.com/alloy-network/alloy-agent/agent/actor"
	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/alloy-network/alloy-agent/protocol/registry"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type CreateCmd struct {
	cmds.Cmd
	PoolName string
	Did      string // issuer's root DID

	Name    string
	Version string
	Attrs   []string
}

type CreateResult struct {
	Name     string `json:"name"`
	SchemaID string `json:"schema_id"`
}

func (r *CreateResult) JSON() ([]byte, error) {
	return dto.ToJSONBytes(r), nil
}

func (c *CreateCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if err := c.Cmd.ValidateWalletExistence(true); err != nil {
		return err
	}
	if c.PoolName == "" {
		return errors.New("pool name cannot be empty")
	}
	if c.Did == "" {
		return errors.New("issuer DID cannot be empty")
	}
	if c.Name == "" || c.Version == "" {
		return errors.New("schema name and version cannot be empty")
	}
	if len(c.Attrs) == 0 {
		return errors.New("schema must have attributes")
	}
	return nil
}

func (c *CreateCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "schema cmd")

	pool.Open(c.PoolName)
	defer pool.Close()

	issuer := openIssuer(c.WalletName, c.WalletKey, c.Did)
	defer issuer.CloseWallet()

	name := try.To1(registry.CreateSchema(issuer, &ssi.Schema{
		Name:    c.Name,
		Version: c.Version,
		Attrs:   c.Attrs,
	}))

	result := &CreateResult{
		Name:     name,
		SchemaID: issuer.SchemaState(name).SchemaID,
	}
	cmds.Fprintln(w, "schema ID:", result.SchemaID)
	return result, nil
}

type CredDefCmd struct {
	cmds.Cmd
	PoolName string
	Did      string

	SchemaName string
	SchemaID   string // from the schema command's output
	Revocable  bool
}

type CredDefResult struct {
	SchemaID  string `json:"schema_id"`
	CredDefID string `json:"cred_def_id"`
}

func (r *CredDefResult) JSON() ([]byte, error) {
	return dto.ToJSONBytes(r), nil
}

func (c *CredDefCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if err := c.Cmd.ValidateWalletExistence(true); err != nil {
		return err
	}
	if c.PoolName == "" {
		return errors.New("pool name cannot be empty")
	}
	if c.Did == "" {
		return errors.New("issuer DID cannot be empty")
	}
	if c.SchemaName == "" || c.SchemaID == "" {
		return errors.New("schema name and id cannot be empty")
	}
	return nil
}

func (c *CredDefCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "cred def cmd")

	pool.Open(c.PoolName)
	defer pool.Close()

	issuer := openIssuer(c.WalletName, c.WalletKey, c.Did)
	defer issuer.CloseWallet()

	// the schema binding comes from the schema command's run, a fresh
	// process gets it from the given id
	name := ssi.CanonName(c.SchemaName)
	st := issuer.SchemaState(name)
	if st.SchemaID == "" {
		st.SchemaID = c.SchemaID
	}

	done := cmds.Progress(w)
	credDefID, err := registry.CreateCredDef(issuer, name, c.Revocable)
	done <- struct{}{}
	try.To(err)

	result := &CredDefResult{SchemaID: st.SchemaID, CredDefID: credDefID}
	cmds.Fprintln(w, "\ncred def ID:", credDefID)
	return result, nil
}

func openIssuer(walletName, walletKey, DID string) *actor.Actor {
	issuer := actor.New(walletName, actor.RoleIssuer,
		ssi.NewRawWalletCfg(walletName, walletKey))
	issuer.SetRootDid(issuer.OpenDID(DID))
	return issuer
}
