// Package steward implements the steward bootstrap command: a wallet and
// a ledger root identity from a 32 character seed.
package steward

import (
	"errors"
	"io"

	"github.com/alloy-network/alloy-agent/agent/async"
	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-wrapper-go/did"
	"github.com/lainio/err2"
)

type CreateCmd struct {
	cmds.Cmd
	PoolName    string
	StewardSeed string
}

type CreateResult struct {
	DID    string `json:"did"`
	VerKey string `json:"verkey"`
}

func (r *CreateResult) JSON() ([]byte, error) {
	return dto.ToJSONBytes(r), nil
}

func (c *CreateCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if err := c.Cmd.ValidateWalletExistence(false); err != nil {
		return err
	}
	if c.PoolName == "" {
		return errors.New("pool name cannot be empty")
	}
	return cmds.ValidateSeed(c.StewardSeed)
}

func (c *CreateCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "create steward")

	pool.Open(c.PoolName)

	agentWallet := ssi.NewRawWalletCfg(c.WalletName, c.WalletKey)
	agentWallet.Create()

	walletFuture := agentWallet.Open()
	handle := walletFuture.Int()

	f := new(async.Future)
	f.SetChan(did.CreateAndStore(handle, did.Did{Seed: c.StewardSeed}))

	result := &CreateResult{DID: f.Str1(), VerKey: f.Str2()}

	cmds.Fprintln(w,
		"steward DID:", result.DID,
		"\nsteward VerKey:", result.VerKey)

	agentWallet.Close(handle)
	return result, nil
}
