// Package tools implements the wallet maintenance commands: export to
// and import from a portable encrypted file.
package tools

import (
	"errors"
	"io"

	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/findy-network/findy-wrapper-go/wallet"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type ExportCmd struct {
	cmds.Cmd

	Filename  string
	ExportKey string
}

func (c ExportCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if err := c.Cmd.ValidateWalletExistence(true); err != nil {
		return err
	}
	if c.Filename == "" {
		return errors.New("export path cannot be empty")
	}
	return cmds.ValidateKey(c.ExportKey)
}

func (c ExportCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "export wallet cmd")

	cfg := ssi.NewRawWalletCfg(c.WalletName, c.WalletKey)
	handle := cfg.Open().Int()
	defer cfg.Close(handle)

	exportCreds := wallet.Credentials{
		Path:                c.Filename,
		Key:                 c.ExportKey,
		KeyDerivationMethod: "RAW",
	}

	done := cmds.Progress(w)
	res := <-wallet.Export(handle, exportCreds)
	done <- struct{}{}
	try.To(res.Err())

	cmds.Fprintln(w, "\nwallet exported:", c.Filename)
	return r, nil
}
