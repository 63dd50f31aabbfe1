// Package key implements the wallet key generation command. Every wallet
// the commands open uses a RAW key of this form.
package key

import (
	"io"

	"github.com/alloy-network/alloy-agent/cmds"
	"github.com/findy-network/findy-wrapper-go/wallet"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type CreateCmd struct {
	Seed string
}

func (c *CreateCmd) Validate() error {
	return cmds.ValidateSeed(c.Seed)
}

func (c *CreateCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "create key")

	result := <-wallet.GenerateKey(c.Seed)
	try.To(result.Err())
	cmds.Fprintln(w, result.Str1())

	return r, nil
}
