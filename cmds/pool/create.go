// Package pool implements the ledger pool configuration commands.
package pool

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alloy-network/alloy-agent/cmds"
	indypool "github.com/findy-network/findy-wrapper-go/pool"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type CreateCmd struct {
	Name string
	Txn  string
}

func (c *CreateCmd) Validate() error {
	if c.Name == "" {
		return errors.New("pool name cannot be empty")
	}
	if c.Name == "FINDY_MEM_LEDGER" || c.Name == "FINDY_ECHO_LEDGER" {
		return fmt.Errorf("%s is not a valid ledger name", c.Name)
	}
	if c.Txn == "" {
		return errors.New("pool genesis file is required")
	}
	_, err := os.Stat(c.Txn)
	if os.IsNotExist(err) {
		return errors.New("pool genesis does not exist")
	}
	return nil
}

func (c *CreateCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "create pool")

	res := <-indypool.CreateConfig(c.Name, indypool.Config{GenesisTxn: c.Txn})
	try.To(res.Err())
	cmds.Fprintln(w, "pool created by name:", c.Name)

	return r, nil
}
