/*
Package cmds holds the plain command structs the cobra tree delegates to.
Every command validates itself with Validate and runs with Exec which
takes the progress writer and returns a JSON able Result. The structs
carry no cobra or viper types so they are usable straight from tests.
*/
package cmds

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alloy-network/alloy-agent/agent/ssi"
	"github.com/lainio/err2/try"
)

const walletKeyLength = 44

var ErrInvalid = errors.New("invalid command, check arguments")

// Cmd is the base for every command which operates on a wallet.
type Cmd struct {
	WalletName string
	WalletKey  string
}

func (c Cmd) Validate() error {
	if c.WalletName == "" {
		return errors.New("wallet name cannot be empty")
	}
	return c.ValidateWalletKey()
}

func (c Cmd) ValidateWalletKey() error {
	return ValidateKey(c.WalletKey)
}

func (c Cmd) ValidateWalletExistence(should bool) error {
	exists := ssi.NewRawWalletCfg(c.WalletName, c.WalletKey).Exists()
	ok := (should && exists) || (!should && !exists)
	if !ok {
		return fmt.Errorf("wallet exists: %v", exists)
	}
	return nil
}

func ValidateKey(k string) error {
	if k == "" {
		return errors.New("wallet key cannot be empty")
	}
	if len(k) != walletKeyLength {
		return errors.New("wallet key is not valid")
	}
	return nil
}

func ValidateSeed(seed string) error {
	if seed != "" && len(seed) != 32 {
		return errors.New("seed must be empty or length of 32")
	}
	return nil
}

// ValidateTime checks a clock time argument like the backup times.
func ValidateTime(t string) error {
	if _, err := time.Parse("15:04", t); err != nil {
		return fmt.Errorf("time must be in HH:MM format: %v", err)
	}
	return nil
}

// Result is the outcome of a command in machine readable form.
type Result interface {
	JSON() ([]byte, error)
}

// Command is the interface the cobra layer drives.
type Command interface {
	Validate() error
	Exec(w io.Writer) (r Result, err error)
}

// Fprintln is fmt.Fprintln but it allows writer to be nil. Note! it
// throws an error.
func Fprintln(w io.Writer, a ...interface{}) {
	if w != nil {
		try.To1(fmt.Fprintln(w, a...))
	}
}

// Fprintf is fmt.Fprintf but it allows writer to be nil. Note! it throws
// an error.
func Fprintf(w io.Writer, format string, a ...interface{}) {
	if w != nil {
		try.To1(fmt.Fprintf(w, format, a...))
	}
}

// Fprint is fmt.Fprint but it allows writer to be nil. Note! it throws
// an error.
func Fprint(w io.Writer, a ...interface{}) {
	if w != nil {
		try.To1(fmt.Fprint(w, a...))
	}
}

// Progress writes a dot to the writer until the returned channel is
// closed. For the long running ledger and wallet commands.
func Progress(w io.Writer) chan<- struct{} {
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(300 * time.Millisecond):
				Fprint(w, ".")
			}
		}
	}()
	return done
}
