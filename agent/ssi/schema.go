package ssi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alloy-network/alloy-agent/agent/async"
	"github.com/alloy-network/alloy-agent/agent/pool"
	"github.com/cenkalti/backoff/v4"
	"github.com/findy-network/findy-wrapper-go/anoncreds"
	"github.com/findy-network/findy-wrapper-go/dto"
	"github.com/findy-network/findy-wrapper-go/ledger"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// ErrLedgerUnavailable is returned when a ledger object cannot be read or
// written even after retries. Callers can treat it as transient and try
// again later.
var ErrLedgerUnavailable = errors.New("ledger unavailable")

// ledgerRetryCount bounds the read retries. A freshly written object is
// not always immediately readable from the ledger, so reads back off and
// retry before they give up.
const ledgerRetryCount = 5

type Schema struct {
	ID      string        `json:"id,omitempty"`      // ID from the ledger
	Name    string        `json:"name,omitempty"`    // name of the schema
	Version string        `json:"version,omitempty"` // version number in string
	Attrs   []string      `json:"attrs,omitempty"`   // attribute string list
	Stored  *async.Future `json:"-"`                 // info from the ledger
}

// CanonName returns the name a schema is registered under: trimmed, lower
// case and spaces turned to underscores. The same human given name always
// maps to the same ledger name.
func CanonName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func (s *Schema) Create(DID string) (err error) {
	defer err2.Handle(&err, "create schema")

	s.Name = CanonName(s.Name)
	attrsStr := try.To1(json.Marshal(s.Attrs))

	s.Stored = &async.Future{}
	s.Stored.SetChan(anoncreds.IssuerCreateSchema(DID, s.Name, s.Version, string(attrsStr)))
	return nil
}

func (s *Schema) ValidID() string {
	if s.ID != "" {
		return s.ID
	}
	if s.Stored != nil {
		s.ID = s.Stored.Str1()
	}
	return s.ID
}

func (s *Schema) ToLedger(wallet int, DID string) (err error) {
	scJSON := s.Stored.Str2()
	if err := ledger.WriteSchema(pool.Handle(), wallet, DID, scJSON); err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return nil
}

func (s *Schema) FromLedger(DID string) (err error) {
	defer err2.Handle(&err, "schema from ledger")

	var sID, schema string
	try.To(readLedger(func() (err error) {
		sID, schema, err = ledger.ReadSchema(pool.Handle(), DID, s.ValidID())
		return err
	}))
	s.Stored = &async.Future{V: dto.Result{Data: dto.Data{Str1: sID, Str2: schema}}, On: async.Consumed}

	return nil
}

func (s *Schema) LazySchema() string {
	if s.Stored == nil {
		return ""
	}
	return s.Stored.Str2()
}

func CredDefFromLedger(DID, credDefID string) (cd string, err error) {
	defer err2.Handle(&err, "cred def from ledger")

	try.To(readLedger(func() (err error) {
		_, cd, err = ledger.ReadCredDef(pool.Handle(), DID, credDefID)
		return err
	}))
	return cd, nil
}

// readLedger runs a ledger read with exponential backoff and maps
// exhaustion to ErrLedgerUnavailable.
func readLedger(op backoff.Operation) (err error) {
	retries := 0
	err = backoff.RetryNotify(op,
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), ledgerRetryCount),
		func(err error, d time.Duration) {
			retries++
			glog.V(3).Infof("ledger read retry %d in %s: %v", retries, d, err)
		})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return nil
}
