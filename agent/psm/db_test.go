package psm

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/findy-network/findy-common-go/dto"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

const (
	dbPath = "db_test.bolt"

	testHexKey = "15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c"
)

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	defer err2.Catch(func(err error) {
		fmt.Println("error on setup", err)
	})

	// We don't want logs on file with tests
	try.To(flag.Set("logtostderr", "true"))

	try.To(Open(dbPath))
}

func tearDown() {
	Close()

	os.Remove(dbPath)
	os.Remove(dbPath + "_backup")
}

func Test_addPSM(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	psm := testPSM(0)
	assert.NotNil(psm)

	tests := []struct {
		name string
	}{
		{"add"},
		{"overwrite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			err := AddPSM(psm)
			assert.NoError(err)

			got, err := GetPSM(StateKey{DID: mockStateDID, Nonce: mockStateNonce})
			assert.NoError(err)
			assert.DeepEqual(psm, got)
		})
	}
}

func Test_addPSMWithCipher(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	Close()

	path := "cipher-" + dbPath
	try.To(OpenWithKey(path, testHexKey))
	defer func() {
		Close()
		os.Remove(path)
		os.Remove(path + "_backup")

		try.To(Open(dbPath))
	}()

	psm := testPSM(77)
	err := AddPSM(psm)
	assert.NoError(err)

	got, err := GetPSM(psm.Key)
	assert.NoError(err)
	assert.DeepEqual(psm, got)
}

type testRep struct {
	StateKey
}

func (t *testRep) Key() StateKey {
	return t.StateKey
}

func (t *testRep) Data() []byte {
	return dto.ToGOB(t)
}

func (t *testRep) Type() byte {
	return BucketPSM // just use any type
}

func NewTestRep(d []byte) Rep {
	p := &testRep{}
	dto.FromGOB(d, p)
	return p
}

func Test_addBaseRep(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	msgRep := &testRep{
		StateKey: StateKey{DID: mockStateDID, Nonce: mockStateNonce},
	}
	tests := []struct {
		name string
	}{
		{"add"},
	}
	Creator.Add(BucketPSM, NewTestRep)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			err := AddRep(msgRep)
			assert.NoError(err)

			got, err := GetRep(msgRep.Type(), msgRep.StateKey)
			assert.NoError(err)
			assert.DeepEqual(msgRep, got)
		})
	}
}

func Test_startAdvance(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	t.Run("holder walks the whole issuing chain", func(t *testing.T) {
		assert.PushTester(t)
		defer assert.PopTester()

		key := StateKey{DID: "SEQ", Nonce: "n-1"}
		p := &PSM{Key: key, PeerDID: "PEER", SchemaID: "schema"}
		err := Start(p, Offered)
		assert.NoError(err)
		assert.Equal(p.Protocol, ProtocolIssue)

		for _, phase := range []Phase{Requested, Issued, Stored} {
			m, err := Advance(key, phase)
			assert.NoError(err)
			assert.Equal(m.Phase(), phase)
		}

		m := try.To1(GetPSM(key))
		assert.Equal(len(m.States), 4)

		yes := try.To1(IsPSMReady(key))
		assert.That(yes)
	})

	t.Run("reused nonce is a replay", func(t *testing.T) {
		assert.PushTester(t)
		defer assert.PopTester()

		key := StateKey{DID: "SEQ", Nonce: "n-1"}
		err := Start(&PSM{Key: key}, Offered)
		assert.That(errors.Is(err, ErrSequence))
	})

	t.Run("mid chain phase cannot start", func(t *testing.T) {
		assert.PushTester(t)
		defer assert.PopTester()

		key := StateKey{DID: "SEQ", Nonce: "n-2"}
		err := Start(&PSM{Key: key}, Requested)
		assert.That(errors.Is(err, ErrSequence))
	})

	t.Run("phase skip is out of order", func(t *testing.T) {
		assert.PushTester(t)
		defer assert.PopTester()

		key := StateKey{DID: "SEQ", Nonce: "n-3"}
		try.To(Start(&PSM{Key: key}, Offered))

		_, err := Advance(key, Issued)
		assert.That(errors.Is(err, ErrSequence))

		// the failed transition must not move the machine
		m := try.To1(GetPSM(key))
		assert.Equal(m.Phase(), Offered)
	})

	t.Run("unknown machine cannot advance", func(t *testing.T) {
		assert.PushTester(t)
		defer assert.PopTester()

		_, err := Advance(StateKey{DID: "SEQ", Nonce: "missing"}, Requested)
		assert.That(errors.Is(err, ErrSequence))
	})

	t.Run("issuing machine rejects proof phases", func(t *testing.T) {
		assert.PushTester(t)
		defer assert.PopTester()

		key := StateKey{DID: "SEQ", Nonce: "n-4"}
		try.To(Start(&PSM{Key: key}, Offered))

		_, err := Advance(key, ProofCreated)
		assert.That(errors.Is(err, ErrSequence))
	})

	t.Run("prover is ready when the proof is sent", func(t *testing.T) {
		assert.PushTester(t)
		defer assert.PopTester()

		key := StateKey{DID: "SEQ", Nonce: "p-1"}
		p := &PSM{Key: key, PeerDID: "PEER"}
		try.To(Start(p, ProofRequested))
		assert.Equal(p.Protocol, ProtocolProof)

		m := try.To1(Advance(key, ProofCreated))
		assert.That(m.IsReady())
	})
}

func Test_sweepStale(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	doneKey := StateKey{DID: "SWEEP", Nonce: "done"}
	try.To(Start(&PSM{Key: doneKey, StartedByUs: true}, Offered))
	try.To1(Advance(doneKey, Requested))
	m := try.To1(Advance(doneKey, Issued))
	assert.That(m.IsReady())

	liveKey := StateKey{DID: "SWEEP", Nonce: "live"}
	try.To(Start(&PSM{Key: liveKey, StartedByUs: true}, Offered))

	// cutoff in the future: every finished machine counts as stale
	cutoff := time.Now().Add(time.Hour).UnixNano()
	count, err := SweepStale(cutoff)
	assert.NoError(err)
	assert.That(count >= 1)

	_, err = GetPSM(doneKey)
	assert.Error(err)

	// a machine still in flight survives the sweep
	live := try.To1(GetPSM(liveKey))
	assert.Equal(live.Phase(), Offered)
}

func Test_rmPSM(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	key := StateKey{DID: "RM", Nonce: "rm-1"}
	try.To(Start(&PSM{Key: key}, Offered))

	m := try.To1(GetPSM(key))
	err := RmPSM(m)
	assert.NoError(err)

	_, err = GetPSM(key)
	assert.Error(err)
}

func Test_Close(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	Close()

	path := "close-" + dbPath
	err := Open(path)
	assert.NoError(err)
	Close()
	os.Remove(path)

	// the tests that follow still need the main db
	try.To(Open(dbPath))
}
