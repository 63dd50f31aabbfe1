package psm

import "fmt"

const (
	mockStateDID   = "TEST"
	mockStateNonce = "1234"
)

func testPSM(ts int64) *PSM {
	var states []State
	if ts != 0 {
		states = []State{{
			Timestamp: ts,
			Phase:     Offered,
		}}
	}
	nonce := mockStateNonce
	if ts != 0 {
		nonce = fmt.Sprintf("%s%d", nonce, ts)
	}
	return &PSM{
		Key: StateKey{
			DID:   mockStateDID,
			Nonce: nonce,
		},
		Protocol:    ProtocolIssue,
		StartedByUs: true,
		PeerDID:     "PEER",
		SchemaID:    "T3NDjvbEeYAwVZCsh52Ads:2:degree:1.0",
		States:      states,
	}
}
