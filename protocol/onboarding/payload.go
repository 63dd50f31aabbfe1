package onboarding

// Request is the plaintext connection request an anchor sends to the
// onboardee's handshake endpoint. It is the only protocol message of the
// system that travels unencrypted: before it arrives there is no shared
// key to crypt with. It carries everything the onboardee needs to build
// its half of the pairwise: who the anchor is, the anchor's fresh pairwise
// DID and verkey, and where the anchor listens.
type Request struct {
	Label    string `json:"label"`
	DID      string `json:"did"`
	VerKey   string `json:"verkey"`
	Endpoint string `json:"endpoint"`
	Nonce    string `json:"nonce"`
}

// Response is the onboardee's answer. It travels authcrypted with the
// anchor's pairwise verkey, so a successful unpack already proves the
// sender holds the private key of the verkey the envelope was packed
// with. The declared VerKey must match that envelope key, see Onboard.
type Response struct {
	Label    string `json:"label"`
	DID      string `json:"did"`
	VerKey   string `json:"verkey"`
	Endpoint string `json:"endpoint"`
	Nonce    string `json:"nonce"`
}
