package service

// Addr is the public access point of an agent: where to send and with
// which key to encrypt.
type Addr struct {
	Endp string `json:"endpoint"`
	Key  string `json:"verkey"`
}

func (a Addr) Valid() bool {
	return a.Endp != "" && a.Key != ""
}
