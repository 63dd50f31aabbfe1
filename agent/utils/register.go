package utils

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type (
	keyName   = string
	valueType = []string
)

type regMapType map[keyName]valueType

// Reg is a persistent register of the actors this agency serves. The key is
// the actor name and the value holds whatever identity facts the caller wants
// to find again over restarts, typically DID and verkey.
type Reg struct {
	r regMapType
	l sync.Mutex
}

func newReg(data []byte) (r *regMapType) {
	r = new(regMapType)
	try.To(json.Unmarshal(data, r))
	return
}

func (r *Reg) Exist(key keyName) bool {
	r.l.Lock()
	defer r.l.Unlock()
	_, ok := r.r[key]
	return ok
}

func (r *Reg) Find(key keyName) (v []string, found bool) {
	r.l.Lock()
	defer r.l.Unlock()
	v, found = r.r[key]
	return
}

func (r *Reg) Add(key keyName, value ...string) {
	glog.V(3).Infof("Actor register add: %s -> %s\n", key, value)
	r.l.Lock()
	defer r.l.Unlock()
	r.r[key] = value
}

func (r *Reg) Load(filename string) (err error) {
	defer err2.Handle(&err, "load register")

	r.l.Lock()
	defer r.l.Unlock()

	if filename == "" {
		r.r = make(regMapType)
		return nil
	}

	data, err := os.ReadFile(filename)
	if err != nil && os.IsNotExist(err) {
		try.To(os.WriteFile(filename, []byte("{}"), 0644))
		data, err = os.ReadFile(filename)
	}
	try.To(err)

	r.r = *newReg(data)
	return nil
}

func (r *Reg) Save(filename string) (err error) {
	r.l.Lock()
	defer r.l.Unlock()

	var data []byte
	if data, err = json.MarshalIndent(r.r, "", "\t"); err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

func (r *Reg) EnumValues(handler func(k keyName, v []string) bool) {
	r.l.Lock()
	defer r.l.Unlock()
	for k, v := range r.r {
		if !handler(k, v) {
			break
		}
	}
}

func (r *Reg) Reset(filename string) (err error) {
	defer err2.Handle(&err, "resetting")
	try.To(r.Load(""))
	try.To(r.Save(filename))
	return err
}
