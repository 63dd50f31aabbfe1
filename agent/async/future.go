/*
Package async wraps the channel-based results of the indy SDK wrapper into
futures. A Future is set from a findy.Channel and consumed at most once; the
typed accessors block until the wrapped result arrives. Errors carried by the
result are thrown as err2 errors, which keeps collaborator call sites free of
result plumbing.
*/
package async

import (
	"sync"

	findy "github.com/findy-network/findy-wrapper-go"
	"github.com/findy-network/findy-wrapper-go/dto"
	"github.com/lainio/err2/try"
)

// State tells where the Future is in its life cycle.
type State uint32

const (
	empty State = iota
	triggered
	Consumed
)

// Future is a one-shot value arriving later from a findy.Channel.
type Future struct {
	On State
	V  interface{}

	ch findy.Channel
	lo sync.Mutex
}

// NewFuture turns an existing findy.Channel into a Future.
func NewFuture(ch findy.Channel) *Future {
	f := &Future{}
	f.SetChan(ch)
	return f
}

// SetChan arms the Future with a findy.Channel. A previously armed but
// unconsumed channel is drained first so its goroutine can finish.
func (f *Future) SetChan(ch findy.Channel) {
	f.lo.Lock()
	defer f.lo.Unlock()
	if f.On == triggered {
		_ = f.consume()
		f.On = empty
	}
	f.ch = ch
	f.On = triggered
}

// IsEmpty tells if the Future has never been armed.
func (f *Future) IsEmpty() bool {
	f.lo.Lock()
	defer f.lo.Unlock()
	return f.On == empty
}

// Result blocks until the wrapped result is available and returns it. Throws
// an err2 error when the result carries one.
func (f *Future) Result() (result *dto.Result) {
	f.lo.Lock()
	defer f.lo.Unlock()

	pseudo := f.consume()
	if pseudo != nil {
		r := pseudo.(dto.Result)
		result = &r
	}
	return
}

// consume reads the channel on first call and caches the value. Caller holds
// the lock.
func (f *Future) consume() interface{} {
	if f.On == triggered {
		r := <-f.ch
		f.On = Consumed
		f.V = r
		try.To(r.Err())
	}
	return f.V
}

// Typed accessors. These exist so that call sites can state which part of the
// wrapper result they mean, with zero values when the Future was never armed.

func (f *Future) Int() (i int) {
	r := f.Result()
	if r != nil {
		i = r.Handle()
	}
	return
}

func (f *Future) Strs() (s1, s2, s3 string) {
	r := f.Result()
	if r != nil {
		s1 = r.Str1()
		s2 = r.Str2()
		s3 = r.Str3()
	}
	return
}

func (f *Future) Str1() string {
	s1, _, _ := f.Strs()
	return s1
}

func (f *Future) Str2() string {
	_, s2, _ := f.Strs()
	return s2
}

func (f *Future) Bytes() (b []byte) {
	r := f.Result()
	if r != nil {
		b = r.Bytes()
	}
	return
}
