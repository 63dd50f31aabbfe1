package async

import (
	"reflect"
	"testing"

	findy "github.com/findy-network/findy-wrapper-go"
	indyDto "github.com/findy-network/findy-wrapper-go/dto"
	"github.com/lainio/err2"
)

func fillChannel(handle int, ch findy.Channel) {
	r := indyDto.Result{Data: indyDto.Data{Handle: handle}}
	ch <- r
}

func fillChannelWithError(ch findy.Channel) {
	r := indyDto.Result{
		Er: indyDto.Err{
			Error: "TEST_ERROR",
			Code:  100,
		},
	}
	ch <- r
}

func TestFutureConsumeAndRearm(t *testing.T) {
	const handle = 1

	f := Future{}
	ch := make(findy.Channel, 1)

	if !f.IsEmpty() {
		t.Error("unarmed future should be empty")
	}
	if r := f.Result(); r != nil {
		t.Errorf("unarmed future Result() = %v, want nil", r)
	}

	// arming and filling order must not matter with a buffered channel
	f.SetChan(ch)
	fillChannel(handle, ch)

	for i := 0; i < 3; i++ { // consumed value stays readable
		if got := f.Int(); got != handle {
			t.Errorf("Future.Int() = %v, want %v", got, handle)
		}
	}

	// re-arm with a new channel, old value is replaced
	fillChannel(2, ch)
	f.SetChan(ch)
	if got := f.Int(); got != 2 {
		t.Errorf("Future.Int() after SetChan = %v, want 2", got)
	}
}

func TestFutureErrorResult(t *testing.T) {
	readValue := func(f *Future) (thrown bool) {
		defer err2.Catch(func(err error) {
			thrown = true
		})
		f.Result()
		return false
	}

	f := Future{}
	ch := make(findy.Channel, 1)
	f.SetChan(ch)
	fillChannelWithError(ch)

	if !readValue(&f) {
		t.Error("error result must be thrown on first consume")
	}
	// the consumed error result stays cached
	if !readValue(&f) {
		t.Error("error result must be thrown on later reads too")
	}
}

func TestFutureAccessors(t *testing.T) {
	tests := []struct {
		name   string
		v      interface{}
		wantI  int
		wantS1 string
		wantS2 string
		wantS3 string
	}{
		{"zero", indyDto.Result{}, 0, "", "", ""},
		{"handle", indyDto.Result{Data: indyDto.Data{Handle: 3}}, 3, "", "", ""},
		{
			"strings",
			indyDto.Result{Data: indyDto.Data{Str1: "str1", Str2: "str2", Str3: "str3"}},
			0, "str1", "str2", "str3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Future{On: Consumed, V: tt.v}
			if got := f.Int(); got != tt.wantI {
				t.Errorf("Future.Int() = %v, want %v", got, tt.wantI)
			}
			s1, s2, s3 := f.Strs()
			if s1 != tt.wantS1 || s2 != tt.wantS2 || s3 != tt.wantS3 {
				t.Errorf("Future.Strs() = %v %v %v, want %v %v %v",
					s1, s2, s3, tt.wantS1, tt.wantS2, tt.wantS3)
			}
		})
	}
}

func TestFutureResultPointer(t *testing.T) {
	result := indyDto.Result{Data: indyDto.Data{Handle: 1}}
	f := &Future{On: Consumed, V: result}
	if got := f.Result(); !reflect.DeepEqual(*got, result) {
		t.Errorf("Future.Result() = %v, want %v", got, result)
	}
}
