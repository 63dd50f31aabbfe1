package ssi

import (
	"reflect"
	"testing"
)

func TestCache_lazyAdd(t *testing.T) {
	type fields struct {
		cache map[string]*DID
	}
	type args struct {
		s string
		d *DID
	}
	tests := []struct {
		name   string
		fields fields
		args   args
	}{
		{"1st", fields{nil}, args{"GDW4o4w1BNfNXKeB9RPSXk", NewDid("GDW4o4w1BNfNXKeB9RPSXk", "9LR6WsSBDgQExdw5WoS5mawUcQ6FPrWuOPGnHmrbRSZ8")}},
		{"2nd", fields{nil}, args{"PUP1eDYbzFPwVBJrpnQyxW", NewDid("PUP1eDYbzFPwVBJrpnQyxW", "DKdRN1hEcDLKLQ39jKKspnqgCgo56LcNCrtLVNvXUPPq")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(*testing.T) {
			c := &Cache{
				cache: tt.fields.cache,
			}
			c.LazyAdd(tt.args.s, tt.args.d)
		})
	}
}

func TestCache_keyDataWins(t *testing.T) {
	c := Cache{}
	withKey := NewDid("GDW4o4w1BNfNXKeB9RPSXk", "9LR6WsSBDgQExdw5WoS5mawUcQ6FPrWuOPGnHmrbRSZ8")
	c.Add(withKey)

	// a later entry without key data must not replace the one with it
	c.LazyAdd("GDW4o4w1BNfNXKeB9RPSXk", NewDid("GDW4o4w1BNfNXKeB9RPSXk", ""))

	got := c.Get("GDW4o4w1BNfNXKeB9RPSXk", true)
	if got.VerKey() != withKey.VerKey() {
		t.Errorf("Cache.LazyAdd() replaced DID with key data")
	}
}

func TestCache_get(t *testing.T) {
	c := Cache{}
	c.Add(NewDid("GDW4o4w1BNfNXKeB9RPSXk", "9LR6WsSBDgQExdw5WoS5mawUcQ6FPrWuOPGnHmrbRSZ8"))
	c.Add(NewDid("PUP1eDYbzFPwVBJrpnQyxW", "DKdRN1hEcDLKLQ39jKKspnqgCgo56LcNCrtLVNvXUPPq"))

	type fields struct {
		cache map[string]*DID
	}
	type args struct {
		s string
	}
	tests := []struct {
		name   string
		fields fields
		args   args
		want   *DID
	}{
		{"1", fields{c.cache}, args{"GDW4o4w1BNfNXKeB9RPSXk"},
			NewDid("GDW4o4w1BNfNXKeB9RPSXk", "9LR6WsSBDgQExdw5WoS5mawUcQ6FPrWuOPGnHmrbRSZ8")},
		{"2", fields{c.cache}, args{"PUP1eDYbzFPwVBJrpnQyxW"},
			NewDid("PUP1eDYbzFPwVBJrpnQyxW", "DKdRN1hEcDLKLQ39jKKspnqgCgo56LcNCrtLVNvXUPPq")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cache{
				cache: tt.fields.cache,
			}
			if got := c.Get(tt.args.s, false); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Cache.get() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCache_missingIsNil(t *testing.T) {
	c := Cache{}
	c.Add(NewDid("GDW4o4w1BNfNXKeB9RPSXk", "9LR6WsSBDgQExdw5WoS5mawUcQ6FPrWuOPGnHmrbRSZ8"))

	if got := c.Get("unknown", true); got != nil {
		t.Errorf("Cache.Get() = %v, want nil", got)
	}
}
