package ssi

import "sync"

// Cache keeps DIDs in memory per agent because they are slow to load from
// the wallet. The lock is for the map only, the DIDs themselves guard
// their own state.
type Cache struct {
	cache map[string]*DID
	sync.RWMutex
}

type mapType map[string]*DID

// Add is for the cases when DID is ready, like we know the DID's name
// already.
func (c *Cache) Add(d *DID) {
	c.LazyAdd(d.Did(), d)
}

// LazyAdd is for the cases when we know the DID's name but the key is not
// yet fetched i.e. DID is launched to get key. An existing entry with key
// data wins over the new one.
func (c *Cache) LazyAdd(s string, d *DID) {
	c.Lock()
	defer c.Unlock()

	if c.cache == nil {
		c.cache = make(map[string]*DID)
	}
	old, found := c.cache[s]
	if found && old.hasKeyData() {
		return
	}
	c.cache[s] = d
}

// Get returns the DID by name from the cache. With sure set a missing DID
// returns nil and the caller checks it, without it a missing DID is a
// programming error and panics.
func (c *Cache) Get(s string, sure bool) *DID {
	c.RLock()
	defer c.RUnlock()

	if !sure {
		v, e := c.cache[s]
		if !e {
			panic("value not exist")
		}
		return v
	}
	return c.cache[s]
}

func (c *Cache) Clone() Cache {
	c.Lock()
	defer c.Unlock()

	nc := make(map[string]*DID)
	cloneMap(nc, c.cache)

	return Cache{
		cache: nc,
	}
}

func cloneMap(tgt, src mapType) {
	for k, v := range src {
		tgt[k] = v
	}
}
