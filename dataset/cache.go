package dataset

import (
	"sort"
	"sync"

	mdp "github.com/ajoshpratt/MolDynPlot"
)

type entry struct {
	done chan struct{}
	D    *Dataset
	err  error
}

//Cache holds the datasets built during a session, by key. It is safe for concurrent use.
//A dataset is built at most once per key while the build succeeds. Failed builds are
//not kept, so a later request builds again.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	builds  int
	hits    int
}

//NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

//GetOrCreate returns the dataset with key k, calling build to obtain it if it is not in the cache.
//Concurrent callers with the same key wait for the first one's build, and get its result.
//When the build fails each caller gets its own copy of the error, which it can decorate freely.
//Uncacheable keys are always built, and never stored.
func (C *Cache) GetOrCreate(k Key, build func() (*Dataset, error)) (*Dataset, error) {
	if !k.Cacheable() {
		C.mu.Lock()
		C.builds++
		C.mu.Unlock()
		return build()
	}
	C.mu.Lock()
	if e, ok := C.entries[k]; ok {
		C.hits++
		C.mu.Unlock()
		<-e.done
		return e.D, mdp.CloneError(e.err)
	}
	e := &entry{done: make(chan struct{})}
	C.entries[k] = e
	C.builds++
	C.mu.Unlock()

	C.run(k, e, build)
	return e.D, mdp.CloneError(e.err)
}

//run builds the entry e. A failed or panicking build is removed from the cache, and
//the waiters are released in every case. Panics are passed on to the caller.
func (C *Cache) run(k Key, e *entry, build func() (*Dataset, error)) {
	ok := false
	defer func() {
		if !ok && e.err == nil {
			e.D = nil
			e.err = mdp.NewError(mdp.ConfigurationError, "Cache.GetOrCreate", "the build of %s panicked", k)
		}
		if e.err != nil {
			C.mu.Lock()
			delete(C.entries, k)
			C.mu.Unlock()
		}
		close(e.done)
	}()
	e.D, e.err = build()
	ok = true
}

//Get returns the dataset with key k, if it has been built.
func (C *Cache) Get(k Key) (*Dataset, bool) {
	C.mu.Lock()
	e, ok := C.entries[k]
	C.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.done:
		return e.D, e.err == nil
	default:
		return nil, false
	}
}

//Len returns the number of datasets in the cache, including those being built.
func (C *Cache) Len() int {
	C.mu.Lock()
	defer C.mu.Unlock()
	return len(C.entries)
}

//Stats returns the number of builds started and the number of requests
//served by an existing entry.
func (C *Cache) Stats() (builds, hits int) {
	C.mu.Lock()
	defer C.mu.Unlock()
	return C.builds, C.hits
}

//Keys returns the keys in the cache, sorted.
func (C *Cache) Keys() []Key {
	C.mu.Lock()
	ret := make([]Key, 0, len(C.entries))
	for k := range C.entries {
		ret = append(ret, k)
	}
	C.mu.Unlock()
	sort.Slice(ret, func(i, j int) bool { return ret[i].Less(ret[j]) })
	return ret
}
