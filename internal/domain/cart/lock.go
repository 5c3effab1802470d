package cart

import "sync"

// userLocks serializes cart operations per customer. Every mutating service
// call for the same username runs under the same mutex, which closes the
// read-modify-write races between concurrent requests (duplicate line items,
// lost total updates) that per-statement store atomicity cannot.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for user and returns the unlock func.
func (ul *userLocks) lock(user string) func() {
	ul.mu.Lock()
	m, ok := ul.locks[user]
	if !ok {
		m = &sync.Mutex{}
		ul.locks[user] = m
	}
	ul.mu.Unlock()

	m.Lock()
	return m.Unlock
}
