package chi

import (
	"hash/maphash"
	"sync"
)

const lockStripes = 256

// userLocks serializes turns per user key with a fixed set of striped
// mutexes, so memory does not grow with the number of users.
type userLocks struct {
	seed    maphash.Seed
	stripes [lockStripes]sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{seed: maphash.MakeSeed()}
}

func (l *userLocks) lock(key string) (unlock func()) {
	m := &l.stripes[maphash.String(l.seed, key)%lockStripes]
	m.Lock()
	return m.Unlock
}
