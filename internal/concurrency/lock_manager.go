package concurrency

import (
	"sync"
)

// LockManager handles named locks. The exchange coordinator uses one lock per
// account so concurrent swaps touching the same inventories serialize.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// LockPair locks the mutexes for two keys in lexicographic order, so two
// swaps over the same pair of accounts can never deadlock in a circular wait.
// The returned function unlocks both.
func (lm *LockManager) LockPair(a, b string) func() {
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	firstLock := lm.GetLock(first)
	firstLock.Lock()
	if first == second {
		return firstLock.Unlock
	}

	secondLock := lm.GetLock(second)
	secondLock.Lock()
	return func() {
		secondLock.Unlock()
		firstLock.Unlock()
	}
}
