package service

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// ContestLocks serializes every mutation path for one contest: the
// single-user standing refresh after a new submission, the contest-wide
// recompute and the rating finalize all take the same lock. Standing rows
// are single-writer per contest as a result; concurrent finalize calls are
// impossible by construction.
type ContestLocks struct {
	locks *xsync.MapOf[int64, *sync.Mutex]
}

func NewContestLocks() *ContestLocks {
	return &ContestLocks{locks: xsync.NewMapOf[int64, *sync.Mutex]()}
}

// Lock blocks until the contest lock is held and returns the unlock func.
func (l *ContestLocks) Lock(contestID int64) func() {
	mu, _ := l.locks.LoadOrCompute(contestID, func() *sync.Mutex { return &sync.Mutex{} })
	mu.Lock()
	return mu.Unlock
}
