package namespace

import "sync"

// dirLocks serializes mutating operations per physical directory. A nil
// *dirLocks disables locking.
type dirLocks struct {
	mu    sync.Mutex
	locks map[string]*dirLock
}

type dirLock struct {
	sync.Mutex
	refs int
}

func newDirLocks() *dirLocks {
	return &dirLocks{locks: make(map[string]*dirLock)}
}

// lock blocks until dir is held and returns the release func.
func (l *dirLocks) lock(dir string) func() {
	if l == nil {
		return func() {}
	}

	l.mu.Lock()
	dl, ok := l.locks[dir]
	if !ok {
		dl = &dirLock{}
		l.locks[dir] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.Lock()
	return func() {
		dl.Unlock()

		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, dir)
		}
		l.mu.Unlock()
	}
}
