package booking

import (
	"context"
	"sync"
	"time"

	"github.com/ukydev/scooter-rental/internal/db"
)

// Locker serializes booking writes per bike. Implementations must return
// db.ErrLockTimeout when the lock cannot be taken in time.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// LocalLocker is a keyed mutex for a single process.
type LocalLocker struct {
	Wait time.Duration

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker returns a locker that gives up after wait.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{Wait: wait, slots: map[string]*slot{}}
}

// Lock takes the lock on key or returns db.ErrLockTimeout once the wait runs
// out. The returned func releases it.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	if l.Wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Wait)
		defer cancel()
	}

	l.mu.Lock()
	if l.slots == nil {
		l.slots = map[string]*slot{}
	}
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				l.release(key, s)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, s)
		return nil, db.ErrLockTimeout
	}
}

func (l *LocalLocker) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
