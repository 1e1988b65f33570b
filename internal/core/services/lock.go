package services

import (
	"fmt"
	"sync"
	"time"

	"clinicq/internal/core/domain"
)

// defaultLockTimeout bounds how long a mutating operation waits for its
// queue's critical section before failing with ErrBusy
const defaultLockTimeout = 2 * time.Second

// lockArena hands out one exclusive slot per key (doctor, department or
// token scope). Slots are created on first use and reclaimed once no
// operation references them, so idle doctors cost nothing.
type lockArena struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newLockArena() *lockArena {
	return &lockArena{slots: make(map[string]*lockSlot)}
}

// acquire blocks up to timeout for the key's exclusive slot. On success the
// returned release function must be called exactly once.
func (a *lockArena) acquire(key string, timeout time.Duration) (func(), error) {
	a.mu.Lock()
	slot, ok := a.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		a.slots[key] = slot
	}
	slot.refs++
	a.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			a.drop(key, slot)
		}, nil
	case <-timer.C:
		a.drop(key, slot)
		return nil, domain.ErrBusy
	}
}

func (a *lockArena) drop(key string, slot *lockSlot) {
	a.mu.Lock()
	slot.refs--
	if slot.refs == 0 {
		delete(a.slots, key)
	}
	a.mu.Unlock()
}

// doctorLockKey serializes all mutations on one doctor's queue
func doctorLockKey(doctorID uint) string {
	return fmt.Sprintf("doctor:%d", doctorID)
}

// departmentLockKey serializes doctor-less check-ins per department
func departmentLockKey(departmentID uint) string {
	return fmt.Sprintf("department:%d", departmentID)
}
