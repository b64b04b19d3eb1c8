// Package claim tracks which peripherals are held by live drivers so two
// instances in one process cannot program the same pin, PWM slot or DMA
// channel. The registry is plain shared state behind one mutex; tests
// construct private registries to stay independent of each other.
package claim

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClaimed reports a peripheral already held by another owner.
var ErrClaimed = errors.New("claim: peripheral already in use")

// Kind is the peripheral class of a claim.
type Kind uint8

const (
	GPIO Kind = iota
	PWM
	DMA
)

func (k Kind) String() string {
	switch k {
	case GPIO:
		return "gpio"
	case PWM:
		return "pwm"
	case DMA:
		return "dma"
	}
	return "unknown"
}

// Resource names one claimable peripheral.
type Resource struct {
	Kind Kind
	ID   int
}

func (r Resource) String() string { return fmt.Sprintf("%s %d", r.Kind, r.ID) }

// Registry is a set of held peripherals.
type Registry struct {
	mu   sync.Mutex
	held map[Resource]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{held: make(map[Resource]struct{})}
}

var (
	sharedOnce sync.Once
	shared     *Registry
)

// Shared returns the process-wide registry used by default.
func Shared() *Registry {
	sharedOnce.Do(func() { shared = NewRegistry() })
	return shared
}

// Claim acquires every resource or none: on the first conflict it rolls
// back the ones already taken and returns ErrClaimed naming the loser.
func (r *Registry) Claim(resources ...Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, res := range resources {
		if _, taken := r.held[res]; taken {
			for _, undo := range resources[:i] {
				delete(r.held, undo)
			}
			return fmt.Errorf("%w: %s", ErrClaimed, res)
		}
		r.held[res] = struct{}{}
	}
	return nil
}

// Release drops the given resources. Releasing something not held is a
// no-op, which keeps teardown paths idempotent.
func (r *Registry) Release(resources ...Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range resources {
		delete(r.held, res)
	}
}

// Held reports whether a resource is currently claimed.
func (r *Registry) Held(res Resource) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.held[res]
	return ok
}
