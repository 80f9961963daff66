package eviction

import (
	"fmt"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Policy)
)

// Register registers a new eviction policy factory under the given name.
func Register(name string, factory func() Policy) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New returns a fresh instance of the policy registered under name.
func New(name string) (Policy, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("eviction policy not found: %s", name)
	}
	return factory(), nil
}
