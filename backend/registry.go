// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"sync"

	"github.com/gogpu/densityfield/render"
)

// registry holds registered pool factories.
var (
	registryMu sync.RWMutex
	pools      = make(map[string]PoolFactory)
	// Priority order for pool selection (first available wins).
	poolPriority = []string{BackendWGPU, BackendSoftware}
)

func init() {
	Register(BackendSoftware, func() (render.Pool, error) {
		return render.NewSoftPool(), nil
	})
}

// Register registers a pool factory with the given name.
// If a factory with the same name is already registered, it is replaced.
func Register(name string, factory PoolFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	pools[name] = factory
}

// Unregister removes a pool factory from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(pools, name)
}

// Available returns a list of registered pool names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(pools))
	for name := range pools {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a pool with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := pools[name]
	return ok
}

// Get creates a pool instance by name.
func Get(name string) (render.Pool, error) {
	registryMu.RLock()
	factory, ok := pools[name]
	registryMu.RUnlock()

	if !ok {
		return nil, ErrBackendNotAvailable
	}
	return factory()
}

// Default creates the best available pool based on priority.
// Priority order: wgpu > software.
func Default() (render.Pool, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range poolPriority {
		if factory, ok := pools[name]; ok {
			if p, err := factory(); err == nil && p != nil {
				return p, nil
			}
		}
	}

	// Fallback: first factory that succeeds.
	for _, factory := range pools {
		if p, err := factory(); err == nil && p != nil {
			return p, nil
		}
	}

	return nil, ErrBackendNotAvailable
}
