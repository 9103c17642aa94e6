package errcode

import (
	"fmt"
	"sync"
)

// Registry guards against two components claiming the same error code.
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string // code -> module:msgKey
}

var globalRegistry = &Registry{
	codes: make(map[int]string),
}

// Register records the error code in the global registry and returns the
// error unchanged, so package-level error vars can be declared as
// `var ErrX = errcode.Register(errcode.New(...))`.
// Registering the same code with a different key panics at init time.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register records an error code. Idempotent for identical registrations.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := err.Code()
	key := fmt.Sprintf("%s:%s", err.Module(), err.MsgKey())

	if existing, ok := r.codes[code]; ok {
		if existing != key {
			panic(fmt.Sprintf(
				"error code conflict: %d already registered as %s, cannot register as %s",
				code, existing, key,
			))
		}
		return err
	}

	r.codes[code] = key
	return err
}

// Count returns the number of registered codes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// All returns a copy of every registered code.
func (r *Registry) All() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make(map[int]string, len(r.codes))
	for k, v := range r.codes {
		codes[k] = v
	}
	return codes
}

// RegisteredCodes returns every code known to the global registry.
func RegisteredCodes() map[int]string {
	return globalRegistry.All()
}
