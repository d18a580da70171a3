// Package timezones validates IANA zone names for user preferences.
package timezones

import (
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

var (
	mu    sync.RWMutex
	cache = map[string]bool{}
)

// Valid reports whether id names a loadable IANA zone. "Local" and the
// empty string are rejected since they depend on the host.
func Valid(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || id == "Local" {
		return false
	}
	mu.RLock()
	ok, seen := cache[id]
	mu.RUnlock()
	if seen {
		return ok
	}
	_, err := time.LoadLocation(id)
	ok = err == nil
	mu.Lock()
	cache[id] = ok
	mu.Unlock()
	return ok
}
