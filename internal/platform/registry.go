package platform

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Searcher)
	mu       sync.RWMutex
)

// Register makes s available under its name, replacing any previous entry.
func Register(s Searcher) {
	mu.Lock()
	defer mu.Unlock()
	registry[s.Name()] = s
}

// Get looks up a registered searcher.
func Get(name string) (Searcher, error) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("search provider %q not registered", name)
	}
	return s, nil
}

// List returns registered provider names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
