package connector

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/askdb/askdb/internal/errors"
)

// Factory constructs an unconnected Connector from a Config.
type Factory func(cfg Config) Connector

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a connector factory available under the given kind.
// Implementations self-register from init().
func Register(kind string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[kind] = factory
}

// Get returns the factory registered for a kind.
func Get(kind string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := registry[kind]

	return factory, ok
}

// IsRegistered reports whether a kind has a registered factory.
func IsRegistered(kind string) bool {
	_, ok := Get(kind)
	return ok
}

// ListKinds returns the registered kinds in sorted order.
func ListKinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)

	return kinds
}

// UnknownKindError reports a data-source kind with no registered connector.
type UnknownKindError struct {
	Kind      string
	Available []string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf(
		"unknown data source kind %q (available: %s); check the ASKDB_DB_KIND setting",
		e.Kind, strings.Join(e.Available, ", "),
	)
}

// New constructs a connector for the configured kind. Unsupported kinds fail
// here, at construction, never at query time.
func New(cfg Config) (Connector, error) {
	if cfg.Kind == "" {
		return nil, errors.New(errors.ErrTypeConfiguration, "data source kind not specified")
	}

	factory, ok := Get(cfg.Kind)
	if !ok {
		return nil, errors.Wrap(
			&UnknownKindError{Kind: cfg.Kind, Available: ListKinds()},
			errors.ErrTypeConfiguration,
			"unsupported data source",
		)
	}

	return factory(cfg), nil
}
