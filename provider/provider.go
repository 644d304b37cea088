// Package provider defines file backed feature sources. Drivers register
// themselves from init and are instantiated by name with For.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-spatial/geom"
)

// Feature is a single record read from a source.
type Feature struct {
	ID       uint64
	Geometry geom.Geometry
	SRID     uint64
	Tags     map[string]interface{}
}

// Collection is an opened feature source.
type Collection interface {
	// Layers returns information about the various layers the source supports
	Layers() ([]LayerInfo, error)
	// Features calls fn for every feature of the layer, stopping at the first error.
	Features(ctx context.Context, layerID string, fn func(f *Feature) error) error
	// Close releases the source.
	Close() error
}

// InitFunc opens a collection from its config.
type InitFunc func(config Config) (Collection, error)

var (
	driversMu sync.RWMutex
	drivers   = map[string]InitFunc{}
)

// Register makes a driver available under name. Registering a name twice is an error.
func Register(name string, init InitFunc) error {
	driversMu.Lock()
	defer driversMu.Unlock()

	if _, ok := drivers[name]; ok {
		return ErrDriverAlreadyRegistered{Name: name}
	}
	drivers[name] = init
	return nil
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// For opens a collection with the named driver.
func For(name string, config Config) (Collection, error) {
	driversMu.RLock()
	init, ok := drivers[name]
	driversMu.RUnlock()

	if !ok {
		return nil, ErrUnknownDriver{Name: name, Known: Drivers()}
	}
	return init(config)
}

// ErrDriverAlreadyRegistered is returned by Register for a duplicate name.
type ErrDriverAlreadyRegistered struct {
	Name string
}

func (e ErrDriverAlreadyRegistered) Error() string {
	return fmt.Sprintf("provider: driver %q already registered", e.Name)
}

// ErrUnknownDriver is returned by For for a name nobody registered.
type ErrUnknownDriver struct {
	Name  string
	Known []string
}

func (e ErrUnknownDriver) Error() string {
	return fmt.Sprintf("provider: no driver named %q, known drivers: %v", e.Name, e.Known)
}
