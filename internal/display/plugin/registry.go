package plugin

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry is the process-wide table of loaded plugins keyed by
// driver-type tag. It is created at startup and torn down once at
// shutdown, and must outlive every adapter derived from its plugins -
// the underlying shared objects are never unmapped, so that rule is
// structural, but Close marks the registry unusable for new lookups.
type Registry struct {
	mu sync.Mutex

	log     logrus.FieldLogger
	plugins map[string]*LoadedPlugin
	order   []string
	closed  bool

	// load resolves and loads a plugin for a driver type. Replaceable
	// in tests.
	load func(driverType string) (*LoadedPlugin, error)
}

// NewRegistry creates an empty plugin registry.
func NewRegistry(log logrus.FieldLogger) *Registry {
	loader := NewLoader(log)
	return &Registry{
		log:     log,
		plugins: make(map[string]*LoadedPlugin),
		load:    loader.LoadByDriverType,
	}
}

// Open returns the plugin for a driver type, loading it on first use.
// A second plugin for the same tag is never loaded; the original stays
// authoritative for the life of the registry.
func (r *Registry) Open(driverType string) (*LoadedPlugin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	if lp, ok := r.plugins[driverType]; ok {
		return lp, nil
	}

	lp, err := r.load(driverType)
	if err != nil {
		return nil, err
	}

	r.plugins[driverType] = lp
	r.order = append(r.order, driverType)
	r.log.WithFields(logrus.Fields{
		"driver_type": driverType,
		"plugin":      lp.Metadata().Name,
		"version":     lp.Metadata().Version,
	}).Info("registered display driver plugin")
	return lp, nil
}

// Get returns an already loaded plugin without loading.
func (r *Registry) Get(driverType string) (*LoadedPlugin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lp, ok := r.plugins[driverType]
	return lp, ok
}

// DriverTypes returns the loaded driver-type tags in sorted order.
func (r *Registry) DriverTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	tags := make([]string, len(r.order))
	copy(tags, r.order)
	sort.Strings(tags)
	return tags
}

// Close marks the registry closed. Loaded tables remain valid for
// adapters still holding them; only new Open calls are refused.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.log.WithField("plugins", len(r.plugins)).Debug("plugin registry closed")
}
