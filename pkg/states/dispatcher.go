package states

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/getmockd/provider/pkg/logging"
)

// Hook establishes a provider state. It runs to completion before the
// interaction that requested it is replayed.
type Hook func() error

// Observer is told the outcome of every Setup call with a non-empty name.
type Observer func(name string, err error)

// Dispatcher is a lookup table from state name to hook.
type Dispatcher struct {
	mu       sync.Mutex
	hooks    map[string]Hook
	log      *slog.Logger
	observer Observer
}

// New creates an empty dispatcher.
func New(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Dispatcher{
		hooks: make(map[string]Hook),
		log:   log,
	}
}

// Register adds hook under name, replacing any previous hook.
func (d *Dispatcher) Register(name string, hook Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks[name] = hook
}

// Observe sets the function told about each setup. It replaces any earlier one.
func (d *Dispatcher) Observe(fn Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = fn
}

// Has reports whether a hook is registered for name.
func (d *Dispatcher) Has(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.hooks[name]
	return ok
}

// Names returns the registered state names in sorted order.
func (d *Dispatcher) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.hooks))
	for name := range d.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Setup runs the hook registered for name. The empty name is an interaction
// without a provider state and does nothing. Hooks are serialized.
func (d *Dispatcher) Setup(name string) error {
	if name == "" {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.run(name)
	if d.observer != nil {
		d.observer(name, err)
	}
	return err
}

func (d *Dispatcher) run(name string) error {
	hook, ok := d.hooks[name]
	if !ok {
		d.log.Warn("unknown provider state", "state", name)
		return &UnknownStateError{Name: name}
	}
	if err := hook(); err != nil {
		return fmt.Errorf("setting up provider state %q: %w", name, err)
	}
	d.log.Debug("provider state established", "state", name)
	return nil
}

// Validate checks that every declared state has a hook. Duplicates and the
// empty name are ignored.
func (d *Dispatcher) Validate(declared []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	seen := make(map[string]bool, len(declared))
	var missing []string
	for _, name := range declared {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := d.hooks[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingStatesError{Names: missing}
	}
	return nil
}
