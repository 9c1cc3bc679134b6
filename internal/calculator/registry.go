package calculator

// CalculatorFactory is not mockable with mockgen because Register uses the
// unexported coreCalculator type. Use DefaultFactory in tests.

import (
	"fmt"
	"sort"
	"sync"
)

// CalculatorFactory creates and caches Calculator instances by backend name.
type CalculatorFactory interface {
	// Create returns a fresh Calculator, or an error if name is unknown.
	Create(name string) (Calculator, error)

	// Get returns a cached Calculator, or an error if name is unknown.
	Get(name string) (Calculator, error)

	// List returns the registered names, sorted.
	List() []string

	// Register adds or replaces a backend.
	Register(name string, creator func() coreCalculator) error

	// GetAll returns every registered calculator.
	GetAll() map[string]Calculator
}

// DefaultFactory is a thread-safe registry of backend creators that caches
// the calculators it builds.
type DefaultFactory struct {
	mu          sync.RWMutex
	creators    map[string]func() coreCalculator
	calculators map[string]Calculator
}

// NewDefaultFactory creates a factory with the built-in backends:
//   - "native": pkg/bigint (schoolbook, copy-on-write limbs)
//   - "mathbig": the standard library's math/big
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:    make(map[string]func() coreCalculator),
		calculators: make(map[string]Calculator),
	}

	_ = f.Register("native", func() coreCalculator { return newNativeCore() })
	_ = f.Register("mathbig", func() coreCalculator { return newMathBigCore() })

	return f
}

// Register adds a backend. The creator is called lazily. Registering an
// existing name replaces it and drops the cached instance.
func (f *DefaultFactory) Register(name string, creator func() coreCalculator) error {
	if creator == nil {
		return fmt.Errorf("calculator %s: nil creator", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.calculators, name)
	return nil
}

// Create always builds a new Calculator, bypassing the cache.
//
// Parameters:
//   - name: The backend name.
//
// Returns:
//   - Calculator: A new Calculator instance.
//   - error: An error if the backend is not registered.
func (f *DefaultFactory) Create(name string) (Calculator, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return NewCalculator(creator()), nil
}

// Get returns the cached Calculator for name, building it on first use.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	f.mu.RLock()
	if calc, exists := f.calculators[name]; exists {
		f.mu.RUnlock()
		return calc, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if calc, exists := f.calculators[name]; exists {
		return calc, nil
	}

	creator, ok := f.creators[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}

	calc := NewCalculator(creator())
	f.calculators[name] = calc
	return calc, nil
}

// List returns the registered backend names in alphabetical order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns a copy of the name to Calculator map, building any
// calculator not created yet.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.calculators[name]; !exists {
			f.calculators[name] = NewCalculator(creator())
		}
	}

	result := make(map[string]Calculator, len(f.calculators))
	for name, calc := range f.calculators {
		result[name] = calc
	}
	return result
}

// MustGet is like Get but panics if the backend is not registered.
func (f *DefaultFactory) MustGet(name string) Calculator {
	calc, err := f.Get(name)
	if err != nil {
		panic(fmt.Sprintf("calculator: required backend not found: %s", name))
	}
	return calc
}

// Has reports whether name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}

// RegisterCalculator registers a backend in the global factory.
func RegisterCalculator(name string, creator func() coreCalculator) error {
	return globalFactory.Register(name, creator)
}
