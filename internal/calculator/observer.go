package calculator

import (
	"sync"
)

// ProgressObserver receives progress notifications.
type ProgressObserver interface {
	// Update is called when progress changes.
	//
	// Parameters:
	//   - calcIndex: The calculator instance identifier (for concurrent calculations)
	//   - progress: The normalized progress value (0.0 to 1.0)
	Update(calcIndex int, progress float64)
}

// ProgressSubject manages observer registration and notification for
// progress events. It is safe for concurrent use.
type ProgressSubject struct {
	observers []ProgressObserver
	mu        sync.RWMutex
}

// NewProgressSubject creates a subject with no observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{
		observers: make([]ProgressObserver, 0),
	}
}

// Register adds an observer. Observers are notified in registration order.
// A nil observer is ignored.
func (s *ProgressSubject) Register(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Unregister removes an observer. Unknown observers are ignored.
func (s *ProgressSubject) Unregister(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.observers {
		if o == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify sends a progress update to all registered observers synchronously.
func (s *ProgressSubject) Notify(calcIndex int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, observer := range s.observers {
		observer.Update(calcIndex, progress)
	}
}

// ObserverCount returns the number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// AsProgressReporter returns a ProgressReporter that notifies all observers
// on behalf of calculator calcIndex.
func (s *ProgressSubject) AsProgressReporter(calcIndex int) ProgressReporter {
	return func(progress float64) {
		s.Notify(calcIndex, progress)
	}
}
