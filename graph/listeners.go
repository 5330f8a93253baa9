package graph

import (
	"sync"
	"time"
)

// Origin tells listeners what produced an edit.
type Origin string

const (
	// OriginCommit marks an edit committed by closing the outermost
	// update scope.
	OriginCommit Origin = "commit"

	// OriginUndo marks the notification fired when an edit is undone.
	OriginUndo Origin = "undo"

	// OriginRedo marks the notification fired when an edit is redone.
	OriginRedo Origin = "redo"
)

// ChangeEvent describes one committed, undone or redone edit. Changes are
// in execution order; for an undo the document was rolled back by running
// them in reverse, but the slice itself keeps its original order.
type ChangeEvent struct {
	// Edit is the edit that produced the event.
	Edit *UndoableEdit

	// Changes are the edit's changes in execution order.
	Changes []Change

	// Origin tells whether the edit was committed, undone or redone.
	Origin Origin

	// Timestamp is when the notification fired.
	Timestamp time.Time
}

// ChangeListener receives document change notifications. Listeners are
// invoked synchronously, in registration order, on the goroutine that
// closed the edit; a listener that mutates the model starts a fresh edit.
type ChangeListener interface {
	ModelChanged(event *ChangeEvent)
}

// ChangeListenerFunc is a function adapter for ChangeListener.
type ChangeListenerFunc func(event *ChangeEvent)

// ModelChanged implements the ChangeListener interface.
func (f ChangeListenerFunc) ModelChanged(event *ChangeEvent) {
	f(event)
}

// listenerList holds registered listeners behind a lock so registration is
// safe from any goroutine, even while the document goroutine is notifying.
type listenerList struct {
	mutex     sync.RWMutex
	listeners []ChangeListener
}

func (ll *listenerList) add(listener ChangeListener) {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()

	ll.listeners = append(ll.listeners, listener)
}

func (ll *listenerList) remove(listener ChangeListener) {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()

	for i, l := range ll.listeners {
		if l == listener {
			ll.listeners = append(ll.listeners[:i], ll.listeners[i+1:]...)
			break
		}
	}
}

func (ll *listenerList) snapshot() []ChangeListener {
	ll.mutex.RLock()
	defer ll.mutex.RUnlock()

	listeners := make([]ChangeListener, len(ll.listeners))
	copy(listeners, ll.listeners)
	return listeners
}

// AddChangeListener registers a listener for change events.
func (m *Model) AddChangeListener(listener ChangeListener) {
	if listener == nil {
		return
	}
	m.listeners.add(listener)
}

// RemoveChangeListener unregisters a previously added listener. Removal
// compares listener values, so only comparable listeners (struct pointers
// rather than ChangeListenerFunc adapters) can be removed.
func (m *Model) RemoveChangeListener(listener ChangeListener) {
	if listener == nil {
		return
	}
	m.listeners.remove(listener)
}

// ChangeListeners returns a copy of the registered listeners.
func (m *Model) ChangeListeners() []ChangeListener {
	return m.listeners.snapshot()
}

// fireChange delivers one event to every listener. Delivery is
// synchronous and ordered; a panicking listener is logged and skipped so
// it cannot tear down the edit cycle.
func (m *Model) fireChange(edit *UndoableEdit, origin Origin) {
	event := &ChangeEvent{
		Edit:      edit,
		Changes:   edit.Changes(),
		Origin:    origin,
		Timestamp: time.Now(),
	}
	for _, listener := range m.listeners.snapshot() {
		m.deliver(listener, event)
	}
}

func (m *Model) deliver(listener ChangeListener, event *ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("change listener panicked: %v", r)
		}
	}()
	listener.ModelChanged(event)
}
