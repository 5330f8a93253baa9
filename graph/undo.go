package graph

import (
	"github.com/smallnest/graphdoc/log"
)

// UndoableEdit groups the changes of one update scope into a single
// history step. Undo runs the changes in reverse order, redo in forward
// order; both rely on every Change being self-inverting, so the edit
// never stores before and after images of the document.
type UndoableEdit struct {
	model   *Model
	changes []Change
	undone  bool
	redone  bool
}

func (m *Model) newUndoableEdit() *UndoableEdit {
	return &UndoableEdit{model: m}
}

func (e *UndoableEdit) add(change Change) {
	e.changes = append(e.changes, change)
}

// Empty reports whether the edit holds no changes.
func (e *UndoableEdit) Empty() bool { return len(e.changes) == 0 }

// Changes returns a copy of the edit's changes in execution order.
func (e *UndoableEdit) Changes() []Change {
	changes := make([]Change, len(e.changes))
	copy(changes, e.changes)
	return changes
}

// Undo rolls the edit back by executing its changes in reverse order,
// then notifies the model's listeners with OriginUndo. Undoing an already
// undone edit only re-notifies.
func (e *UndoableEdit) Undo() {
	if !e.undone {
		for i := len(e.changes) - 1; i >= 0; i-- {
			e.changes[i].Execute()
		}
		e.undone = true
		e.redone = false
	}
	e.model.fireChange(e, OriginUndo)
}

// Redo applies the edit again by executing its changes in forward order,
// then notifies the model's listeners with OriginRedo.
func (e *UndoableEdit) Redo() {
	if !e.redone {
		for _, change := range e.changes {
			change.Execute()
		}
		e.redone = true
		e.undone = false
	}
	e.model.fireChange(e, OriginRedo)
}

// DefaultHistorySize is the edit capacity of an UndoManager created with a
// non-positive size.
const DefaultHistorySize = 100

// UndoManager keeps a linear history of edits with a cursor between the
// undoable past and the redoable future. Committing a new edit while
// redoable edits exist drops them; the history never branches.
//
// Wire a manager to a document with Model.AddChangeListener: it records
// every committed edit and ignores the notifications its own undo and
// redo calls produce. Like the Model itself it expects all calls from the
// single document goroutine.
type UndoManager struct {
	history        []*UndoableEdit
	indexOfNextAdd int
	size           int
	logger         log.Logger
}

// NewUndoManager creates a manager holding at most size edits, evicting
// the oldest when full. A non-positive size means DefaultHistorySize.
func NewUndoManager(size int) *UndoManager {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &UndoManager{
		size:   size,
		logger: log.GetDefaultLogger(),
	}
}

// NewUndoManagerFor creates a manager already listening to m, so every
// edit m commits from now on enters the history.
func NewUndoManagerFor(m *Model, size int) *UndoManager {
	um := NewUndoManager(size)
	m.AddChangeListener(um)
	return um
}

// ModelChanged implements ChangeListener. Only committed edits enter the
// history; undo and redo notifications pass through untouched.
func (um *UndoManager) ModelChanged(event *ChangeEvent) {
	if event.Origin == OriginCommit {
		um.EditHappened(event.Edit)
	}
}

// EditHappened records a committed edit as the newest history entry. Any
// redoable edits beyond the cursor are dropped first, and the oldest
// entry is evicted once the history is full.
func (um *UndoManager) EditHappened(edit *UndoableEdit) {
	if edit == nil || edit.Empty() {
		return
	}
	um.trim()

	if len(um.history) == um.size {
		copy(um.history, um.history[1:])
		um.history = um.history[:len(um.history)-1]
		um.indexOfNextAdd--
	}

	um.history = append(um.history, edit)
	um.indexOfNextAdd = len(um.history)
}

// CanUndo reports whether an edit is available behind the cursor.
func (um *UndoManager) CanUndo() bool { return um.indexOfNextAdd > 0 }

// CanRedo reports whether an edit is available ahead of the cursor.
func (um *UndoManager) CanRedo() bool { return um.indexOfNextAdd < len(um.history) }

// Len returns the number of edits currently held.
func (um *UndoManager) Len() int { return len(um.history) }

// Undo rolls back the edit behind the cursor and reports whether a step
// was taken. With nothing to undo it is a no-op.
func (um *UndoManager) Undo() bool {
	if !um.CanUndo() {
		return false
	}
	um.indexOfNextAdd--
	edit := um.history[um.indexOfNextAdd]
	um.logger.Debug("undoing edit %d of %d", um.indexOfNextAdd+1, len(um.history))
	edit.Undo()
	return true
}

// Redo reapplies the edit ahead of the cursor and reports whether a step
// was taken. With nothing to redo it is a no-op.
func (um *UndoManager) Redo() bool {
	if !um.CanRedo() {
		return false
	}
	edit := um.history[um.indexOfNextAdd]
	um.indexOfNextAdd++
	um.logger.Debug("redoing edit %d of %d", um.indexOfNextAdd, len(um.history))
	edit.Redo()
	return true
}

// Clear forgets the entire history.
func (um *UndoManager) Clear() {
	um.history = nil
	um.indexOfNextAdd = 0
}

// trim drops every edit at or beyond the cursor.
func (um *UndoManager) trim() {
	if len(um.history) > um.indexOfNextAdd {
		um.logger.Debug("dropping %d redoable edit(s)", len(um.history)-um.indexOfNextAdd)
		um.history = um.history[:um.indexOfNextAdd]
	}
}
