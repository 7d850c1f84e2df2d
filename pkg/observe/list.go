package observe

import (
	"fmt"
	"iter"
	"slices"
)

// Action is the kind of structural change reported by a [Change].
type Action int

const (
	Add Action = iota
	Remove
	Move
	Replace
	Reset
)

// String returns the lowercase action name.
func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Move:
		return "move"
	case Replace:
		return "replace"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Change describes one structural change of a sequence.
//
//   - Add: NewItems were inserted starting at NewIndex.
//   - Remove: OldItems were removed starting at OldIndex.
//   - Move: OldItems moved from OldIndex to NewIndex (NewItems == OldItems).
//   - Replace: OldItems at OldIndex were replaced by NewItems at NewIndex.
//   - Reset: the contents changed wholesale; NewItems holds the new contents.
type Change[T any] struct {
	Action   Action
	NewIndex int
	OldIndex int
	NewItems []T
	OldItems []T
}

// Sequence is a read-only, change-notifying ordered collection.
type Sequence[T any] interface {
	Len() int
	At(i int) T
	All() iter.Seq2[int, T]
	Subscribe(fn func(Change[T])) *Subscription
}

// IndexOf returns the position of v in s, or -1.
func IndexOf[T comparable](s Sequence[T], v T) int {
	for i, x := range s.All() {
		if x == v {
			return i
		}
	}
	return -1
}

// List is an ordered collection that reports structural changes to its
// subscribers. Index arguments out of range panic, like slice indexing.
type List[T any] struct {
	items   []T
	changes Notifier[Change[T]]
}

// NewList returns a list holding a copy of items.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: slices.Clone(items)}
}

// Len returns the number of items.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the item at index i.
func (l *List[T]) At(i int) T { return l.items[i] }

// All iterates over index/item pairs.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range l.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Items returns a copy of the contents.
func (l *List[T]) Items() []T { return slices.Clone(l.items) }

// Subscribe registers fn for change notifications.
func (l *List[T]) Subscribe(fn func(Change[T])) *Subscription {
	return l.changes.Subscribe(fn)
}

// Subscribers returns the number of active subscriptions.
func (l *List[T]) Subscribers() int { return l.changes.Len() }

// SetDispatcher routes change notifications through d.
func (l *List[T]) SetDispatcher(d Dispatcher) { l.changes.SetDispatcher(d) }

// Insert inserts items at index i.
func (l *List[T]) Insert(i int, items ...T) {
	if len(items) == 0 {
		return
	}
	l.items = slices.Insert(l.items, i, items...)
	l.changes.Notify(Change[T]{Action: Add, NewIndex: i, OldIndex: -1, NewItems: slices.Clone(items)})
}

// Append adds items at the end.
func (l *List[T]) Append(items ...T) {
	l.Insert(len(l.items), items...)
}

// RemoveAt removes and returns the item at index i.
func (l *List[T]) RemoveAt(i int) T {
	v := l.items[i]
	l.RemoveRange(i, 1)
	return v
}

// RemoveRange removes n items starting at index i.
func (l *List[T]) RemoveRange(i, n int) {
	if n <= 0 {
		return
	}
	old := slices.Clone(l.items[i : i+n])
	l.items = slices.Delete(l.items, i, i+n)
	l.changes.Notify(Change[T]{Action: Remove, NewIndex: -1, OldIndex: i, OldItems: old})
}

// Move relocates the item at oldIndex so it ends up at newIndex.
func (l *List[T]) Move(oldIndex, newIndex int) {
	if oldIndex == newIndex {
		_ = l.items[oldIndex]
		return
	}
	v := l.items[oldIndex]
	l.items = slices.Delete(l.items, oldIndex, oldIndex+1)
	l.items = slices.Insert(l.items, newIndex, v)
	moved := []T{v}
	l.changes.Notify(Change[T]{Action: Move, NewIndex: newIndex, OldIndex: oldIndex, NewItems: moved, OldItems: moved})
}

// Set replaces the item at index i.
func (l *List[T]) Set(i int, v T) {
	old := l.items[i]
	l.items[i] = v
	l.changes.Notify(Change[T]{Action: Replace, NewIndex: i, OldIndex: i, NewItems: []T{v}, OldItems: []T{old}})
}

// Reset replaces the whole contents.
func (l *List[T]) Reset(items ...T) {
	old := l.items
	l.items = slices.Clone(items)
	l.changes.Notify(Change[T]{Action: Reset, NewIndex: 0, OldIndex: 0, NewItems: slices.Clone(items), OldItems: old})
}

// Clear removes all items with a single Reset notification.
func (l *List[T]) Clear() {
	l.Reset()
}

// ReadOnly returns a view of l that exposes only the Sequence methods.
func (l *List[T]) ReadOnly() Sequence[T] {
	return readOnly[T]{l}
}

type readOnly[T any] struct{ l *List[T] }

func (r readOnly[T]) Len() int               { return r.l.Len() }
func (r readOnly[T]) At(i int) T             { return r.l.At(i) }
func (r readOnly[T]) All() iter.Seq2[int, T] { return r.l.All() }
func (r readOnly[T]) Subscribe(fn func(Change[T])) *Subscription {
	return r.l.Subscribe(fn)
}
