package observe

import (
	"iter"
	"runtime"
	"sync"
	"weak"

	"github.com/matzehuels/listtree/pkg/observability"
)

// Projection is a live, read-only sequence equal to mapping a function over
// a source sequence of pointers. It is created by [Project].
//
// Results are memoized per source item in a weak cache: the mapping function
// runs at most once for each live source item, and the cache never keeps a
// source item alive. Mapped values must not point back at their source
// item, or the item is never collected. A nil source item is mapped on
// every occurrence.
type Projection[S, T any] struct {
	source Sequence[*S]
	fn     func(*S) T
	target List[T]
	sub    *Subscription
	cache  *weakCache[S, T]
}

// Project returns a projection of source through fn. The projection stays
// subscribed to source until Close.
func Project[S, T any](source Sequence[*S], fn func(*S) T) *Projection[S, T] {
	p := &Projection[S, T]{
		source: source,
		fn:     fn,
		cache:  &weakCache[S, T]{entries: make(map[weak.Pointer[S]]T)},
	}
	p.target.items = p.transformAll()
	p.sub = source.Subscribe(p.onSourceChange)
	return p
}

// Len returns the number of projected items.
func (p *Projection[S, T]) Len() int { return p.target.Len() }

// At returns the projected item at index i.
func (p *Projection[S, T]) At(i int) T { return p.target.At(i) }

// All iterates over the projected items.
func (p *Projection[S, T]) All() iter.Seq2[int, T] { return p.target.All() }

// Items returns a copy of the projected items.
func (p *Projection[S, T]) Items() []T { return p.target.Items() }

// Subscribe registers fn for changes of the projected sequence.
func (p *Projection[S, T]) Subscribe(fn func(Change[T])) *Subscription {
	return p.target.Subscribe(fn)
}

// Cached returns the number of live cache entries.
func (p *Projection[S, T]) Cached() int {
	return p.cache.size()
}

// Close detaches the projection from its source. The projected items are
// kept but no longer follow the source.
func (p *Projection[S, T]) Close() {
	p.sub.Cancel()
}

func (p *Projection[S, T]) onSourceChange(c Change[*S]) {
	switch c.Action {
	case Add:
		p.target.Insert(c.NewIndex, p.transform(c.NewItems)...)
	case Remove:
		p.target.RemoveRange(c.OldIndex, len(c.OldItems))
	case Move:
		if len(c.OldItems) == 1 {
			p.target.Move(c.OldIndex, c.NewIndex)
			return
		}
		p.target.RemoveRange(c.OldIndex, len(c.OldItems))
		p.target.Insert(c.NewIndex, p.transform(c.NewItems)...)
	case Replace:
		if len(c.OldItems) != len(c.NewItems) {
			p.target.RemoveRange(c.OldIndex, len(c.OldItems))
			p.target.Insert(c.NewIndex, p.transform(c.NewItems)...)
			return
		}
		for i, item := range c.NewItems {
			p.target.Set(c.NewIndex+i, p.transformOne(item))
		}
	case Reset:
		p.target.Reset(p.transformAll()...)
	}
}

func (p *Projection[S, T]) transformAll() []T {
	out := make([]T, 0, p.source.Len())
	for _, item := range p.source.All() {
		out = append(out, p.transformOne(item))
	}
	return out
}

func (p *Projection[S, T]) transform(items []*S) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = p.transformOne(item)
	}
	return out
}

func (p *Projection[S, T]) transformOne(item *S) T {
	if item == nil {
		observability.Projection().OnTransform()
		return p.fn(nil)
	}
	key := weak.Make(item)
	if v, ok := p.cache.get(key); ok {
		observability.Projection().OnCacheHit()
		return v
	}
	observability.Projection().OnTransform()
	v := p.fn(item)
	p.cache.put(key, v)
	runtime.AddCleanup(item, p.cache.evict, key)
	return v
}

// weakCache maps source identities to results. Entries are removed by
// runtime cleanups, which run on another goroutine.
type weakCache[S, T any] struct {
	mu      sync.Mutex
	entries map[weak.Pointer[S]]T
}

func (c *weakCache[S, T]) get(key weak.Pointer[S]) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *weakCache[S, T]) put(key weak.Pointer[S], v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

func (c *weakCache[S, T]) evict(key weak.Pointer[S]) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	observability.Projection().OnEvict()
}

func (c *weakCache[S, T]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
