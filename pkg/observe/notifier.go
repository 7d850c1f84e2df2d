package observe

import "slices"

// Subscription is a handle for one registered handler.
type Subscription struct {
	cancel func()
}

// Cancel stops delivery to the handler. Events already emitted but not yet
// delivered are dropped. Cancel is idempotent and safe on a nil receiver.
func (s *Subscription) Cancel() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// Active reports whether the subscription has not been cancelled.
func (s *Subscription) Active() bool {
	return s != nil && s.cancel != nil
}

type handler[E any] struct {
	fn     func(E)
	active bool
}

// Notifier fans an event out to its subscribers in subscription order.
// The zero value is ready to use and delivers synchronously.
type Notifier[E any] struct {
	handlers   []*handler[E]
	dispatcher Dispatcher
}

// Subscribe registers fn and returns a handle that cancels it.
func (n *Notifier[E]) Subscribe(fn func(E)) *Subscription {
	h := &handler[E]{fn: fn, active: true}
	n.handlers = append(n.handlers, h)
	return &Subscription{cancel: func() {
		h.active = false
		n.handlers = slices.DeleteFunc(n.handlers, func(x *handler[E]) bool { return x == h })
	}}
}

// SetDispatcher routes future deliveries through d. A nil d restores
// synchronous delivery.
func (n *Notifier[E]) SetDispatcher(d Dispatcher) {
	n.dispatcher = d
}

// Len returns the number of active subscriptions.
func (n *Notifier[E]) Len() int {
	return len(n.handlers)
}

// Notify emits e to every handler subscribed at the time of the call.
func (n *Notifier[E]) Notify(e E) {
	if len(n.handlers) == 0 {
		return
	}
	targets := slices.Clone(n.handlers)
	deliver := func() {
		for _, h := range targets {
			if h.active {
				h.fn(e)
			}
		}
	}
	if n.dispatcher == nil {
		deliver()
		return
	}
	n.dispatcher.Dispatch(deliver)
}
