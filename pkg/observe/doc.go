// Package observe provides change-notifying sequences and live projections.
//
// The central types are:
//
//   - [Notifier]: an ordered list of handlers for one event type. Handlers are
//     snapshotted when an event is emitted, so handlers added or cancelled
//     while an event is in flight do not disturb its delivery.
//   - [List]: a slice that reports every structural change as a [Change].
//   - [Sequence]: the read-only view of a List that consumers subscribe to.
//   - [Project]: a live [Sequence] equal to mapping a function over a source
//     sequence, kept in sync as the source changes.
//
// # Delivery
//
// By default a Notifier delivers synchronously. Assigning a [Dispatcher]
// (for example a [Queue]) defers delivery: the owner finishes its state
// change, then flushes the queue so handlers observe a consistent state.
//
//	var q observe.Queue
//	list := observe.NewList[int]()
//	list.SetDispatcher(&q)
//	list.Subscribe(func(c observe.Change[int]) { fmt.Println(c.Action) })
//	list.Append(1) // queued
//	q.Flush()      // prints "add"
//
// None of the types in this package are safe for concurrent use, with the
// single exception of the projection cache, whose entries are evicted from
// the runtime's cleanup goroutine.
package observe
