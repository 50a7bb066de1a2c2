package inventory

// Source delivers the host's raw "inventory changed" notifications for one
// container. The returned function removes the subscription; it may be called
// from inside the callback.
type Source interface {
	Subscribe(fn func()) (unsubscribe func())
}

type subscription struct {
	fn      func()
	removed bool
}

// Notifier is a Source driven by the event loop. Not safe for concurrent use.
type Notifier struct {
	subs []*subscription
}

func (n *Notifier) Subscribe(fn func()) func() {
	sub := &subscription{fn: fn}
	n.subs = append(n.subs, sub)
	return func() {
		sub.removed = true
	}
}

// Notify calls every live subscriber in subscription order.
func (n *Notifier) Notify() {
	live := n.subs[:0]
	for _, sub := range n.subs {
		if !sub.removed {
			live = append(live, sub)
		}
	}
	n.subs = live

	current := make([]*subscription, len(live))
	copy(current, live)
	for _, sub := range current {
		if sub.removed {
			continue
		}
		sub.fn()
	}
}

// Len returns the number of live subscribers.
func (n *Notifier) Len() int {
	count := 0
	for _, sub := range n.subs {
		if !sub.removed {
			count++
		}
	}
	return count
}
