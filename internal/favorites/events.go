package favorites

// EventKind identifies the transition behind an [Event].
type EventKind int

const (
	EventLoaded     EventKind = iota // set seeded from the profile
	EventApplied                     // optimistic change applied
	EventConfirmed                   // server echo accepted
	EventRolledBack                  // toggle failed, change undone
	EventReconciled                  // set overwritten by the server
	EventReset                       // back to uninitialized
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventApplied:
		return "applied"
	case EventConfirmed:
		return "confirmed"
	case EventRolledBack:
		return "rolled back"
	case EventReconciled:
		return "reconciled"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is a favorites-changed notification.
type Event struct {
	Kind      EventKind
	MovieID   string   // set for toggle events
	Favorites []string // sorted snapshot after the transition
	State     State
	Err       error // set for [EventRolledBack]
}

// Subscribe registers a subscriber and returns its channel with a function that unsubscribes and closes it.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, subscriberBuffer)
	c.subscribers[id] = ch

	var once bool
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if once {
			return
		}
		once = true
		delete(c.subscribers, id)
		close(ch)
	}
}

// publish sends an event to every subscriber without blocking. Callers hold mu.
//
// A full channel drops its oldest event to make room.
func (c *Controller) publish(kind EventKind, movieID string, err error) {
	ev := Event{Kind: kind, MovieID: movieID, Favorites: c.snapshot(), State: c.state(), Err: err}

	for _, ch := range c.subscribers {
		select {
		case ch <- ev:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
