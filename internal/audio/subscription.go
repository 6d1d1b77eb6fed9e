package audio

const eventBufferSize = 16

// StateChange is emitted whenever a track's indicator state changes.
type StateChange struct {
	Slug     string
	Previous State
	Current  State
}

// Subscription delivers state changes to one subscriber.
type Subscription struct {
	StateChanged <-chan StateChange
	Done         <-chan struct{}

	stateCh chan StateChange
	doneCh  chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		stateCh: make(chan StateChange, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}
