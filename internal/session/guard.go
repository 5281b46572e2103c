package session

// GuardState is the decision a protected page makes about the current
// visitor. The transition out of GuardPending happens exactly once, when
// restoration completes; a redirect must never fire while restoration is
// still pending, or a visitor with a valid persisted session would be
// bounced to the auth page.
type GuardState int

const (
	// GuardPending: restoration in progress, render a loading
	// indicator, no redirect.
	GuardPending GuardState = iota
	// GuardAuthorized: user present, render the protected content.
	GuardAuthorized
	// GuardUnauthorized: restoration complete with no user, redirect to
	// the auth page and render nothing.
	GuardUnauthorized
)

func (g GuardState) String() string {
	switch g {
	case GuardPending:
		return "pending"
	case GuardAuthorized:
		return "authorized"
	case GuardUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Guard reports the gate decision for the store's current state.
func (s *Store) Guard() GuardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.loading:
		return GuardPending
	case s.user != nil:
		return GuardAuthorized
	default:
		return GuardUnauthorized
	}
}
