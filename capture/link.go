package capture

import "time"

// KeepaliveInterval is how often clients are expected to ping.
const KeepaliveInterval = 30 * time.Second

// DefaultMaxMissed is the number of consecutive missed keepalives after
// which a link is considered dead.
const DefaultMaxMissed = 1

// Link is the liveness state of one client connection. Links are values:
// every operation returns the next state rather than mutating shared flags.
type Link struct {
	Alive    bool      `json:"alive"`
	LastSeen time.Time `json:"lastSeen"`
	Missed   int       `json:"missed"`
}

// Connect returns a live link last seen at now.
func Connect(now time.Time) Link {
	return Link{Alive: true, LastSeen: now}
}

// Keepalive returns the state after a keepalive probe at now.
// A successful probe resets the miss count. A dead link stays dead until
// the client reconnects.
func (l Link) Keepalive(now time.Time, ok bool, maxMissed int) Link {
	if !l.Alive {
		return l
	}
	if ok {
		return Link{Alive: true, LastSeen: now}
	}
	l.Missed++
	if l.Missed >= normalizeMaxMissed(maxMissed) {
		l.Alive = false
	}
	return l
}

// Expire counts the keepalives missed since LastSeen. The interval in which
// the next ping is due does not count as missed.
func (l Link) Expire(now time.Time, interval time.Duration, maxMissed int) Link {
	if !l.Alive || interval <= 0 {
		return l
	}
	missed := int(now.Sub(l.LastSeen)/interval) - 1
	if missed <= l.Missed {
		return l
	}
	l.Missed = missed
	if l.Missed >= normalizeMaxMissed(maxMissed) {
		l.Alive = false
	}
	return l
}

func normalizeMaxMissed(n int) int {
	if n <= 0 {
		return DefaultMaxMissed
	}
	return n
}
