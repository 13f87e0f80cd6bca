// ABOUTME: Pending command type and its timestamp-derived id generator
// ABOUTME: Ids are high-resolution UTC timestamps, uniquified within a tick

package queue

import (
	"fmt"
	"sync"
	"time"
)

// Command statuses and types as they appear on the wire.
const (
	TypeCommand   = "command"
	StatusPending = "pending"
)

// Command is one pending entry in a user's queue. The Command field holds
// the encoded instruction string the companion client will parse.
type Command struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Command string    `json:"command"`
	Created time.Time `json:"created"`
	Status  string    `json:"status"`
}

// idGenerator produces command ids from the enqueue timestamp, digits of
// seconds plus microseconds. Two enqueues in the same microsecond get a
// counter suffix so ids stay unique.
type idGenerator struct {
	mu   sync.Mutex
	last string
	seq  int
}

func (g *idGenerator) next(now time.Time) string {
	now = now.UTC()
	base := now.Format("20060102150405") + fmt.Sprintf("%06d", now.Nanosecond()/1000)

	g.mu.Lock()
	defer g.mu.Unlock()
	if base == g.last {
		g.seq++
		return fmt.Sprintf("%s-%d", base, g.seq)
	}
	g.last = base
	g.seq = 0
	return base
}
