// ABOUTME: In-memory per-user command queue with independently locked shards
// ABOUTME: Operations on different users never contend on a shared lock

package queue

import (
	"log/slog"
	"sync"
	"time"
)

// Queue holds pending commands per username. The outer lock guards only
// shard lookup and creation; each user's commands sit behind their own
// mutex, so enqueue and poll traffic for different users proceeds in
// parallel.
//
// The queue is unbounded. Depth is exposed for an operator gauge rather
// than enforced; entries persist until completed.
type Queue struct {
	mu     sync.RWMutex
	shards map[string]*userQueue
	ids    idGenerator
	logger *slog.Logger
}

type userQueue struct {
	mu       sync.Mutex
	commands []Command
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		shards: make(map[string]*userQueue),
		logger: slog.Default().With("component", "queue"),
	}
}

// shard returns the user's queue, creating it on first use.
func (q *Queue) shard(username string) *userQueue {
	q.mu.RLock()
	uq, ok := q.shards[username]
	q.mu.RUnlock()
	if ok {
		return uq
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if uq, ok = q.shards[username]; ok {
		return uq
	}
	uq = &userQueue{}
	q.shards[username] = uq
	return uq
}

// Enqueue appends an encoded instruction to the user's queue and returns
// the created command.
func (q *Queue) Enqueue(username, instruction string) Command {
	now := time.Now().UTC()
	cmd := Command{
		ID:      q.ids.next(now),
		Type:    TypeCommand,
		Command: instruction,
		Created: now,
		Status:  StatusPending,
	}

	uq := q.shard(username)
	uq.mu.Lock()
	uq.commands = append(uq.commands, cmd)
	depth := len(uq.commands)
	uq.mu.Unlock()

	q.logger.Debug("command enqueued", "username", username, "command_id", cmd.ID, "depth", depth)
	return cmd
}

// Pending returns a copy of the user's queue in enqueue order. Reading
// never mutates the queue; repeated calls see the same entries until
// Complete removes them.
func (q *Queue) Pending(username string) []Command {
	uq := q.shard(username)
	uq.mu.Lock()
	defer uq.mu.Unlock()

	out := make([]Command, len(uq.commands))
	copy(out, uq.commands)
	return out
}

// Complete removes the command with the given id from the user's queue.
// Completing an absent id is a no-op; the call is idempotent.
func (q *Queue) Complete(username, id string) bool {
	uq := q.shard(username)
	uq.mu.Lock()
	defer uq.mu.Unlock()

	for i, cmd := range uq.commands {
		if cmd.ID == id {
			uq.commands = append(uq.commands[:i], uq.commands[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of pending commands for one user.
func (q *Queue) Len(username string) int {
	uq := q.shard(username)
	uq.mu.Lock()
	defer uq.mu.Unlock()
	return len(uq.commands)
}

// Depth returns the total number of pending commands across all users.
func (q *Queue) Depth() int {
	q.mu.RLock()
	shards := make([]*userQueue, 0, len(q.shards))
	for _, uq := range q.shards {
		shards = append(shards, uq)
	}
	q.mu.RUnlock()

	total := 0
	for _, uq := range shards {
		uq.mu.Lock()
		total += len(uq.commands)
		uq.mu.Unlock()
	}
	return total
}

// LogDepth emits a gauge line for the operator. Called periodically from
// the server's housekeeping loop since the queue has no retention policy.
func (q *Queue) LogDepth() {
	q.logger.Info("queue depth", "pending", q.Depth())
}
