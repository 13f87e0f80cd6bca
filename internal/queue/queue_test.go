// ABOUTME: Tests for queue isolation, ordering, idempotent completion, and ids
// ABOUTME: Includes a concurrent enqueue check across users

package queue

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueuePending_Order(t *testing.T) {
	q := New()

	first := q.Enqueue("alice", "cmd|tool|a|a.exe|launch")
	second := q.Enqueue("alice", "cmd|tool|b|b.exe|launch")

	pending := q.Pending("alice")
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
	assert.Equal(t, TypeCommand, pending[0].Type)
	assert.Equal(t, StatusPending, pending[0].Status)
}

func TestPending_IsPureRead(t *testing.T) {
	q := New()
	q.Enqueue("alice", "cmd|system|echo hi")

	assert.Len(t, q.Pending("alice"), 1)
	assert.Len(t, q.Pending("alice"), 1)

	// Mutating the returned slice must not affect the queue
	pending := q.Pending("alice")
	pending[0].Status = "mangled"
	assert.Equal(t, StatusPending, q.Pending("alice")[0].Status)
}

func TestUserIsolation(t *testing.T) {
	q := New()

	cmd := q.Enqueue("alice", "cmd|system|echo alice")
	q.Enqueue("bob", "cmd|system|echo bob")

	assert.Len(t, q.Pending("alice"), 1)
	assert.Len(t, q.Pending("bob"), 1)
	assert.Empty(t, q.Pending("carol"))

	// Completing alice's command with bob's queue does nothing
	assert.False(t, q.Complete("bob", cmd.ID))
	assert.Len(t, q.Pending("alice"), 1)
	assert.Len(t, q.Pending("bob"), 1)
}

func TestComplete_Idempotent(t *testing.T) {
	q := New()
	cmd := q.Enqueue("alice", "cmd|system|echo hi")

	assert.True(t, q.Complete("alice", cmd.ID))
	assert.Empty(t, q.Pending("alice"))

	assert.False(t, q.Complete("alice", cmd.ID))
	assert.False(t, q.Complete("alice", "never-existed"))
	assert.Empty(t, q.Pending("alice"))
}

func TestComplete_RemovesOnlyTarget(t *testing.T) {
	q := New()
	a := q.Enqueue("alice", "one")
	b := q.Enqueue("alice", "two")
	c := q.Enqueue("alice", "three")

	require.True(t, q.Complete("alice", b.ID))

	pending := q.Pending("alice")
	require.Len(t, pending, 2)
	assert.Equal(t, a.ID, pending[0].ID)
	assert.Equal(t, c.ID, pending[1].ID)
}

func TestCommandIDs_Unique(t *testing.T) {
	q := New()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		cmd := q.Enqueue("alice", "cmd|system|echo hi")
		assert.False(t, seen[cmd.ID], "duplicate id %s", cmd.ID)
		seen[cmd.ID] = true
	}
}

func TestIDGenerator_SameTick(t *testing.T) {
	var g idGenerator
	now := time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)

	first := g.next(now)
	second := g.next(now)
	third := g.next(now)

	assert.Equal(t, "20240301123045123456", first)
	assert.Equal(t, "20240301123045123456-1", second)
	assert.Equal(t, "20240301123045123456-2", third)
}

func TestDepth(t *testing.T) {
	q := New()
	assert.Equal(t, 0, q.Depth())

	q.Enqueue("alice", "one")
	q.Enqueue("alice", "two")
	q.Enqueue("bob", "three")

	assert.Equal(t, 2, q.Len("alice"))
	assert.Equal(t, 1, q.Len("bob"))
	assert.Equal(t, 3, q.Depth())
}

func TestConcurrentEnqueue(t *testing.T) {
	q := New()

	const users = 8
	const perUser = 50

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", u)
			for i := 0; i < perUser; i++ {
				q.Enqueue(name, "cmd|system|echo hi")
			}
		}(u)
	}
	wg.Wait()

	for u := 0; u < users; u++ {
		assert.Equal(t, perUser, q.Len(fmt.Sprintf("user%d", u)))
	}
	assert.Equal(t, users*perUser, q.Depth())
}
