// ABOUTME: Tests for the poll loop against a fake server and recording executor
// ABOUTME: Verifies success-only completion and malformed instruction handling

package companion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techguides/techhub/internal/queue"
)

// recordingExecutor captures every call; failOn makes named executables fail.
type recordingExecutor struct {
	mu       sync.Mutex
	launched []string
	system   []string
	urls     []string
	failOn   map[string]bool
}

func (e *recordingExecutor) Launch(executable string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failOn[executable] {
		return errors.New("boom")
	}
	e.launched = append(e.launched, executable)
	return nil
}

func (e *recordingExecutor) RunSystem(command string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.system = append(e.system, command)
	return nil
}

func (e *recordingExecutor) OpenURL(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.urls = append(e.urls, url)
	return nil
}

func (e *recordingExecutor) snapshot() ([]string, []string, []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.launched...),
		append([]string(nil), e.system...),
		append([]string(nil), e.urls...)
}

// fakeServer mimics the techhub API surface the companion touches.
type fakeServer struct {
	mu        sync.Mutex
	entitled  bool
	pending   []queue.Command
	completed []string
	server    *httptest.Server
}

func newFakeServer(t *testing.T, entitled bool, pending []queue.Command) *fakeServer {
	t.Helper()
	f := &fakeServer{entitled: entitled, pending: pending}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "test-token"})
	})
	mux.HandleFunc("GET /api/external-features", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"has_external_features": f.entitled})
	})
	mux.HandleFunc("GET /api/client-service/queue", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"success": true, "queue": f.pending, "count": len(f.pending)})
	})
	mux.HandleFunc("POST /api/client-service/queue", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string `json:"action"`
			TaskID string `json:"task_id"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		require.Equal(t, "complete", req.Action)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.completed = append(f.completed, req.TaskID)
		kept := f.pending[:0]
		for _, cmd := range f.pending {
			if cmd.ID != req.TaskID {
				kept = append(kept, cmd)
			}
		}
		f.pending = kept
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeServer) completedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.completed...)
}

func testConfig(serverURL string) *Config {
	return &Config{
		ServerURL:     serverURL,
		Username:      "alice",
		Password:      "secret",
		PollInterval:  10 * time.Millisecond,
		ErrorInterval: 10 * time.Millisecond,
	}
}

func command(id, wire string) queue.Command {
	return queue.Command{ID: id, Type: queue.TypeCommand, Command: wire, Status: queue.StatusPending}
}

func runUntil(t *testing.T, r *Runner, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunner_ExecutesAndCompletes(t *testing.T) {
	f := newFakeServer(t, true, []queue.Command{
		command("1", "cmd|tool|t1|calc.exe|launch"),
		command("2", "cmd|system|echo hi"),
		command("3", "cmd|tool|web|https://example.com|launch"),
	})
	exec := &recordingExecutor{}
	r := NewRunner(NewClient(f.server.URL), exec, testConfig(f.server.URL))

	runUntil(t, r, func() bool { return len(f.completedIDs()) == 3 })

	launched, system, urls := exec.snapshot()
	assert.Equal(t, []string{"calc.exe"}, launched)
	assert.Equal(t, []string{"echo hi"}, system)
	assert.Equal(t, []string{"https://example.com"}, urls)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, f.completedIDs())
}

func TestRunner_StandaloneIsLogOnlySuccess(t *testing.T) {
	f := newFakeServer(t, true, []queue.Command{
		command("1", "cmd|tool|agent|standalone|launch"),
	})
	exec := &recordingExecutor{}
	r := NewRunner(NewClient(f.server.URL), exec, testConfig(f.server.URL))

	runUntil(t, r, func() bool { return len(f.completedIDs()) == 1 })

	launched, _, _ := exec.snapshot()
	assert.Empty(t, launched)
}

func TestRunner_MalformedLeftPending(t *testing.T) {
	f := newFakeServer(t, true, []queue.Command{
		command("1", "garbage"),
		command("2", "cmd|tool|t1|calc.exe|launch"),
	})
	exec := &recordingExecutor{}
	r := NewRunner(NewClient(f.server.URL), exec, testConfig(f.server.URL))

	runUntil(t, r, func() bool { return len(f.completedIDs()) == 1 })

	// Only the well-formed command completed; the malformed one is still pending
	assert.Equal(t, []string{"2"}, f.completedIDs())
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.pending, 1)
	assert.Equal(t, "1", f.pending[0].ID)
}

func TestRunner_FailedExecutionLeftPending(t *testing.T) {
	f := newFakeServer(t, true, []queue.Command{
		command("1", "cmd|tool|bad|broken.exe|launch"),
		command("2", "cmd|tool|ok|fine.exe|launch"),
	})
	exec := &recordingExecutor{failOn: map[string]bool{"broken.exe": true}}
	r := NewRunner(NewClient(f.server.URL), exec, testConfig(f.server.URL))

	runUntil(t, r, func() bool { return len(f.completedIDs()) == 1 })

	assert.Equal(t, []string{"2"}, f.completedIDs())
}

func TestRunner_UnknownActionLeftPending(t *testing.T) {
	f := newFakeServer(t, true, []queue.Command{
		command("1", "cmd|tool|t1|calc.exe|uninstall"),
		command("2", "cmd|tool|ok|fine.exe|launch"),
	})
	exec := &recordingExecutor{}
	r := NewRunner(NewClient(f.server.URL), exec, testConfig(f.server.URL))

	runUntil(t, r, func() bool { return len(f.completedIDs()) == 1 })

	// Only launch is supported; anything else fails and stays pending
	assert.Equal(t, []string{"2"}, f.completedIDs())
	launched, _, _ := exec.snapshot()
	assert.Equal(t, []string{"fine.exe"}, launched)
}

func TestRunner_RefusesWithoutEntitlement(t *testing.T) {
	f := newFakeServer(t, false, nil)
	r := NewRunner(NewClient(f.server.URL), &recordingExecutor{}, testConfig(f.server.URL))

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestRunner_BadCredentials(t *testing.T) {
	f := newFakeServer(t, true, nil)
	cfg := testConfig(f.server.URL)
	cfg.Password = "wrong"
	r := NewRunner(NewClient(f.server.URL), &recordingExecutor{}, cfg)

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrLoginRejected)
}
