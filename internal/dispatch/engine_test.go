// ABOUTME: Tests for the dispatch pipeline over a stub registry
// ABOUTME: Includes the end-to-end client_service wire string scenario

package dispatch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/queue"
	"github.com/techguides/techhub/internal/store"
	"github.com/techguides/techhub/internal/tools"
)

// stubRegistry resolves from a fixed set keyed by tool id.
type stubRegistry struct {
	tools    map[string]*tools.Tool
	settings tools.Settings
}

func (s *stubRegistry) Resolve(_ context.Context, _ auth.Principal, toolID string) (*tools.Tool, error) {
	if t, ok := s.tools[toolID]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", tools.ErrUnknownTool, toolID)
}

func (s *stubRegistry) Settings() tools.Settings { return s.settings }

// recordingUsage captures audit rows.
type recordingUsage struct {
	rows []*store.ToolUsage
}

func (r *recordingUsage) AppendToolUsage(_ context.Context, u *store.ToolUsage) error {
	r.rows = append(r.rows, u)
	return nil
}

func (r *recordingUsage) ListToolUsage(_ context.Context, _ store.ToolUsageFilter) ([]*store.ToolUsage, error) {
	return r.rows, nil
}

func newTestEngine(reg *stubRegistry) (*Engine, *queue.Queue, *recordingUsage) {
	q := queue.New()
	usage := &recordingUsage{}
	return NewEngine(reg, q, usage), q, usage
}

func entitled() auth.Principal   { return auth.UserPrincipal{Username: "alice", Entitled: true} }
func unentitled() auth.Principal { return auth.UserPrincipal{Username: "mallory"} }

func TestExecute_NotEntitled(t *testing.T) {
	engine, _, usage := newTestEngine(&stubRegistry{
		tools: map[string]*tools.Tool{
			"docs": {ID: "docs", Name: "Docs", Type: tools.TypeWebsite, WebsiteURL: "https://docs", Enabled: true},
		},
		settings: tools.DefaultSettings(),
	})

	_, err := engine.Execute(context.Background(), unentitled(), "docs")
	assert.ErrorIs(t, err, ErrNotEntitled)
	assert.Empty(t, usage.rows)
}

func TestExecute_ToolNotFound(t *testing.T) {
	engine, _, _ := newTestEngine(&stubRegistry{
		tools:    map[string]*tools.Tool{},
		settings: tools.DefaultSettings(),
	})

	_, err := engine.Execute(context.Background(), entitled(), "ghost")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestExecute_Website(t *testing.T) {
	engine, _, _ := newTestEngine(&stubRegistry{
		tools: map[string]*tools.Tool{
			"docs": {ID: "docs", Name: "Docs", Type: tools.TypeWebsite, WebsiteURL: "https://docs", Enabled: true},
		},
		settings: tools.DefaultSettings(),
	})

	action, err := engine.Execute(context.Background(), entitled(), "docs")
	require.NoError(t, err)
	assert.Equal(t, ActionOpenURL, action.Kind)
	assert.Equal(t, "https://docs", action.URL)
}

func TestExecute_WebsiteMissingURL(t *testing.T) {
	engine, _, _ := newTestEngine(&stubRegistry{
		tools: map[string]*tools.Tool{
			"docs": {ID: "docs", Name: "Docs", Type: tools.TypeWebsite, Enabled: true},
		},
		settings: tools.DefaultSettings(),
	})

	_, err := engine.Execute(context.Background(), entitled(), "docs")
	assert.ErrorIs(t, err, tools.ErrMisconfiguredTool)
}

func TestExecute_Protocol(t *testing.T) {
	engine, _, _ := newTestEngine(&stubRegistry{
		tools: map[string]*tools.Tool{
			"vnc": {ID: "vnc", Name: "VNC", Type: tools.TypeProtocol, ProtocolURL: "vnc://host", Enabled: true},
		},
		settings: tools.DefaultSettings(),
	})

	action, err := engine.Execute(context.Background(), entitled(), "vnc")
	require.NoError(t, err)
	assert.Equal(t, ActionProtocol, action.Kind)
	assert.Equal(t, "vnc://host", action.URL)
}

func TestExecute_ExecutableIsDescriptorOnly(t *testing.T) {
	engine, q, _ := newTestEngine(&stubRegistry{
		tools: map[string]*tools.Tool{
			"calc": {ID: "calc", Name: "Calc", Type: tools.TypeExecutable, ExecutablePath: "calc.exe", Enabled: true},
		},
		settings: tools.DefaultSettings(),
	})

	action, err := engine.Execute(context.Background(), entitled(), "calc")
	require.NoError(t, err)
	assert.Equal(t, ActionExecute, action.Kind)
	assert.Equal(t, "calc.exe", action.Executable)

	// Nothing queued, nothing run server-side
	assert.Empty(t, q.Pending("alice"))
}

func TestExecute_UnknownType(t *testing.T) {
	engine, _, _ := newTestEngine(&stubRegistry{
		tools: map[string]*tools.Tool{
			"odd": {ID: "odd", Name: "Odd", Type: "telepathy", Enabled: true},
		},
		settings: tools.DefaultSettings(),
	})

	_, err := engine.Execute(context.Background(), entitled(), "odd")
	assert.ErrorIs(t, err, ErrUnknownToolType)
}

func TestExecute_ClientService_EndToEnd(t *testing.T) {
	engine, q, _ := newTestEngine(&stubRegistry{
		tools: map[string]*tools.Tool{
			"t1": {ID: "t1", Name: "Calculator", Type: tools.TypeClientService, ExecutablePath: "calc.exe", Enabled: true},
		},
		settings: tools.DefaultSettings(),
	})
	ctx := context.Background()

	action, err := engine.Execute(ctx, entitled(), "t1")
	require.NoError(t, err)
	assert.Equal(t, ActionClientService, action.Kind)
	assert.Equal(t, "t1", action.ToolID)
	assert.NotEmpty(t, action.CommandID)

	pending := q.Pending("alice")
	require.Len(t, pending, 1)
	assert.Equal(t, "cmd|tool|t1|calc.exe|launch", pending[0].Command)
	assert.Equal(t, action.CommandID, pending[0].ID)

	assert.True(t, q.Complete("alice", action.CommandID))
	assert.Empty(t, q.Pending("alice"))
}

func TestExecute_ClientService_StandaloneFallback(t *testing.T) {
	engine, q, _ := newTestEngine(&stubRegistry{
		tools: map[string]*tools.Tool{
			"agent": {ID: "agent", Name: "Agent", Type: tools.TypeClientService, Enabled: true},
		},
		settings: tools.DefaultSettings(),
	})

	_, err := engine.Execute(context.Background(), entitled(), "agent")
	require.NoError(t, err)

	pending := q.Pending("alice")
	require.Len(t, pending, 1)
	assert.Equal(t, "cmd|tool|agent|agent|launch", pending[0].Command)
}

func TestExecute_Audit(t *testing.T) {
	reg := &stubRegistry{
		tools: map[string]*tools.Tool{
			"docs": {ID: "docs", Name: "Docs", Type: tools.TypeWebsite, WebsiteURL: "https://docs", Enabled: true},
			"mine": {ID: "mine", Name: "Mine", Type: tools.TypeWebsite, WebsiteURL: "https://mine", Enabled: true, Owner: "alice"},
		},
		settings: tools.DefaultSettings(),
	}
	engine, _, usage := newTestEngine(reg)
	ctx := context.Background()

	_, err := engine.Execute(ctx, entitled(), "docs")
	require.NoError(t, err)
	_, err = engine.Execute(ctx, entitled(), "mine")
	require.NoError(t, err)

	require.Len(t, usage.rows, 2)
	assert.Equal(t, "server", usage.rows[0].Source)
	assert.Equal(t, "user", usage.rows[1].Source)
	assert.Equal(t, "alice", usage.rows[0].Username)
}

func TestExecute_AuditDisabled(t *testing.T) {
	settings := tools.DefaultSettings()
	settings.LogToolUsage = false
	engine, _, usage := newTestEngine(&stubRegistry{
		tools: map[string]*tools.Tool{
			"docs": {ID: "docs", Name: "Docs", Type: tools.TypeWebsite, WebsiteURL: "https://docs", Enabled: true},
		},
		settings: settings,
	})

	_, err := engine.Execute(context.Background(), entitled(), "docs")
	require.NoError(t, err)
	assert.Empty(t, usage.rows)
}
