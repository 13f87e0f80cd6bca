// ABOUTME: Test harness for the API: full server over a temp SQLite store
// ABOUTME: Provides a small JSON client with per-token authorization

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/content"
	"github.com/techguides/techhub/internal/dispatch"
	"github.com/techguides/techhub/internal/queue"
	"github.com/techguides/techhub/internal/store"
	"github.com/techguides/techhub/internal/tools"
)

const testMasterPassword = "master-password"

type testAPI struct {
	t       *testing.T
	server  *httptest.Server
	store   *store.SQLiteStore
	queue   *queue.Queue
	reg     *tools.Registry
	content *content.Service
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	dir := t.TempDir()

	st, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	toolsPath := filepath.Join(dir, "tools.json")
	require.NoError(t, tools.SaveDocument(toolsPath, &tools.Document{
		ServerTools: []tools.Tool{
			{ID: "docs", Name: "Docs", Type: tools.TypeWebsite, WebsiteURL: "https://docs.example.com", Enabled: true},
			{ID: "t1", Name: "Calculator", Type: tools.TypeClientService, ExecutablePath: "calc.exe", Enabled: true},
			{ID: "hidden", Name: "Hidden", Type: tools.TypeWebsite, WebsiteURL: "https://hidden", Enabled: true, Hidden: true},
		},
		Settings: tools.DefaultSettings(),
	}))

	reg, err := tools.NewRegistry(toolsPath, st)
	require.NoError(t, err)

	q := queue.New()
	engine := dispatch.NewEngine(reg, q, st)
	verifier := auth.NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))
	login := auth.NewLogin(st, verifier, testMasterPassword, time.Hour)
	contentSvc := content.NewService(st)

	srv := NewServer(st, reg, engine, q, login, verifier, contentSvc)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testAPI{t: t, server: ts, store: st, queue: q, reg: reg, content: contentSvc}
}

// do sends a JSON request and decodes the response body into a generic map.
func (a *testAPI) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	if len(data) > 0 {
		require.NoError(a.t, json.Unmarshal(data, &decoded), "body: %s", data)
	}
	return resp.StatusCode, decoded
}

// register creates a user and returns a login token.
func (a *testAPI) register(username string, entitled bool) string {
	a.t.Helper()

	status, _ := a.do(http.MethodPost, "/api/register", "", map[string]any{
		"username": username,
		"password": "password123",
	})
	require.Equal(a.t, http.StatusCreated, status)

	if entitled {
		require.NoError(a.t, a.store.SetExternalFeatures(context.Background(), username, true))
	}
	return a.loginAs(username, "password123")
}

func (a *testAPI) loginAs(username, password string) string {
	a.t.Helper()

	status, body := a.do(http.MethodPost, "/api/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(a.t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(a.t, token)
	return token
}

func (a *testAPI) adminToken() string {
	return a.loginAs("operator", testMasterPassword)
}
