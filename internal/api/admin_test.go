// ABOUTME: Tests for the admin surface: tool CRUD, settings, entitlements, audit
// ABOUTME: Verifies ordinary users are locked out of admin routes

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	api := setupAPI(t)
	userToken := api.register("alice", true)

	status, _ := api.do(http.MethodGet, "/api/admin/tools", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(http.MethodGet, "/api/admin/tools", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminToolCRUD(t *testing.T) {
	api := setupAPI(t)
	admin := api.adminToken()

	// Admin listing includes hidden tools
	status, body := api.do(http.MethodGet, "/api/admin/tools", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["tools"], 3)

	status, _ = api.do(http.MethodPost, "/api/admin/tools", admin, map[string]any{
		"id": "vnc", "name": "VNC", "type": "protocol", "protocol_url": "vnc://host", "enabled": true,
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = api.do(http.MethodPost, "/api/admin/tools", admin, map[string]any{
		"id": "docs", "name": "Dup", "type": "website", "website_url": "https://x", "enabled": true,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodPut, "/api/admin/tools/vnc", admin, map[string]any{
		"name": "VNC II", "type": "protocol", "protocol_url": "vnc://other", "enabled": false,
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodDelete, "/api/admin/tools/vnc", admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodDelete, "/api/admin/tools/vnc", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminSettings(t *testing.T) {
	api := setupAPI(t)
	admin := api.adminToken()

	status, body := api.do(http.MethodGet, "/api/admin/settings", admin, nil)
	require.Equal(t, http.StatusOK, status)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, float64(10), settings["max_user_tools"])

	status, _ = api.do(http.MethodPut, "/api/admin/settings", admin, map[string]any{
		"allow_user_tools": false, "max_user_tools": 2,
		"log_tool_usage": true, "allow_custom_tools": true,
	})
	require.Equal(t, http.StatusOK, status)

	// User tools vanish from the effective listing
	userToken := api.register("alice", true)
	status, body = api.do(http.MethodGet, "/api/external-tools", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["tools"], 2)
}

func TestAdminEntitlementToggle(t *testing.T) {
	api := setupAPI(t)
	admin := api.adminToken()
	token := api.register("alice", false)

	status, body := api.do(http.MethodGet, "/api/external-features", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["has_external_features"])

	status, _ = api.do(http.MethodPost, "/api/admin/users/alice/external-features", admin, map[string]any{"enabled": true})
	require.Equal(t, http.StatusOK, status)

	// The existing token now reflects the new entitlement: principals are
	// re-resolved against the store on every request.
	status, body = api.do(http.MethodGet, "/api/external-features", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["has_external_features"])

	status, _ = api.do(http.MethodPost, "/api/admin/users/ghost/external-features", admin, map[string]any{"enabled": true})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminToolUsage(t *testing.T) {
	api := setupAPI(t)
	admin := api.adminToken()
	token := api.register("alice", true)

	for i := 0; i < 2; i++ {
		status, _ := api.do(http.MethodPost, "/api/external-tools/run", token, map[string]any{"toolId": "docs"})
		require.Equal(t, http.StatusOK, status)
	}

	status, body := api.do(http.MethodGet, "/api/admin/tool-usage?username=alice", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = api.do(http.MethodGet, "/api/admin/tool-usage?username=nobody", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])

	status, _ = api.do(http.MethodGet, "/api/admin/tool-usage?since=yesterday", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminListUsers(t *testing.T) {
	api := setupAPI(t)
	api.register("alice", true)
	api.register("bob", false)
	admin := api.adminToken()

	status, body := api.do(http.MethodGet, "/api/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["users"], 2)
}
