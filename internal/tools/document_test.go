// ABOUTME: Tests for document load, defaults, legacy key migration, atomic save
// ABOUTME: Uses t.TempDir for on-disk round trips

package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocument_MissingFile(t *testing.T) {
	doc, migrated, err := LoadDocument(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.False(t, migrated)
	assert.Empty(t, doc.ServerTools)
	assert.Equal(t, DefaultSettings(), doc.Settings)
}

func TestLoadDocument_DefaultsApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_tools": [],
		"settings": {"max_user_tools": 3}
	}`), 0644))

	doc, migrated, err := LoadDocument(path)
	require.NoError(t, err)

	assert.False(t, migrated)
	assert.Equal(t, 3, doc.Settings.MaxUserTools)
	assert.True(t, doc.Settings.AllowUserTools)
	assert.True(t, doc.Settings.LogToolUsage)
	assert.True(t, doc.Settings.AllowCustomTools)
	assert.False(t, doc.Settings.RequireAdminApproval)
}

func TestLoadDocument_LegacyToolsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"tools": [
			{"id": "calc", "name": "Calculator", "type": "executable", "executable": "calc.exe", "enabled": true}
		]
	}`), 0644))

	doc, migrated, err := LoadDocument(path)
	require.NoError(t, err)

	assert.True(t, migrated)
	require.Len(t, doc.ServerTools, 1)
	assert.Equal(t, "calc", doc.ServerTools[0].ID)
	assert.Equal(t, "calc.exe", doc.ServerTools[0].ExecutablePath)
}

func TestLoadDocument_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, _, err := LoadDocument(path)
	assert.Error(t, err)
}

func TestSaveDocument_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")

	original := &Document{
		ServerTools: []Tool{
			{ID: "calc", Name: "Calculator", Type: TypeExecutable, ExecutablePath: "calc.exe", Enabled: true},
			{ID: "docs", Name: "Docs", Type: TypeWebsite, WebsiteURL: "https://example.com", Enabled: true, Hidden: true},
		},
		Settings: Settings{AllowUserTools: false, MaxUserTools: 5, LogToolUsage: true, AllowCustomTools: true},
	}
	require.NoError(t, SaveDocument(path, original))

	loaded, migrated, err := LoadDocument(path)
	require.NoError(t, err)

	assert.False(t, migrated)
	assert.Equal(t, original.ServerTools, loaded.ServerTools)
	assert.Equal(t, original.Settings, loaded.Settings)

	// The executable path must live under the document's "executable" key
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"executable": "calc.exe"`)
	assert.NotContains(t, string(data), `"tools"`)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
