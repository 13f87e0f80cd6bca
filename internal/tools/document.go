// ABOUTME: Server tool configuration document: JSON load, defaults, atomic save
// ABOUTME: Handles the legacy "tools" key by renaming it to "server_tools" on load

package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings are the site-wide knobs for the external tools subsystem.
type Settings struct {
	AllowUserTools       bool `json:"allow_user_tools"`
	MaxUserTools         int  `json:"max_user_tools"`
	LogToolUsage         bool `json:"log_tool_usage"`
	RequireAdminApproval bool `json:"require_admin_approval"`
	AllowCustomTools     bool `json:"allow_custom_tools"`
}

// DefaultSettings returns the settings applied when the document is missing
// or its settings block is absent.
func DefaultSettings() Settings {
	return Settings{
		AllowUserTools:       true,
		MaxUserTools:         10,
		LogToolUsage:         true,
		RequireAdminApproval: false,
		AllowCustomTools:     true,
	}
}

// Document is the parsed server tool configuration file.
type Document struct {
	ServerTools []Tool
	Settings    Settings
}

// documentEntry is the on-disk shape of a server tool. It differs from the
// canonical Tool in one place: the executable path is stored under the
// "executable" key.
type documentEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Type        string `json:"type"`
	Executable  string `json:"executable,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty"`
	ProtocolURL string `json:"protocol_url,omitempty"`
	Enabled     bool   `json:"enabled"`
	Hidden      bool   `json:"hidden,omitempty"`
}

type rawSettings struct {
	AllowUserTools       *bool `json:"allow_user_tools"`
	MaxUserTools         *int  `json:"max_user_tools"`
	LogToolUsage         *bool `json:"log_tool_usage"`
	RequireAdminApproval *bool `json:"require_admin_approval"`
	AllowCustomTools     *bool `json:"allow_custom_tools"`
}

type rawDocument struct {
	ServerTools []documentEntry `json:"server_tools"`
	LegacyTools []documentEntry `json:"tools,omitempty"`
	Settings    *rawSettings    `json:"settings"`
}

// LoadDocument reads the server tool configuration from path. A missing file
// yields an empty document with default settings. The second return value
// reports whether the legacy "tools" key was migrated and the document
// should be saved back.
func LoadDocument(path string) (*Document, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Document{Settings: DefaultSettings()}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading tools config: %w", err)
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("parsing tools config: %w", err)
	}

	entries := raw.ServerTools
	migrated := false
	if len(entries) == 0 && len(raw.LegacyTools) > 0 {
		entries = raw.LegacyTools
		migrated = true
	}

	doc := &Document{
		ServerTools: make([]Tool, 0, len(entries)),
		Settings:    mergeSettings(raw.Settings),
	}
	for _, e := range entries {
		doc.ServerTools = append(doc.ServerTools, Tool{
			ID:             e.ID,
			Name:           e.Name,
			Description:    e.Description,
			Icon:           e.Icon,
			Type:           e.Type,
			ExecutablePath: e.Executable,
			WebsiteURL:     e.WebsiteURL,
			ProtocolURL:    e.ProtocolURL,
			Enabled:        e.Enabled,
			Hidden:         e.Hidden,
		})
	}
	return doc, migrated, nil
}

// SaveDocument writes the document atomically: a temp file in the same
// directory followed by a rename, so readers never see a partial write.
func SaveDocument(path string, doc *Document) error {
	raw := rawDocument{
		ServerTools: make([]documentEntry, 0, len(doc.ServerTools)),
		Settings: &rawSettings{
			AllowUserTools:       &doc.Settings.AllowUserTools,
			MaxUserTools:         &doc.Settings.MaxUserTools,
			LogToolUsage:         &doc.Settings.LogToolUsage,
			RequireAdminApproval: &doc.Settings.RequireAdminApproval,
			AllowCustomTools:     &doc.Settings.AllowCustomTools,
		},
	}
	for _, t := range doc.ServerTools {
		raw.ServerTools = append(raw.ServerTools, documentEntry{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Icon:        t.Icon,
			Type:        t.Type,
			Executable:  t.ExecutablePath,
			WebsiteURL:  t.WebsiteURL,
			ProtocolURL: t.ProtocolURL,
			Enabled:     t.Enabled,
			Hidden:      t.Hidden,
		})
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tools config: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tools-*.json")
	if err != nil {
		return fmt.Errorf("creating temp tools config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing tools config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing tools config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing tools config: %w", err)
	}
	return nil
}

// mergeSettings overlays the parsed settings block onto the defaults.
func mergeSettings(raw *rawSettings) Settings {
	s := DefaultSettings()
	if raw == nil {
		return s
	}
	if raw.AllowUserTools != nil {
		s.AllowUserTools = *raw.AllowUserTools
	}
	if raw.MaxUserTools != nil {
		s.MaxUserTools = *raw.MaxUserTools
	}
	if raw.LogToolUsage != nil {
		s.LogToolUsage = *raw.LogToolUsage
	}
	if raw.RequireAdminApproval != nil {
		s.RequireAdminApproval = *raw.RequireAdminApproval
	}
	if raw.AllowCustomTools != nil {
		s.AllowCustomTools = *raw.AllowCustomTools
	}
	return s
}
