// ABOUTME: Per-user external tool rows scoped by (username, tool_id)
// ABOUTME: CRUD plus enable-toggle and count used by the tool registry cap check

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateUserTool inserts a new user tool row.
// Returns ErrDuplicateTool if the caller already owns a tool with the same tool_id.
func (s *SQLiteStore) CreateUserTool(ctx context.Context, tool *UserTool) error {
	if tool.ID == "" {
		tool.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if tool.CreatedAt.IsZero() {
		tool.CreatedAt = now
	}
	tool.UpdatedAt = now
	if tool.Icon == "" {
		tool.Icon = "bi bi-gear"
	}

	query := `
		INSERT INTO user_tools
		(id, username, tool_id, name, description, icon, type, executable_path,
		 website_url, protocol_url, parameters, is_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		tool.ID,
		tool.Username,
		tool.ToolID,
		tool.Name,
		tool.Description,
		tool.Icon,
		tool.Type,
		tool.ExecutablePath,
		tool.WebsiteURL,
		tool.ProtocolURL,
		tool.Parameters,
		boolToInt(tool.Enabled),
		tool.CreatedAt.Format(time.RFC3339),
		tool.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrDuplicateTool
		}
		return fmt.Errorf("inserting user tool: %w", err)
	}

	s.logger.Debug("user tool created", "username", tool.Username, "tool_id", tool.ToolID)
	return nil
}

// GetUserTool retrieves one tool scoped to its owner. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetUserTool(ctx context.Context, username, toolID string) (*UserTool, error) {
	query := userToolSelect + ` WHERE username = ? AND tool_id = ?`
	tool, err := scanUserTool(s.db.QueryRowContext(ctx, query, username, toolID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return tool, err
}

// ListUserTools returns all tools owned by a user in insertion order.
func (s *SQLiteStore) ListUserTools(ctx context.Context, username string) ([]*UserTool, error) {
	query := userToolSelect + ` WHERE username = ? ORDER BY created_at, tool_id`
	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("listing user tools: %w", err)
	}
	defer rows.Close()

	var tools []*UserTool
	for rows.Next() {
		tool, err := scanUserTool(rows)
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

// CountUserTools returns how many tools a user currently owns.
func (s *SQLiteStore) CountUserTools(ctx context.Context, username string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_tools WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting user tools: %w", err)
	}
	return count, nil
}

// UpdateUserTool updates an existing tool row scoped to (username, tool_id).
func (s *SQLiteStore) UpdateUserTool(ctx context.Context, tool *UserTool) error {
	query := `
		UPDATE user_tools
		SET name = ?, description = ?, icon = ?, type = ?, executable_path = ?,
		    website_url = ?, protocol_url = ?, parameters = ?, is_enabled = ?, updated_at = ?
		WHERE username = ? AND tool_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		tool.Name,
		tool.Description,
		tool.Icon,
		tool.Type,
		tool.ExecutablePath,
		tool.WebsiteURL,
		tool.ProtocolURL,
		tool.Parameters,
		boolToInt(tool.Enabled),
		time.Now().UTC().Format(time.RFC3339),
		tool.Username,
		tool.ToolID,
	)
	if err != nil {
		return fmt.Errorf("updating user tool: %w", err)
	}
	return requireRowsAffected(res)
}

// DeleteUserTool removes a tool row scoped to (username, tool_id).
func (s *SQLiteStore) DeleteUserTool(ctx context.Context, username, toolID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_tools WHERE username = ? AND tool_id = ?`, username, toolID)
	if err != nil {
		return fmt.Errorf("deleting user tool: %w", err)
	}
	return requireRowsAffected(res)
}

// ToggleUserTool flips the enabled state of a tool and returns the new state.
func (s *SQLiteStore) ToggleUserTool(ctx context.Context, username, toolID string) (bool, error) {
	var enabled int
	err := s.db.QueryRowContext(ctx,
		`SELECT is_enabled FROM user_tools WHERE username = ? AND tool_id = ?`,
		username, toolID).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("reading tool state: %w", err)
	}

	newState := enabled == 0
	_, err = s.db.ExecContext(ctx,
		`UPDATE user_tools SET is_enabled = ?, updated_at = ? WHERE username = ? AND tool_id = ?`,
		boolToInt(newState), time.Now().UTC().Format(time.RFC3339), username, toolID)
	if err != nil {
		return false, fmt.Errorf("toggling user tool: %w", err)
	}
	return newState, nil
}

const userToolSelect = `
	SELECT id, username, tool_id, name, description, icon, type, executable_path,
	       website_url, protocol_url, parameters, is_enabled, created_at, updated_at
	FROM user_tools`

func scanUserTool(row scanner) (*UserTool, error) {
	var tool UserTool
	var enabled int
	var createdAt, updatedAt string
	var description, icon, execPath, websiteURL, protocolURL, parameters sql.NullString

	err := row.Scan(&tool.ID, &tool.Username, &tool.ToolID, &tool.Name, &description,
		&icon, &tool.Type, &execPath, &websiteURL, &protocolURL, &parameters,
		&enabled, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning user tool: %w", err)
	}

	tool.Description = description.String
	tool.Icon = icon.String
	tool.ExecutablePath = execPath.String
	tool.WebsiteURL = websiteURL.String
	tool.ProtocolURL = protocolURL.String
	tool.Parameters = parameters.String
	tool.Enabled = enabled == 1
	tool.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	tool.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &tool, nil
}
