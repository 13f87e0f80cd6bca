// ABOUTME: Tool usage audit records written when log_tool_usage is enabled
// ABOUTME: Append-and-list sink; never on the critical path of a dispatch call

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppendToolUsage appends a usage record. Generates ID and Timestamp if not set.
func (s *SQLiteStore) AppendToolUsage(ctx context.Context, u *ToolUsage) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO tool_usage (id, username, tool_id, source, tool_type, ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Username, u.ToolID, u.Source, u.ToolType,
		u.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting tool usage: %w", err)
	}

	s.logger.Debug("tool usage recorded",
		"username", u.Username,
		"tool_id", u.ToolID,
		"source", u.Source,
	)
	return nil
}

// ListToolUsage returns usage records newest first, applying the filter.
func (s *SQLiteStore) ListToolUsage(ctx context.Context, filter ToolUsageFilter) ([]*ToolUsage, error) {
	query := `SELECT id, username, tool_id, source, tool_type, ts FROM tool_usage`
	var conds []string
	var args []any

	if filter.Username != nil {
		conds = append(conds, "username = ?")
		args = append(args, *filter.Username)
	}
	if filter.ToolID != nil {
		conds = append(conds, "tool_id = ?")
		args = append(args, *filter.ToolID)
	}
	if filter.Since != nil {
		conds = append(conds, "ts > ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts DESC LIMIT ?"
	args = append(args, normalizeUsageLimit(filter.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tool usage: %w", err)
	}
	defer rows.Close()

	var entries []*ToolUsage
	for rows.Next() {
		var u ToolUsage
		var ts string
		if err := rows.Scan(&u.ID, &u.Username, &u.ToolID, &u.Source, &u.ToolType, &ts); err != nil {
			return nil, fmt.Errorf("scanning tool usage: %w", err)
		}
		u.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		entries = append(entries, &u)
	}
	return entries, rows.Err()
}

// normalizeUsageLimit applies default (100) and cap (1000) to the usage limit.
func normalizeUsageLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
