// ABOUTME: Forum, resource library, and chat board persistence
// ABOUTME: Ordinary CRUD rows consumed by the content service

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateCategory inserts a forum category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []*Category
	for rows.Next() {
		var c Category
		var desc sql.NullString
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &desc, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.Description = desc.String
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

// DeleteCategory removes a category by id.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return requireRowsAffected(res)
}

// CreatePost inserts a forum post. Tags are stored as a JSON array column.
func (s *SQLiteStore) CreatePost(ctx context.Context, p *Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (id, category_id, author, title, body, tags_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CategoryID, p.Author, p.Title, p.Body, string(tagsJSON),
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	return nil
}

// GetPost retrieves a post by id. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetPost(ctx context.Context, id string) (*Post, error) {
	row := s.db.QueryRowContext(ctx, postSelect+` WHERE id = ?`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return post, err
}

// ListPosts returns posts newest first, optionally filtered by category.
func (s *SQLiteStore) ListPosts(ctx context.Context, categoryID string, limit int) ([]*Post, error) {
	query := postSelect
	var args []any
	if categoryID != "" {
		query += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// DeletePost removes a post and its comments.
func (s *SQLiteStore) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return requireRowsAffected(res)
}

// CreateComment inserts a reply to a post.
func (s *SQLiteStore) CreateComment(ctx context.Context, c *Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.Author, c.Body, c.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

// ListComments returns a post's comments oldest first.
func (s *SQLiteStore) ListComments(ctx context.Context, postID string) ([]*Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, author, body, created_at FROM comments WHERE post_id = ? ORDER BY created_at`,
		postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		var createdAt string
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// CreateResource inserts a resource library entry.
func (s *SQLiteStore) CreateResource(ctx context.Context, r *Resource) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (id, title, description, filename, uploader, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Description, r.Filename, r.Uploader, r.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting resource: %w", err)
	}
	return nil
}

// ListResources returns all resource entries newest first.
func (s *SQLiteStore) ListResources(ctx context.Context) ([]*Resource, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, filename, uploader, created_at
		FROM resources ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()

	var resources []*Resource
	for rows.Next() {
		var r Resource
		var desc sql.NullString
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Title, &desc, &r.Filename, &r.Uploader, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		r.Description = desc.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		resources = append(resources, &r)
	}
	return resources, rows.Err()
}

// DeleteResource removes a resource entry by id.
func (s *SQLiteStore) DeleteResource(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting resource: %w", err)
	}
	return requireRowsAffected(res)
}

// AppendChatMessage adds a message to the chat board.
func (s *SQLiteStore) AppendChatMessage(ctx context.Context, m *ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, author, body, image, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Author, m.Body, m.Image, m.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns chat messages oldest first.
func (s *SQLiteStore) ListChatMessages(ctx context.Context, limit int) ([]*ChatMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, author, body, image, created_at FROM chat_messages ORDER BY created_at LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*ChatMessage
	for rows.Next() {
		var m ChatMessage
		var image sql.NullString
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Author, &m.Body, &image, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		m.Image = image.String
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// WipeChat clears the chat board. Run at startup when configured.
func (s *SQLiteStore) WipeChat(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("wiping chat: %w", err)
	}
	s.logger.Info("chat board wiped")
	return nil
}

const postSelect = `
	SELECT id, category_id, author, title, body, tags_json, created_at, updated_at
	FROM posts`

func scanPost(row scanner) (*Post, error) {
	var p Post
	var categoryID, tagsJSON sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &categoryID, &p.Author, &p.Title, &p.Body, &tagsJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning post: %w", err)
	}

	p.CategoryID = categoryID.String
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &p.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}
