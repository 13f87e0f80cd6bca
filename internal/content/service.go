// ABOUTME: Content service for the forum, resource library, and chat board
// ABOUTME: Renders post markdown with goldmark and enforces author ownership

package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/techguides/techhub/internal/auth"
	"github.com/techguides/techhub/internal/store"
)

// ErrForbidden is returned when a caller tries to modify content they do
// not own.
var ErrForbidden = errors.New("not the author")

// RenderedPost is a post with its markdown body rendered to HTML.
type RenderedPost struct {
	*store.Post
	HTML string
}

// Service owns the community content: categories, posts, comments, the
// resource library, and the chat board.
type Service struct {
	store  store.ContentStore
	md     goldmark.Markdown
	logger *slog.Logger
}

// NewService creates the content service.
func NewService(s store.ContentStore) *Service {
	return &Service{
		store: s,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		logger: slog.Default().With("component", "content"),
	}
}

// Startup runs the boot-time housekeeping: the chat board does not persist
// across restarts, so it is wiped.
func (s *Service) Startup(ctx context.Context, wipeChat bool) error {
	if !wipeChat {
		return nil
	}
	if err := s.store.WipeChat(ctx); err != nil {
		return fmt.Errorf("wiping chat board: %w", err)
	}
	s.logger.Info("chat board wiped")
	return nil
}

// CreateCategory adds a forum category. Admin only; enforced by the caller.
func (s *Service) CreateCategory(ctx context.Context, name, description string) (*store.Category, error) {
	c := &store.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return c, nil
}

// ListCategories returns all forum categories.
func (s *Service) ListCategories(ctx context.Context) ([]*store.Category, error) {
	return s.store.ListCategories(ctx)
}

// DeleteCategory removes a category and, via cascade, its posts.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.store.DeleteCategory(ctx, id)
}

// CreatePost stores a new forum post authored by the principal.
func (s *Service) CreatePost(ctx context.Context, principal auth.Principal, categoryID, title, body string, tags []string) (*store.Post, error) {
	p := &store.Post{
		ID:         uuid.New().String(),
		CategoryID: categoryID,
		Author:     principal.Name(),
		Title:      title,
		Body:       body,
		Tags:       tags,
	}
	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	s.logger.Info("post created", "post_id", p.ID, "author", p.Author)
	return p, nil
}

// GetPost fetches a post and renders its markdown body.
func (s *Service) GetPost(ctx context.Context, id string) (*RenderedPost, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	html, err := s.render(p.Body)
	if err != nil {
		return nil, fmt.Errorf("rendering post %s: %w", id, err)
	}
	return &RenderedPost{Post: p, HTML: html}, nil
}

// ListPosts returns posts, newest first, optionally filtered by category.
func (s *Service) ListPosts(ctx context.Context, categoryID string, limit int) ([]*store.Post, error) {
	return s.store.ListPosts(ctx, categoryID, limit)
}

// DeletePost removes a post. Only the author or an admin may delete.
func (s *Service) DeletePost(ctx context.Context, principal auth.Principal, id string) error {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !principal.IsAdmin() && p.Author != principal.Name() {
		return ErrForbidden
	}
	return s.store.DeletePost(ctx, id)
}

// CreateComment adds a reply to a post.
func (s *Service) CreateComment(ctx context.Context, principal auth.Principal, postID, body string) (*store.Comment, error) {
	// Verify the post exists so comments never dangle
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	c := &store.Comment{
		ID:     uuid.New().String(),
		PostID: postID,
		Author: principal.Name(),
		Body:   body,
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return c, nil
}

// ListComments returns a post's comments in creation order.
func (s *Service) ListComments(ctx context.Context, postID string) ([]*store.Comment, error) {
	return s.store.ListComments(ctx, postID)
}

// CreateResource records a resource library entry. File contents live under
// the upload directory; only metadata is stored.
func (s *Service) CreateResource(ctx context.Context, principal auth.Principal, title, description, filename string) (*store.Resource, error) {
	r := &store.Resource{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Filename:    filename,
		Uploader:    principal.Name(),
	}
	if err := s.store.CreateResource(ctx, r); err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	return r, nil
}

// ListResources returns all resource library entries.
func (s *Service) ListResources(ctx context.Context) ([]*store.Resource, error) {
	return s.store.ListResources(ctx)
}

// DeleteResource removes a resource entry. Only the uploader or an admin.
func (s *Service) DeleteResource(ctx context.Context, principal auth.Principal, id string) error {
	resources, err := s.store.ListResources(ctx)
	if err != nil {
		return err
	}
	for _, r := range resources {
		if r.ID == id {
			if !principal.IsAdmin() && r.Uploader != principal.Name() {
				return ErrForbidden
			}
			return s.store.DeleteResource(ctx, id)
		}
	}
	return store.ErrNotFound
}

// PostChatMessage appends a message to the chat board.
func (s *Service) PostChatMessage(ctx context.Context, principal auth.Principal, body, image string) (*store.ChatMessage, error) {
	m := &store.ChatMessage{
		ID:     uuid.New().String(),
		Author: principal.Name(),
		Body:   body,
		Image:  image,
	}
	if err := s.store.AppendChatMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("posting chat message: %w", err)
	}
	return m, nil
}

// ListChat returns the most recent chat messages in chronological order.
func (s *Service) ListChat(ctx context.Context, limit int) ([]*store.ChatMessage, error) {
	return s.store.ListChatMessages(ctx, limit)
}

func (s *Service) render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
