// ABOUTME: Store interface and data types for techhub persistence
// ABOUTME: Defines User, UserTool, content structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when trying to create a user whose username is taken
var ErrDuplicateUser = errors.New("username already exists")

// ErrDuplicateTool is returned when a user already owns a tool with the same tool_id
var ErrDuplicateTool = errors.New("tool id already exists for this user")

// User represents a registered community member
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	ExternalFeatures bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UserTool represents a user-defined external tool row.
// Each row is owned by exactly one username; tool_id is unique per owner only.
type UserTool struct {
	ID             string
	Username       string
	ToolID         string
	Name           string
	Description    string
	Icon           string
	Type           string
	ExecutablePath string
	WebsiteURL     string
	ProtocolURL    string
	Parameters     string
	Enabled        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ToolUsage is an audit record of a tool execution request
type ToolUsage struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	ToolID    string    `json:"tool_id"`
	Source    string    `json:"source"` // "server" or "user"
	ToolType  string    `json:"tool_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolUsageFilter specifies filtering options for listing usage records.
type ToolUsageFilter struct {
	Username *string
	ToolID   *string
	Since    *time.Time
	Limit    int // max results (default 100, max 1000)
}

// Category represents a forum category
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post represents a forum post
type Post struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Author     string    `json:"author"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Comment represents a reply to a post
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Resource represents an entry in the resource library.
// Only metadata is stored here; file contents live under the upload directory.
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Filename    string    `json:"filename"`
	Uploader    string    `json:"uploader"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatMessage represents a message on the chat board
type ChatMessage struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IdentityStore defines user and credential persistence
type IdentityStore interface {
	CreateUser(ctx context.Context, user *User, password string) error
	GetUser(ctx context.Context, username string) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	UpdateUserProfile(ctx context.Context, user *User) error
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	DeleteUser(ctx context.Context, username string) error
	ListUsers(ctx context.Context) ([]*User, error)
	SetExternalFeatures(ctx context.Context, username string, enabled bool) error
}

// UserToolStore defines persistence for per-user external tools
type UserToolStore interface {
	CreateUserTool(ctx context.Context, tool *UserTool) error
	GetUserTool(ctx context.Context, username, toolID string) (*UserTool, error)
	ListUserTools(ctx context.Context, username string) ([]*UserTool, error)
	CountUserTools(ctx context.Context, username string) (int, error)
	UpdateUserTool(ctx context.Context, tool *UserTool) error
	DeleteUserTool(ctx context.Context, username, toolID string) error
	ToggleUserTool(ctx context.Context, username, toolID string) (bool, error)
}

// UsageStore defines the tool usage audit sink
type UsageStore interface {
	AppendToolUsage(ctx context.Context, u *ToolUsage) error
	ListToolUsage(ctx context.Context, filter ToolUsageFilter) ([]*ToolUsage, error)
}

// ContentStore defines forum, resource library, and chat board persistence
type ContentStore interface {
	// Categories
	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Posts
	CreatePost(ctx context.Context, p *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context, categoryID string, limit int) ([]*Post, error)
	DeletePost(ctx context.Context, id string) error

	// Comments
	CreateComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, postID string) ([]*Comment, error)

	// Resources
	CreateResource(ctx context.Context, r *Resource) error
	ListResources(ctx context.Context) ([]*Resource, error)
	DeleteResource(ctx context.Context, id string) error

	// Chat board
	AppendChatMessage(ctx context.Context, m *ChatMessage) error
	ListChatMessages(ctx context.Context, limit int) ([]*ChatMessage, error)
	WipeChat(ctx context.Context) error
}

// Store combines all persistence concerns backed by one database
type Store interface {
	IdentityStore
	UserToolStore
	UsageStore
	ContentStore

	// Close releases any resources held by the store
	Close() error
}
