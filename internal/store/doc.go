// Package store provides persistence for techhub using SQLite.
//
// # Overview
//
// The store holds four groups of data behind one database file:
//
//   - Identity: users, credentials, and the per-user external features
//     entitlement bit
//   - User tools: per-user external tool definitions, keyed by
//     (username, tool_id)
//   - Tool usage: append-only audit records written when log_tool_usage
//     is enabled
//   - Content: forum categories, posts, comments, the resource library,
//     and the chat board
//
// The server-wide external tools document is NOT stored here; it lives in a
// JSON file owned by the tools package. Only user-defined tools are
// relational.
//
// # Error Handling
//
// Lookup misses return ErrNotFound. Uniqueness violations return
// ErrDuplicateUser or ErrDuplicateTool. Authentication failures return
// ErrBadCredentials without distinguishing unknown users from wrong
// passwords.
//
// # Usage
//
//	st, err := store.NewSQLiteStore("/var/lib/techhub/techhub.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
// The schema is created automatically on open. WAL mode is enabled for
// concurrent readers.
package store
