// Package tools is the registry of external tools.
//
// Tools come from two sources with different shapes: the server's JSON
// configuration document and per-user database rows. Both are normalized
// into the canonical Tool type at the ingestion boundary; everything past
// the registry sees one shape.
//
// # Visibility
//
// Listing and resolution follow different rules. ListEffective returns what
// a tool menu should show: enabled, non-hidden server tools plus the
// caller's own enabled user tools. Resolve answers "may this caller run this
// id" and additionally matches hidden server tools, so a hidden tool is
// runnable by anyone who knows its id but appears in no listing. A user's
// tools are never visible to, or runnable by, anyone else.
//
// # Document lifecycle
//
// The JSON document is rewritten whole on every admin mutation, via a temp
// file and rename. Mutations are applied to a copy and swapped in only after
// the save succeeds. An fsnotify watcher picks up out-of-band edits; a
// reload that fails to parse keeps the last good document.
package tools
