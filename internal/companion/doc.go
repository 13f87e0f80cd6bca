// Package companion implements the desktop helper that executes queued
// commands for one techhub account.
//
// The server never runs anything itself: tool executions of the
// client_service modality only place an instruction string on the user's
// queue. The companion logs in, verifies its account holds the external
// tools entitlement, and then polls that queue. Each fetched entry is
// parsed, executed locally, and reported complete only when the local
// action succeeded. Failures and malformed instructions are left pending;
// since fetching is idempotent they will be seen again on the next poll.
package companion
