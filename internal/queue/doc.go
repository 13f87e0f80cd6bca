// Package queue holds the in-memory pending-command queues the companion
// client polls, one independently locked shard per username, plus the
// pipe-delimited instruction codec used on the wire.
package queue
