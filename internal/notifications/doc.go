// Package notifications pushes run milestones to ntfy.
//
// The topic URL comes from config.toml; without one every call is a no-op, so
// callers never need to check whether notifications are enabled. Send
// failures are returned to the caller, which logs them and carries on.
package notifications
