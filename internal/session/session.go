// Package session keeps per-session conversation history in memory
// with idle-based eviction.
package session

import "time"

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message within a session. Immutable once appended.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// sessionData holds the turns of one session and the metadata used for
// idle eviction.
type sessionData struct {
	turns        []Turn
	createdAt    time.Time
	lastAccessed time.Time
}
