package models

import "time"

// Message represents an individual entry in a conversation. Assistant messages
// start out open and accumulate content fragment by fragment until they are
// finalized or errored; user messages are final from the moment they are created.
type Message struct {
	ID        string        `json:"id"`
	Role      Role          `json:"role"`
	Content   string        `json:"content"`
	Status    MessageStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// Turn is the {role, content} pair sent to the backend as conversational
// context. It mirrors the history entries of the chat endpoint's request body.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role represents the role of a message participant.
type Role string

// MessageStatus represents the lifecycle state of a message.
type MessageStatus string

const (
	// RoleUser represents a message written by the user.
	RoleUser Role = "user"
	// RoleAssistant represents a message produced by the assistant.
	RoleAssistant Role = "assistant"

	// StatusOpen marks an assistant message that is still receiving fragments.
	StatusOpen MessageStatus = "open"
	// StatusFinal marks a message whose content will not change anymore.
	StatusFinal MessageStatus = "final"
	// StatusErrored marks an assistant message whose content was replaced by an
	// error explanation.
	StatusErrored MessageStatus = "errored"
)
