package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WelcomeMessage is the synthetic assistant greeting every conversation starts
// with. It is shown to the user but never sent to the backend as history.
const WelcomeMessage = "Hi! I've analyzed this product's reviews. Ask me anything — " +
	"pros and cons, how it compares, whether it's right for your use case, " +
	"or common issues buyers mention."

// ErrEmptyMessage is returned by StartTurn when the user input trims to nothing.
var ErrEmptyMessage = errors.New("message is empty")

// ErrTurnOpen is returned by StartTurn while another turn is still receiving
// fragments.
var ErrTurnOpen = errors.New("a turn is already open")

// Conversation is an append-only, chronologically ordered message log. It owns
// no I/O; a stream session mutates it through the methods below. At most one
// message is open at any time, and a message that left the open state rejects
// any further mutation, so a straggling fragment from a superseded session can
// never corrupt a later turn.
//
// A Conversation is not safe for concurrent use; it is owned by the single
// goroutine driving the active session.
type Conversation struct {
	messages []Message
}

// NewConversation creates a conversation seeded with the welcome greeting.
func NewConversation() *Conversation {
	return &Conversation{
		messages: []Message{
			{
				ID:        uuid.New().String(),
				Role:      RoleAssistant,
				Content:   WelcomeMessage,
				Status:    StatusFinal,
				Timestamp: time.Now(),
			},
		},
	}
}

// StartTurn appends a final user message holding the trimmed input, followed by
// an empty open assistant message, and returns both IDs. It returns
// ErrEmptyMessage for blank input and ErrTurnOpen while a previous turn has not
// reached a terminal status; in both cases the log is left untouched.
func (c *Conversation) StartTurn(userText string) (userID, assistantID string, err error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", "", ErrEmptyMessage
	}
	if _, open := c.Open(); open {
		return "", "", ErrTurnOpen
	}

	userID = uuid.New().String()
	assistantID = uuid.New().String()
	now := time.Now()

	c.messages = append(c.messages,
		Message{
			ID:        userID,
			Role:      RoleUser,
			Content:   userText,
			Status:    StatusFinal,
			Timestamp: now,
		},
		Message{
			ID:        assistantID,
			Role:      RoleAssistant,
			Status:    StatusOpen,
			Timestamp: now,
		},
	)

	return userID, assistantID, nil
}

// AppendDelta appends fragment to the message with the given ID and reports
// whether the fragment was applied. Fragments addressed to a message that is
// not open anymore are ignored, which guards against late delivery after
// completion or cancellation.
func (c *Conversation) AppendDelta(assistantID, fragment string) bool {
	msg := c.find(assistantID)
	if msg == nil || msg.Status != StatusOpen {
		return false
	}
	msg.Content += fragment
	return true
}

// CompleteTurn finalizes the open message with the given ID, keeping whatever
// content has accumulated. It reports whether a transition happened.
func (c *Conversation) CompleteTurn(assistantID string) bool {
	msg := c.find(assistantID)
	if msg == nil || msg.Status != StatusOpen {
		return false
	}
	msg.Status = StatusFinal
	return true
}

// FailTurn transitions the open message with the given ID to errored, replacing
// any partial content with errorText. It reports whether a transition happened.
func (c *Conversation) FailTurn(assistantID, errorText string) bool {
	msg := c.find(assistantID)
	if msg == nil || msg.Status != StatusOpen {
		return false
	}
	msg.Content = errorText
	msg.Status = StatusErrored
	return true
}

// HistoryForRequest returns the {role, content} pairs to send to the backend as
// conversational context, in chronological order. The synthetic greeting,
// errored messages, and any still-open placeholder are excluded.
func (c *Conversation) HistoryForRequest() []Turn {
	var turns []Turn
	for _, msg := range c.messages[1:] {
		if msg.Status != StatusFinal {
			continue
		}
		turns = append(turns, Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

// Open returns the currently open message, if any.
func (c *Conversation) Open() (Message, bool) {
	for i := range c.messages {
		if c.messages[i].Status == StatusOpen {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// Messages returns a snapshot of the message log.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Message returns the message with the given ID, if present.
func (c *Conversation) Message(id string) (Message, bool) {
	if msg := c.find(id); msg != nil {
		return *msg, true
	}
	return Message{}, false
}

func (c *Conversation) find(id string) *Message {
	for i := range c.messages {
		if c.messages[i].ID == id {
			return &c.messages[i]
		}
	}
	return nil
}
