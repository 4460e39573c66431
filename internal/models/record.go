package models

import "time"

// ConversationRecord is the stored metadata of a persisted conversation.
type ConversationRecord struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	StartedAt time.Time `json:"started_at"`
}
