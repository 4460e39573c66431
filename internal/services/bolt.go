package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/revuai/revuchat/internal/models"
	bolt "go.etcd.io/bbolt"
)

// BoltDB implements the conversation store using a BoltDB backend. It keeps a
// record per conversation plus a per-conversation bucket of messages in
// chronological order.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB creates a new BoltDB instance with the specified file path. It
// initializes the database with required buckets and returns an error if the
// database cannot be opened or initialized. The database file is created with
// 0600 permissions if it doesn't exist.
func NewBoltDB(path string) (BoltDB, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return BoltDB{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte("conversations"))
		return err
	})

	return BoltDB{db: db}, err
}

// Close releases the underlying database file.
func (b BoltDB) Close() error {
	return b.db.Close()
}

func messageBucketName(conversationID string) []byte {
	return []byte(fmt.Sprintf("conversation-%s", conversationID))
}

// Conversations retrieves all stored conversation records in reverse
// chronological order.
func (b BoltDB) Conversations(context.Context) ([]models.ConversationRecord, error) {
	var records []models.ConversationRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte("conversations"))
		if b == nil {
			return nil
		}

		return b.ForEach(func(_, v []byte) error {
			var record models.ConversationRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal conversation: %w", err)
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(records)
	return records, nil
}

// AddConversation stores a new conversation record and creates its message
// bucket. It generates a unique ID by combining a sequence number with the
// record's original ID, and returns the new ID.
func (b BoltDB) AddConversation(_ context.Context, record models.ConversationRecord) (string, error) {
	var newID string
	err := b.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte("conversations"))
		if b == nil {
			return nil
		}

		idPrefix, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		newID = fmt.Sprintf("%d-%s", idPrefix, record.ID)
		record.ID = newID

		_, err = tx.CreateBucketIfNotExists(messageBucketName(record.ID))
		if err != nil {
			return fmt.Errorf("failed to create message bucket: %w", err)
		}

		v, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation: %w", err)
		}

		return b.Put([]byte(newID), v)
	})

	return newID, err
}

// UpdateConversation modifies an existing conversation record. If the record
// doesn't exist, the operation is silently ignored.
func (b BoltDB) UpdateConversation(_ context.Context, record models.ConversationRecord) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte("conversations"))
		if b == nil {
			return nil
		}

		v := b.Get([]byte(record.ID))
		if v == nil {
			return nil
		}

		v, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation: %w", err)
		}

		return b.Put([]byte(record.ID), v)
	})
}

// Conversation retrieves a single conversation record by ID.
func (b BoltDB) Conversation(_ context.Context, id string) (models.ConversationRecord, error) {
	var record models.ConversationRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte("conversations"))
		if b == nil {
			return fmt.Errorf("conversation %s not found", id)
		}

		v := b.Get([]byte(id))
		if v == nil {
			return fmt.Errorf("conversation %s not found", id)
		}
		return json.Unmarshal(v, &record)
	})
	return record, err
}

// Messages retrieves all messages of the given conversation in their stored
// order.
func (b BoltDB) Messages(_ context.Context, conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := b.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(messageBucketName(conversationID))
		if b == nil {
			return nil
		}

		return b.ForEach(func(_, v []byte) error {
			var message models.Message
			if err := json.Unmarshal(v, &message); err != nil {
				return fmt.Errorf("failed to unmarshal message: %w", err)
			}
			messages = append(messages, message)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AddMessage stores a new message in the conversation's message bucket, keyed
// by a sequence number so iteration preserves insertion order.
func (b BoltDB) AddMessage(_ context.Context, conversationID string, message models.Message) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(messageBucketName(conversationID))
		if b == nil {
			return fmt.Errorf("conversation %s not found", conversationID)
		}

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		v, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		return b.Put([]byte(fmt.Sprintf("%020d", seq)), v)
	})
}
