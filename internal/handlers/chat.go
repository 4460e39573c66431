package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/revuai/revuchat/internal/models"
	"github.com/revuai/revuchat/internal/services"
	"github.com/tmaxmax/go-sse"
)

const maxHistoryMessages = 10

type chatRequest struct {
	Message string        `json:"message"`
	History []models.Turn `json:"history"`
}

// chatChunk is the payload of one streamed data record: a text fragment while
// the answer is in progress, or a terminal error message.
type chatChunk struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// HandleProductChat answers a user question about a product. It validates the
// request, builds a system prompt from the product's reviews, and streams the
// assistant's answer as blank-line separated "data:" records: JSON fragments
// while streaming, a JSON error record if the provider fails mid-answer, and
// the [DONE] sentinel after the last fragment.
func (m Main) HandleProductChat(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	product, ok := m.catalog.Product(productID)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "product not found")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSONError(w, http.StatusBadRequest, "message is required")
		return
	}

	history, err := validateHistory(req.History)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	history = capHistory(history)

	turns := append(history, models.Turn{Role: models.RoleUser, Content: message})
	systemPrompt := services.SystemPrompt(product)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)

	for fragment, err := range m.llm.Chat(r.Context(), systemPrompt, turns) {
		if err != nil {
			m.logger.Error("Error from llm provider",
				slog.String("productID", productID),
				slog.String(errLoggerKey, err.Error()))
			m.writeRecord(w, flusher, chatChunk{Error: "The assistant is unavailable right now. Please try again."})
			return
		}
		if fragment == "" {
			continue
		}
		if !m.writeRecord(w, flusher, chatChunk{Text: fragment}) {
			// Client went away; the context cancellation stops the provider.
			return
		}
	}

	m.writeSentinel(w, flusher)
}

// writeRecord streams one JSON chunk as a data record and reports whether the
// write succeeded.
func (m Main) writeRecord(w http.ResponseWriter, flusher http.Flusher, chunk chatChunk) bool {
	payload, err := json.Marshal(chunk)
	if err != nil {
		m.logger.Error("Failed to marshal chunk", slog.String(errLoggerKey, err.Error()))
		return false
	}
	return m.writeData(w, flusher, string(payload))
}

func (m Main) writeSentinel(w http.ResponseWriter, flusher http.Flusher) {
	m.writeData(w, flusher, "[DONE]")
}

func (m Main) writeData(w http.ResponseWriter, flusher http.Flusher, data string) bool {
	msg := sse.Message{}
	msg.AppendData(data)

	if _, err := msg.WriteTo(w); err != nil {
		m.logger.Debug("Failed to write record", slog.String(errLoggerKey, err.Error()))
		return false
	}
	if flusher != nil {
		flusher.Flush()
	}
	return true
}

// validateHistory sanitizes the conversational context from the request body.
// Each entry must carry a known role and non-blank content.
func validateHistory(history []models.Turn) ([]models.Turn, error) {
	sanitized := make([]models.Turn, 0, len(history))
	for i, turn := range history {
		if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
			return nil, fmt.Errorf("history[%d].role must be 'user' or 'assistant'", i)
		}
		if strings.TrimSpace(turn.Content) == "" {
			return nil, fmt.Errorf("history[%d].content must be a non-empty string", i)
		}
		sanitized = append(sanitized, turn)
	}
	return sanitized, nil
}

// capHistory keeps only the most recent messages so prompts stay bounded.
func capHistory(history []models.Turn) []models.Turn {
	if len(history) <= maxHistoryMessages {
		return history
	}
	return history[len(history)-maxHistoryMessages:]
}
