package handlers

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"net/http"

	"github.com/revuai/revuchat/internal/models"
)

const errLoggerKey = "err"

// LLM represents a large language model interface that provides chat
// functionality. It accepts a context, a system prompt, and the conversation
// turns so far, returning an iterator that yields response fragments and
// potential errors.
type LLM interface {
	Chat(ctx context.Context, systemPrompt string, turns []models.Turn) iter.Seq2[string, error]
}

// Catalog provides lookup of the products the assistant can be asked about.
type Catalog interface {
	Product(id string) (models.Product, bool)
}

// Main handles the HTTP surface of the assistant server, streaming answers
// from the LLM over the product chat endpoint.
type Main struct {
	llm     LLM
	catalog Catalog

	logger *slog.Logger
}

// NewMain creates a new Main instance with the provided LLM and Catalog
// implementations.
func NewMain(llm LLM, catalog Catalog, logger *slog.Logger) Main {
	return Main{
		llm:     llm,
		catalog: catalog,
		logger:  logger.With(slog.String("module", "handlers")),
	}
}

// Register installs the server's routes on mux.
func (m Main) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/products/{id}/chat", m.HandleProductChat)
	mux.HandleFunc("GET /api/health", m.HandleHealth)
}

// HandleHealth reports server liveness.
func (m Main) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
