package handlers_test

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/revuai/revuchat/internal/handlers"
	"github.com/revuai/revuchat/internal/models"
)

type mockLLM struct {
	responses []string
	err       error

	gotSystem string
	gotTurns  []models.Turn
}

type mockCatalog struct {
	products map[string]models.Product
}

func (m *mockLLM) Chat(
	_ context.Context,
	systemPrompt string,
	turns []models.Turn,
) iter.Seq2[string, error] {
	m.gotSystem = systemPrompt
	m.gotTurns = turns
	return func(yield func(string, error) bool) {
		for _, resp := range m.responses {
			if !yield(resp, nil) {
				return
			}
		}
		if m.err != nil {
			yield("", m.err)
		}
	}
}

func (m mockCatalog) Product(id string) (models.Product, bool) {
	p, ok := m.products[id]
	return p, ok
}

func newTestServer(llm handlers.LLM) *http.ServeMux {
	catalog := mockCatalog{products: map[string]models.Product{
		"p1": {ID: "p1", Name: "Travel Mug", Rating: 8.7},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mux := http.NewServeMux()
	handlers.NewMain(llm, catalog, logger).Register(mux)
	return mux
}

func postChat(mux *http.ServeMux, productID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost,
		"/api/products/"+productID+"/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleProductChat(t *testing.T) {
	tests := []struct {
		name       string
		productID  string
		body       string
		wantStatus int
		wantInBody []string
	}{
		{
			name:       "Streams answer and sentinel",
			productID:  "p1",
			body:       `{"message":"Is it good?","history":[]}`,
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`data: {"text":"Yes, "}`,
				`data: {"text":"it is."}`,
				"data: [DONE]",
			},
		},
		{
			name:       "Unknown product",
			productID:  "nope",
			body:       `{"message":"hi","history":[]}`,
			wantStatus: http.StatusNotFound,
			wantInBody: []string{`"error":"product not found"`},
		},
		{
			name:       "Empty message",
			productID:  "p1",
			body:       `{"message":"   ","history":[]}`,
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{`"error":"message is required"`},
		},
		{
			name:       "Invalid body",
			productID:  "p1",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{`"error":"invalid request body"`},
		},
		{
			name:       "Invalid history role",
			productID:  "p1",
			body:       `{"message":"hi","history":[{"role":"system","content":"x"}]}`,
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{`history[0].role must be 'user' or 'assistant'`},
		},
		{
			name:       "Blank history content",
			productID:  "p1",
			body:       `{"message":"hi","history":[{"role":"user","content":"  "}]}`,
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{`history[0].content must be a non-empty string`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{responses: []string{"Yes, ", "it is."}}
			w := postChat(newTestServer(llm), tt.productID, tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			for _, want := range tt.wantInBody {
				if !strings.Contains(w.Body.String(), want) {
					t.Errorf("body = %q, want it to contain %q", w.Body.String(), want)
				}
			}
		})
	}
}

func TestHandleProductChatMethodNotAllowed(t *testing.T) {
	mux := newTestServer(&mockLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/p1/chat", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleProductChatProviderError(t *testing.T) {
	llm := &mockLLM{responses: []string{"partial "}, err: fmt.Errorf("upstream down")}
	w := postChat(newTestServer(llm), "p1", `{"message":"hi","history":[]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (error is mid-stream)", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `data: {"text":"partial "}`) {
		t.Errorf("body = %q, want the fragment sent before the failure", body)
	}
	if !strings.Contains(body, `data: {"error":"The assistant is unavailable right now. Please try again."}`) {
		t.Errorf("body = %q, want a terminal error record", body)
	}
	if strings.Contains(body, "[DONE]") {
		t.Errorf("body = %q, must not contain the done sentinel after an error", body)
	}
	if strings.Contains(body, "upstream down") {
		t.Errorf("body = %q, must not leak the provider error", body)
	}
}

func TestHandleProductChatCapsHistory(t *testing.T) {
	var history []string
	for i := 0; i < 14; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, fmt.Sprintf(`{"role":%q,"content":"turn %d"}`, role, i))
	}
	body := fmt.Sprintf(`{"message":"latest","history":[%s]}`, strings.Join(history, ","))

	llm := &mockLLM{responses: []string{"ok"}}
	if w := postChat(newTestServer(llm), "p1", body); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	// 10 most recent history turns plus the new question.
	if len(llm.gotTurns) != 11 {
		t.Fatalf("turns sent to llm = %d, want 11", len(llm.gotTurns))
	}
	if llm.gotTurns[0].Content != "turn 4" {
		t.Errorf("first turn = %q, want oldest kept entry %q", llm.gotTurns[0].Content, "turn 4")
	}
	if last := llm.gotTurns[10]; last.Role != models.RoleUser || last.Content != "latest" {
		t.Errorf("last turn = %+v, want the new question", last)
	}
}

func TestHandleProductChatBuildsSystemPrompt(t *testing.T) {
	llm := &mockLLM{responses: []string{"ok"}}
	if w := postChat(newTestServer(llm), "p1", `{"message":"hi","history":[]}`); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if !strings.Contains(llm.gotSystem, "Product: Travel Mug") {
		t.Errorf("system prompt = %q, want product information", llm.gotSystem)
	}
}

func TestHandleHealth(t *testing.T) {
	mux := newTestServer(&mockLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q, want health status", w.Body.String())
	}
}
