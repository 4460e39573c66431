package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"

	"github.com/revuai/revuchat/internal/models"
)

// doneSentinel is the literal payload the backend sends after the last
// fragment of an answer.
const doneSentinel = "[DONE]"

// Event is one decoded unit from the assistant stream. Either Text carries an
// incremental fragment to append, or Done marks the end of the answer.
type Event struct {
	Text string
	Done bool
}

// Client issues streaming requests against the per-product chat endpoint of a
// review backend.
type Client struct {
	baseURL string

	client *http.Client

	logger *slog.Logger
}

type chatRequest struct {
	Message string        `json:"message"`
	History []models.Turn `json:"history"`
}

// chatRecord is the JSON payload of a single data record. The backend sends
// either a text fragment or a terminal error message, never both.
type chatRecord struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// NewClient creates a Client for the backend rooted at baseURL, e.g.
// "http://localhost:5001/api".
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{},
		logger:  logger.With(slog.String("module", "chat")),
	}
}

// Ask streams the assistant's answer to message about the given product. The
// history carries prior turns of the conversation; the current question goes in
// the message field only.
//
// The returned iterator yields zero or more fragment events followed by exactly
// one of: an event with Done set, or an error. Reaching the natural end of the
// response body without the explicit done sentinel counts as done. Cancelling
// the context ends the iterator without yielding anything further, so
// cancellation is never mistaken for a failure.
func (c *Client) Ask(
	ctx context.Context,
	productID string,
	message string,
	history []models.Turn,
) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		resp, err := c.doRequest(ctx, productID, message, history)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			yield(Event{}, err)
			return
		}
		defer resp.Body.Close()

		var dec streamDecoder
		chunk := make([]byte, 4096)
		for {
			n, err := resp.Body.Read(chunk)
			if n > 0 {
				for _, payload := range dec.feed(chunk[:n]) {
					c.logger.Debug("Received record", slog.String("payload", payload))

					if payload == doneSentinel {
						yield(Event{Done: true}, nil)
						return
					}

					var rec chatRecord
					if err := json.Unmarshal([]byte(payload), &rec); err != nil {
						// A single unparseable record does not fail the stream;
						// later records are independent.
						c.logger.Debug("Skipping malformed record",
							slog.String("payload", payload))
						continue
					}
					if rec.Error != "" {
						c.logger.Error("Assistant returned error",
							slog.String("error", rec.Error))
						yield(Event{}, errors.New(rec.Error))
						return
					}
					if rec.Text == "" {
						continue
					}
					if !yield(Event{Text: rec.Text}, nil) {
						return
					}
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					yield(Event{Done: true}, nil)
					return
				}
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				yield(Event{}, fmt.Errorf("error reading stream: %w", err))
				return
			}
		}
	}
}

func (c *Client) doRequest(
	ctx context.Context,
	productID string,
	message string,
	history []models.Turn,
) (*http.Response, error) {
	if history == nil {
		history = []models.Turn{}
	}
	jsonBody, err := json.Marshal(chatRequest{Message: message, History: history})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/products/%s/chat", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, errorFromResponse(resp)
	}

	return resp, nil
}

// errorFromResponse resolves a non-success response to the error field of its
// JSON body, falling back to a generic status message.
func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var rec chatRecord
	if err := json.Unmarshal(body, &rec); err == nil && rec.Error != "" {
		return errors.New(rec.Error)
	}
	return fmt.Errorf("HTTP %d", resp.StatusCode)
}
