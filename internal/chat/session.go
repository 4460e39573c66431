package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/revuai/revuchat/internal/models"
)

// State is the lifecycle state of a Session. A session starts Idle, passes
// through Requesting and Streaming, and ends in exactly one of the three
// terminal states; no transition ever leaves a terminal state.
type State int

const (
	// StateIdle is the initial state, before Send is called.
	StateIdle State = iota
	// StateRequesting covers the window between issuing the request and
	// receiving the first decoded event.
	StateRequesting
	// StateStreaming means fragments are being received and applied.
	StateStreaming
	// StateCompleted means the answer was finalized.
	StateCompleted
	// StateFailed means the turn ended with a transport or assistant error.
	StateFailed
	// StateAborted means the turn was cancelled; the open message is left
	// exactly as accumulated.
	StateAborted
)

// ErrSessionDone is returned by Send when the session already ran. Sessions
// are single-use; create a fresh one per turn.
var ErrSessionDone = errors.New("session already used")

// Session drives one conversational turn: it issues the request, applies
// decoded fragments to the conversation, and resolves every outcome into the
// message log before Send returns. Request-setup failures (blank input, a turn
// still open, a spent session) are reported synchronously and cause no network
// activity; transport and assistant errors end up as errored messages; nothing
// propagates past Send as an unhandled fault.
//
// Send runs on the caller's goroutine. Cancel and State may be called from
// another goroutine, typically a signal handler.
type Session struct {
	client    *Client
	conv      *models.Conversation
	productID string

	// OnDelta, when set, is invoked after each fragment has been applied to
	// the conversation. Callers use it to echo the answer as it arrives.
	OnDelta func(fragment string)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewSession creates a session for a single turn of conv about the given
// product.
func NewSession(client *Client, conv *models.Conversation, productID string) *Session {
	return &Session{
		client:    client,
		conv:      conv,
		productID: productID,
	}
}

// Send runs the turn to a terminal state and returns it. The returned error is
// non-nil only for synchronous rejection: models.ErrEmptyMessage,
// models.ErrTurnOpen, or ErrSessionDone. Every other outcome is already
// reflected in the conversation when Send returns: the assistant message is
// final on completion, errored with the explanation text on failure, and left
// open as accumulated on cancellation.
func (s *Session) Send(ctx context.Context, text string) (State, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return state, ErrSessionDone
	}
	s.mu.Unlock()

	// History is captured before the new turn is appended, so it holds neither
	// the current question nor the fresh placeholder.
	history := s.conv.HistoryForRequest()

	_, assistantID, err := s.conv.StartTurn(text)
	if err != nil {
		return StateIdle, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.state = StateRequesting
	s.cancel = cancel
	s.mu.Unlock()

	sawDone := false
	for ev, err := range s.client.Ask(ctx, s.productID, text, history) {
		if err != nil {
			s.conv.FailTurn(assistantID, err.Error())
			return s.setState(StateFailed), nil
		}
		if ev.Done {
			sawDone = true
			break
		}
		s.setState(StateStreaming)
		if s.conv.AppendDelta(assistantID, ev.Text) && s.OnDelta != nil {
			s.OnDelta(ev.Text)
		}
	}

	if sawDone {
		s.conv.CompleteTurn(assistantID)
		return s.setState(StateCompleted), nil
	}

	// The iterator ended without a terminal event: the request was cancelled.
	// The open message stays untouched; finalizing it is the caller's call.
	return s.setState(StateAborted), nil
}

// Cancel aborts the in-flight request. It is a no-op before Send or after a
// terminal state has been reached.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCompleted || s.state == StateFailed || s.state == StateAborted {
		return s.state
	}
	s.state = state
	return s.state
}

// String returns a short name for the state, for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
