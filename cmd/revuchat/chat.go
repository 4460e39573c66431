package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/revuai/revuchat/internal/chat"
	"github.com/revuai/revuchat/internal/models"
	"github.com/revuai/revuchat/internal/services"
	"github.com/spf13/cobra"
)

const titleMaxLen = 60

var chatCmd = &cobra.Command{
	Use:   "chat <product-id>",
	Short: "Start an interactive conversation about a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context(), args[0])
	},
}

func runChat(ctx context.Context, productID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, logCloser, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	store, err := services.NewBoltDB(cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	client := chat.NewClient(cfg.BaseURL, logger)
	conv := models.NewConversation()

	record := models.ConversationRecord{
		ID:        uuid.New().String(),
		ProductID: productID,
		StartedAt: time.Now(),
	}
	record.ID, err = store.AddConversation(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	logger.Info("Conversation started",
		slog.String("conversationID", record.ID),
		slog.String("productID", productID))

	fmt.Printf("assistant> %s\n\n", models.WelcomeMessage)
	fmt.Println("Type your question, /quit to exit, Ctrl+C to cancel an answer in progress.")

	// SIGINT cancels the in-flight turn instead of killing the process.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	scanner := bufio.NewScanner(os.Stdin)
	firstTurn := true

	for {
		fmt.Print("\nyou> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			break
		}
		if line == "" {
			continue
		}

		// Drop any interrupt that arrived while waiting at the prompt.
		select {
		case <-sigCh:
		default:
		}

		fmt.Print("assistant> ")
		state := runTurn(ctx, client, conv, productID, line, sigCh)
		fmt.Println()

		switch state {
		case chat.StateAborted:
			fmt.Println("(cancelled)")
			// The aborted message keeps what it accumulated; finalize it so
			// the next turn can open.
			if open, ok := conv.Open(); ok {
				conv.CompleteTurn(open.ID)
			}
		case chat.StateFailed:
			logger.Warn("Turn failed", slog.String("conversationID", record.ID))
		case chat.StateIdle:
			// Rejected before any network activity; nothing new to persist.
			continue
		}

		persistTurn(ctx, store, logger, record.ID, conv)

		if firstTurn {
			firstTurn = false
			record.Title = turnTitle(line)
			if err := store.UpdateConversation(ctx, record); err != nil {
				logger.Error("Failed to update conversation title",
					slog.String("err", err.Error()))
			}
		}
	}

	fmt.Printf("\nSaved conversation %s\n", record.ID)
	return scanner.Err()
}

// runTurn runs a single streaming turn, echoing fragments as they arrive. A
// SIGINT received while the turn is in flight cancels only this turn.
func runTurn(
	ctx context.Context,
	client *chat.Client,
	conv *models.Conversation,
	productID string,
	line string,
	sigCh <-chan os.Signal,
) chat.State {
	sess := chat.NewSession(client, conv, productID)
	sess.OnDelta = func(fragment string) {
		fmt.Print(fragment)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			sess.Cancel()
		case <-done:
		}
	}()

	state, err := sess.Send(ctx, line)
	close(done)
	if err != nil {
		fmt.Printf("(%v)", err)
		return state
	}

	if state == chat.StateFailed {
		if msgs := conv.Messages(); len(msgs) > 0 {
			fmt.Print(msgs[len(msgs)-1].Content)
		}
	}
	return state
}

// persistTurn appends the latest user/assistant message pair to the store.
func persistTurn(
	ctx context.Context,
	store services.BoltDB,
	logger *slog.Logger,
	conversationID string,
	conv *models.Conversation,
) {
	msgs := conv.Messages()
	if len(msgs) < 2 {
		return
	}
	for _, msg := range msgs[len(msgs)-2:] {
		if err := store.AddMessage(ctx, conversationID, msg); err != nil {
			logger.Error("Failed to persist message",
				slog.String("messageID", msg.ID),
				slog.String("err", err.Error()))
		}
	}
}

func turnTitle(question string) string {
	if runes := []rune(question); len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen]) + "..."
	}
	return question
}
