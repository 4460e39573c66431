package transcript_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/revuai/revuchat/internal/models"
	"github.com/revuai/revuchat/internal/transcript"
)

func TestRender(t *testing.T) {
	renderer, err := transcript.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	record := models.ConversationRecord{
		ID:        "1-abc",
		ProductID: "p1",
		Title:     "Is it good for travel?",
		StartedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	messages := []models.Message{
		{Role: models.RoleUser, Content: "Is it good for <travel>?", Status: models.StatusFinal},
		{Role: models.RoleAssistant, Content: "Yes, **great** for travel.", Status: models.StatusFinal},
		{Role: models.RoleAssistant, Content: "rate limited", Status: models.StatusErrored},
	}

	var out bytes.Buffer
	if err := renderer.Render(&out, record, messages); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := out.String()

	if !strings.Contains(html, "Is it good for travel?") {
		t.Error("transcript missing title")
	}
	if !strings.Contains(html, "2025-03-14 09:30") {
		t.Error("transcript missing start time")
	}
	if !strings.Contains(html, "Is it good for &lt;travel&gt;?") {
		t.Error("user content should be escaped, not rendered")
	}
	if !strings.Contains(html, "<strong>great</strong>") {
		t.Error("assistant markdown should be rendered to HTML")
	}
	if !strings.Contains(html, "errored") {
		t.Error("errored message should be marked")
	}
	if strings.Contains(html, "**great**") {
		t.Error("raw markdown should not appear in the transcript")
	}
}
