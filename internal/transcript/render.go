// Package transcript renders stored conversations to standalone HTML
// documents. Assistant answers are markdown and get rendered with goldmark;
// user questions are emitted as escaped plain text.
package transcript

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	revuchat "github.com/revuai/revuchat"
	"github.com/revuai/revuchat/internal/models"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts conversation messages into an HTML transcript.
type Renderer struct {
	markdown  goldmark.Markdown
	templates *template.Template
}

type transcriptData struct {
	Title     string
	ProductID string
	StartedAt string
	Messages  []transcriptMessage
}

type transcriptMessage struct {
	Role    string
	Status  string
	Content template.HTML
}

// NewRenderer creates a Renderer with the embedded transcript template and a
// GFM markdown renderer with syntax highlighting.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(revuchat.TemplateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("monokai"),
				),
			),
		),
		templates: tmpl,
	}, nil
}

// Render writes the HTML transcript of a conversation to w.
func (r *Renderer) Render(w io.Writer, record models.ConversationRecord, messages []models.Message) error {
	data := transcriptData{
		Title:     record.Title,
		ProductID: record.ProductID,
		StartedAt: record.StartedAt.Format("2006-01-02 15:04"),
		Messages:  make([]transcriptMessage, 0, len(messages)),
	}

	for _, msg := range messages {
		content, err := r.renderContent(msg)
		if err != nil {
			return err
		}
		data.Messages = append(data.Messages, transcriptMessage{
			Role:    string(msg.Role),
			Status:  string(msg.Status),
			Content: content,
		})
	}

	if err := r.templates.ExecuteTemplate(w, "transcript.html", data); err != nil {
		return fmt.Errorf("failed to execute transcript template: %w", err)
	}
	return nil
}

func (r *Renderer) renderContent(msg models.Message) (template.HTML, error) {
	if msg.Role != models.RoleAssistant || msg.Status == models.StatusErrored {
		var escaped bytes.Buffer
		template.HTMLEscape(&escaped, []byte(msg.Content))
		return template.HTML(escaped.String()), nil
	}

	var rendered bytes.Buffer
	if err := r.markdown.Convert([]byte(msg.Content), &rendered); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(rendered.String()), nil
}
