// Package render prints streamed chat output as terminal markdown.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/minhyannv/delta-chat-go/pkg/chat"
	loggerpkg "github.com/minhyannv/delta-chat-go/pkg/logger"
)

// Renderer formats one markdown fragment to its output.
type Renderer interface {
	Render(markdown string) error
}

// LineStream is the subset of *chat.Stream consumed by Display.
type LineStream interface {
	Next() bool
	Line() string
	Err() error
}

// Markdown renders markdown with glamour and writes the result to w.
type Markdown struct {
	w  io.Writer
	tr *glamour.TermRenderer
}

// Option configures NewMarkdown.
type Option func(*markdownOptions)

type markdownOptions struct {
	style    string
	wordWrap int
}

// WithStyle selects a glamour standard style ("dark", "light", "notty", ...).
// The default detects the terminal background.
func WithStyle(style string) Option {
	return func(o *markdownOptions) {
		o.style = strings.TrimSpace(style)
	}
}

// WithWordWrap sets the wrap column. Zero disables wrapping.
func WithWordWrap(width int) Option {
	return func(o *markdownOptions) {
		if width >= 0 {
			o.wordWrap = width
		}
	}
}

// NewMarkdown builds a glamour-backed Renderer writing to w.
func NewMarkdown(w io.Writer, opts ...Option) (*Markdown, error) {
	o := markdownOptions{wordWrap: 100}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	termOpts := []glamour.TermRendererOption{glamour.WithWordWrap(o.wordWrap)}
	if o.style == "" {
		termOpts = append(termOpts, glamour.WithAutoStyle())
	} else {
		termOpts = append(termOpts, glamour.WithStandardStyle(o.style))
	}

	tr, err := glamour.NewTermRenderer(termOpts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &Markdown{w: w, tr: tr}, nil
}

// Render formats markdown and writes it out.
func (m *Markdown) Render(markdown string) error {
	out, err := m.tr.Render(markdown)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	if _, err := io.WriteString(m.w, out); err != nil {
		return fmt.Errorf("write rendered markdown: %w", err)
	}
	return nil
}

// Display renders every non-empty line of s in arrival order, one Render call per line.
// It returns the number of lines rendered and stops at the first stream or render error.
func Display(s LineStream, r Renderer, opts ...DisplayOption) (int, error) {
	o := displayOptions{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	rendered := 0
	for s.Next() {
		line := s.Line()
		if line == "" {
			continue
		}
		if err := r.Render(line); err != nil {
			return rendered, err
		}
		rendered++
	}
	if err := s.Err(); err != nil {
		o.logger.Error("response stream failed", map[string]any{
			"rendered": rendered,
			"error":    err.Error(),
		})
		return rendered, err
	}

	o.logger.Debug("response rendered", map[string]any{"lines": rendered})
	return rendered, nil
}

// DisplayOption configures Display.
type DisplayOption func(*displayOptions)

type displayOptions struct {
	logger loggerpkg.Logger
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) DisplayOption {
	return func(o *displayOptions) {
		o.logger = loggerpkg.OrNop(l)
	}
}

// StatusErrorMarkdown formats a failed response for display.
func StatusErrorMarkdown(se *chat.StatusError) string {
	return fmt.Sprintf("Error: %d - %s", se.StatusCode, se.Body)
}

// RenderStatusError renders se as a single markdown message.
func RenderStatusError(r Renderer, se *chat.StatusError) error {
	return r.Render(StatusErrorMarkdown(se))
}
