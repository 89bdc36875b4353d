package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/minhyannv/delta-chat-go/pkg/chat"
)

// recorder captures every Render call.
type recorder struct {
	calls  []string
	failOn string
}

func (r *recorder) Render(markdown string) error {
	r.calls = append(r.calls, markdown)
	if r.failOn != "" && markdown == r.failOn {
		return errors.New("render failed")
	}
	return nil
}

func streamOf(body string) *chat.Stream {
	return chat.NewStream(io.NopCloser(strings.NewReader(body)))
}

func TestDisplaySkipsEmptyLines(t *testing.T) {
	rec := &recorder{}

	n, err := Display(streamOf("# Hello\n\nWorld\n"), rec)
	if err != nil {
		t.Fatalf("Display: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rendered lines, got %d", n)
	}
	if len(rec.calls) != 2 || rec.calls[0] != "# Hello" || rec.calls[1] != "World" {
		t.Fatalf("unexpected render calls: %q", rec.calls)
	}
}

func TestDisplayStopsOnDecodeError(t *testing.T) {
	rec := &recorder{}

	n, err := Display(streamOf("first\n\xc3\x28\nafter\n"), rec)
	if !errors.Is(err, chat.ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	if n != 1 || len(rec.calls) != 1 {
		t.Fatalf("expected only the first line rendered, got %q", rec.calls)
	}
}

func TestDisplayStopsOnRenderError(t *testing.T) {
	rec := &recorder{failOn: "b"}

	n, err := Display(streamOf("a\nb\nc\n"), rec)
	if err == nil {
		t.Fatal("expected render error")
	}
	if n != 1 || len(rec.calls) != 2 {
		t.Fatalf("unexpected progress: n=%d calls=%q", n, rec.calls)
	}
}

func TestStatusErrorRenderedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "not found")
	}))
	t.Cleanup(srv.Close)

	rec := &recorder{}
	stream, err := chat.NewClient(chat.WithEndpoint(srv.URL)).Send(context.Background(), chat.NewRequest("k", "q", "", ""))
	if stream != nil {
		t.Fatal("expected no stream")
	}
	se, ok := chat.AsStatusError(err)
	if !ok {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if err := RenderStatusError(rec, se); err != nil {
		t.Fatalf("RenderStatusError: %v", err)
	}

	if len(rec.calls) != 1 {
		t.Fatalf("expected exactly one render call, got %q", rec.calls)
	}
	if !strings.Contains(rec.calls[0], "404") || !strings.Contains(rec.calls[0], "not found") {
		t.Fatalf("unexpected error message: %q", rec.calls[0])
	}
}

func TestMarkdownWritesRenderedText(t *testing.T) {
	var buf bytes.Buffer
	md, err := NewMarkdown(&buf, WithStyle("notty"), WithWordWrap(0))
	if err != nil {
		t.Fatalf("NewMarkdown: %v", err)
	}

	if err := md.Render("# Hello"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := md.Render("**World**"); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	hello := strings.Index(out, "Hello")
	world := strings.Index(out, "World")
	if hello < 0 || world < 0 || hello > world {
		t.Fatalf("expected Hello then World in output, got %q", out)
	}
}

func TestNewMarkdownUnknownStyle(t *testing.T) {
	if _, err := NewMarkdown(io.Discard, WithStyle("no-such-style")); err == nil {
		t.Fatal("expected error for unknown style")
	}
}
