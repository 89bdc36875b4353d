package chat

import (
	"encoding/json"
	"strings"

	"github.com/openai/openai-go"

	"github.com/minhyannv/delta-chat-go/pkg/config"
	loggerpkg "github.com/minhyannv/delta-chat-go/pkg/logger"
)

const (
	// DefaultEndpoint is the chat completion URL requests are posted to.
	DefaultEndpoint = "https://uiuc.chat/api/chat-api/chat"

	// SystemPrompt is the fixed system turn sent ahead of every user message.
	SystemPrompt = "You are a helpful AI assistant. Follow instructions carefully. Respond using markdown."

	// Temperature is fixed for every request.
	Temperature = 0.1
)

// ChatRequest is the JSON body accepted by the chat endpoint.
// The API key travels in the body, not in a header.
type ChatRequest struct {
	Model         openai.ChatModel                         `json:"model"`
	Messages      []openai.ChatCompletionMessageParamUnion `json:"messages"`
	APIKey        string                                   `json:"api_key"`
	CourseName    string                                   `json:"course_name"`
	Stream        bool                                     `json:"stream"`
	Temperature   float64                                  `json:"temperature"`
	RetrievalOnly bool                                     `json:"retrieval_only"`
}

// NewRequest builds the two-turn request for userQuery.
// Empty model and courseName fall back to the config defaults.
func NewRequest(apiKey, userQuery, model, courseName string) ChatRequest {
	if strings.TrimSpace(model) == "" {
		model = config.DefaultModel
	}
	if strings.TrimSpace(courseName) == "" {
		courseName = config.DefaultCourseName
	}
	return ChatRequest{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(userQuery),
		},
		APIKey:        apiKey,
		CourseName:    courseName,
		Stream:        true,
		Temperature:   Temperature,
		RetrievalOnly: false,
	}
}

// RequestFromConfig builds a request using the resolved configuration.
func RequestFromConfig(cfg config.Config, userQuery string) ChatRequest {
	return NewRequest(cfg.APIKey, userQuery, cfg.Model, cfg.CourseName)
}

// Encode marshals the request body.
func (r ChatRequest) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// logFields describes the request for debug logs without exposing the API key.
func (r ChatRequest) logFields() map[string]any {
	return map[string]any{
		"model":          string(r.Model),
		"messages":       len(r.Messages),
		"api_key":        loggerpkg.Redact(r.APIKey),
		"course_name":    r.CourseName,
		"stream":         r.Stream,
		"temperature":    r.Temperature,
		"retrieval_only": r.RetrievalOnly,
	}
}
