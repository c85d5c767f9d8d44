package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("assistant: not configured")

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation. Image is only sent on user turns.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Image   *Image `json:"-"`
}

// Image is an inline picture attached to a message.
type Image struct {
	MediaType string
	Data      []byte
}

// Request is a single completion call.
type Request struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// Client sends completion requests to the hosted model and returns its text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Options configures MessagesClient.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// MessagesClient sends requests to the hosted model's Messages API.
type MessagesClient struct {
	model  string
	hasKey bool
	client anthropic.Client
}

// NewMessagesClient creates a client whose transport reports external calls
// to the New Relic transaction carried by the request context. Failed calls
// are not retried.
func NewMessagesClient(opts Options) *MessagesClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{
			Timeout:   opts.Timeout,
			Transport: newrelic.NewRoundTripper(nil),
		}),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &MessagesClient{
		model:  opts.Model,
		hasKey: opts.APIKey != "",
		client: anthropic.NewClient(reqOpts...),
	}
}

func messageParams(model string, req Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  make([]anthropic.MessageParam, 0, len(req.Messages)),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	for _, m := range req.Messages {
		var blocks []anthropic.ContentBlockParamUnion
		if m.Image != nil {
			mediaType := m.Image.MediaType
			if mediaType == "" {
				mediaType = "image/jpeg"
			}
			blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(m.Image.Data)))
		}
		blocks = append(blocks, anthropic.NewTextBlock(m.Content))

		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(blocks...))
		}
	}
	return params
}

// Complete returns the first text block of the reply, which may be empty.
func (c *MessagesClient) Complete(ctx context.Context, req Request) (string, error) {
	if !c.hasKey {
		return "", ErrNotConfigured
	}

	msg, err := c.client.Messages.New(ctx, messageParams(c.model, req))
	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
