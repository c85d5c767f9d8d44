package service

import (
	"context"
	"errors"
	"strings"

	"rutaflow/internal/assistant"
	"rutaflow/internal/logger"
)

// AssistantService talks to the hosted model on behalf of a driver.
type AssistantService struct {
	client              assistant.Client
	statsService        *StatsService
	settingsService     *SettingsService
	notificationService *NotificationService
	windowDays          int
	chatMaxTokens       int
	photoMaxTokens      int
	log                 *logger.Logger
}

// AssistantOptions holds the limits used for model calls.
type AssistantOptions struct {
	WindowDays     int
	ChatMaxTokens  int
	PhotoMaxTokens int
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(
	client assistant.Client,
	statsService *StatsService,
	settingsService *SettingsService,
	notificationService *NotificationService,
	opts AssistantOptions,
	log *logger.Logger,
) *AssistantService {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 30
	}
	if opts.ChatMaxTokens <= 0 {
		opts.ChatMaxTokens = 700
	}
	if opts.PhotoMaxTokens <= 0 {
		opts.PhotoMaxTokens = 200
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AssistantService{
		client:              client,
		statsService:        statsService,
		settingsService:     settingsService,
		notificationService: notificationService,
		windowDays:          opts.WindowDays,
		chatMaxTokens:       opts.ChatMaxTokens,
		photoMaxTokens:      opts.PhotoMaxTokens,
		log:                 log,
	}
}

// ChatRequest is the conversation so far plus the new question.
type ChatRequest struct {
	History  []assistant.Message
	Question string
}

// ChatResponse carries the reply. Failures to reach the model produce a
// fallback reply and a notice, not an error.
type ChatResponse struct {
	Reply         string
	Context       string
	TripCount     int
	NeedsMoreData bool
	Notice        *Notice
}

// Greeting returns the opening message and the data hint for a driver.
func (s *AssistantService) Greeting(ctx context.Context, driverID string) (*ChatResponse, error) {
	summary, count, err := s.context(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{
		Reply:         assistant.Greeting,
		Context:       summary,
		TripCount:     count,
		NeedsMoreData: assistant.NeedsMoreData(count),
	}, nil
}

// Chat answers a question using the driver's recent aggregates as context.
func (s *AssistantService) Chat(ctx context.Context, driverID string, req ChatRequest) (*ChatResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	summary, count, err := s.context(ctx, driverID)
	if err != nil {
		return nil, err
	}

	messages := make([]assistant.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		if m.Role != assistant.RoleUser && m.Role != assistant.RoleAssistant {
			continue
		}
		messages = append(messages, assistant.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, assistant.Message{Role: assistant.RoleUser, Content: question})

	resp := &ChatResponse{
		Context:       summary,
		TripCount:     count,
		NeedsMoreData: assistant.NeedsMoreData(count),
	}

	reply, err := s.client.Complete(ctx, assistant.Request{
		System:    assistant.SystemPrompt(summary),
		Messages:  messages,
		MaxTokens: s.chatMaxTokens,
	})
	switch {
	case err != nil:
		s.log.WithDriverID(driverID).WithError(err).Warn("assistant chat failed")
		resp.Reply = assistant.ConnectionErrorReply
		if s.notificationService != nil {
			resp.Notice = s.notificationService.AssistantError(ctx, driverID, assistant.ConnectionErrorReply)
		}
	case strings.TrimSpace(reply) == "":
		resp.Reply = assistant.EmptyReply
	default:
		resp.Reply = reply
	}

	return resp, nil
}

// ExtractRequest carries a screenshot of a ride offer.
type ExtractRequest struct {
	MediaType string
	Image     []byte
}

// Extract reads fare and destination figures off a screenshot. The result
// is a suggestion for the driver to confirm.
func (s *AssistantService) Extract(ctx context.Context, driverID string, req ExtractRequest) (*assistant.Extraction, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if len(req.Image) == 0 {
		return nil, ErrEmptyImage
	}

	reply, err := s.client.Complete(ctx, assistant.Request{
		MaxTokens: s.photoMaxTokens,
		Messages: []assistant.Message{{
			Role:    assistant.RoleUser,
			Content: assistant.ExtractionPrompt,
			Image:   &assistant.Image{MediaType: req.MediaType, Data: req.Image},
		}},
	})
	if err != nil {
		s.log.WithDriverID(driverID).WithError(err).Warn("assistant extraction failed")
		return nil, ErrUnreadableImage
	}

	extraction, err := assistant.ParseExtraction(reply)
	if err != nil {
		if errors.Is(err, assistant.ErrUnreadable) {
			return nil, ErrUnreadableImage
		}
		return nil, err
	}
	return &extraction, nil
}

func (s *AssistantService) context(ctx context.Context, driverID string) (string, int, error) {
	if driverID == "" {
		return "", 0, ErrInvalidDriverID
	}

	report, err := s.statsService.Report(ctx, driverID, s.windowDays)
	if err != nil {
		return "", 0, err
	}
	settings, err := s.settingsService.Get(ctx, driverID)
	if err != nil {
		return "", 0, err
	}

	return assistant.BuildContext(*report, settings, s.windowDays), report.Totals.Count, nil
}
