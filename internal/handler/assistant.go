package handler

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rutaflow/internal/assistant"
	"rutaflow/internal/service"
)

// maxImageBytes bounds screenshot uploads.
const maxImageBytes = 8 << 20

// AssistantHandler handles HTTP requests for the assistant.
type AssistantHandler struct {
	assistantService *service.AssistantService
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistantService *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

// ChatMessage is one prior turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the HTTP request body for a chat turn.
type ChatRequest struct {
	History  []ChatMessage `json:"history"`
	Question string        `json:"question"`
}

// ChatResponse is the HTTP response for a chat turn.
type ChatResponse struct {
	Reply         string          `json:"reply"`
	TripCount     int             `json:"trip_count"`
	NeedsMoreData bool            `json:"needs_more_data"`
	Notice        *service.Notice `json:"notice,omitempty"`
}

// ExtractRequest is the JSON form of a screenshot upload.
type ExtractRequest struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Greeting handles GET /v1/assistant
func (h *AssistantHandler) Greeting(c *gin.Context) {
	result, err := h.assistantService.Greeting(c.Request.Context(), driverID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ChatResponse{
		Reply:         result.Reply,
		TripCount:     result.TripCount,
		NeedsMoreData: result.NeedsMoreData,
	})
}

// Chat handles POST /v1/assistant/chat
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	history := make([]assistant.Message, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, assistant.Message{Role: assistant.Role(m.Role), Content: m.Content})
	}

	result, err := h.assistantService.Chat(c.Request.Context(), driverID(c), service.ChatRequest{
		History:  history,
		Question: req.Question,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ChatResponse{
		Reply:         result.Reply,
		TripCount:     result.TripCount,
		NeedsMoreData: result.NeedsMoreData,
		Notice:        result.Notice,
	})
}

// Extract handles POST /v1/assistant/extract. The image arrives either as a
// multipart "image" file or as base64 in a JSON body.
func (h *AssistantHandler) Extract(c *gin.Context) {
	req, ok := readImage(c)
	if !ok {
		return
	}

	extraction, err := h.assistantService.Extract(c.Request.Context(), driverID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, extraction)
}

func readImage(c *gin.Context) (service.ExtractRequest, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image file is required"})
			return service.ExtractRequest{}, false
		}
		if fh.Size > maxImageBytes {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "image too large"})
			return service.ExtractRequest{}, false
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return service.ExtractRequest{}, false
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
		if err != nil {
			respondError(c, err)
			return service.ExtractRequest{}, false
		}
		return service.ExtractRequest{MediaType: fh.Header.Get("Content-Type"), Image: data}, true
	}

	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return service.ExtractRequest{}, false
	}
	// Accept data URLs as produced by browsers.
	data := req.Data
	if i := strings.Index(data, ","); strings.HasPrefix(data, "data:") && i > 0 {
		if req.MediaType == "" {
			req.MediaType = strings.TrimSuffix(strings.TrimPrefix(data[:i], "data:"), ";base64")
		}
		data = data[i+1:]
	}
	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image must be base64"})
		return service.ExtractRequest{}, false
	}
	return service.ExtractRequest{MediaType: req.MediaType, Image: image}, true
}
