package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"rutaflow/internal/domain"
	"rutaflow/internal/stats"
)

func TestBuildContext(t *testing.T) {
	t.Parallel()

	report := stats.Report{
		Totals: stats.Summary{Count: 4, Net: 400, Km: 37.4, Fuel: 74.8, Minutes: 120},
		Platforms: []stats.PlatformStat{
			{Platform: domain.PlatformUber, Summary: stats.Summary{Count: 3, Net: 300}},
			{Platform: domain.PlatformDidi, Summary: stats.Summary{Count: 1, Net: 100}},
		},
		BestHours: []stats.HourStat{{Hour: 19}, {Hour: 8}},
	}
	s := domain.DefaultSettings()
	s.FuelPricePerLiter = 24.5

	got := BuildContext(report, s, 30)
	want := "Conductor Uber/Didi México. 30 días: 4 viajes, neto $400.00, 37km, $74.80 gas, 2.0hrs. " +
		"$/hr=$200.00, meta=$200.00/hr. Mejores horas: 19:00, 8:00. " +
		"Plataformas: uber:$100.00/viaje, didi:$100.00/viaje. Gas $24.5/L, 12km/L."
	if got != want {
		t.Errorf("unexpected context:\n got: %s\nwant: %s", got, want)
	}
	if BuildContext(report, s, 30) != got {
		t.Error("expected identical output for identical input")
	}
}

func TestBuildContext_NoData(t *testing.T) {
	t.Parallel()

	got := BuildContext(stats.Report{}, domain.DefaultSettings(), 30)
	if !strings.Contains(got, "Mejores horas: sin datos.") || !strings.Contains(got, "Plataformas: sin datos.") {
		t.Errorf("expected no-data markers, got %s", got)
	}
	if !strings.Contains(got, "$/hr=$0.00") {
		t.Errorf("expected zero hourly rate without time, got %s", got)
	}
}

func TestNeedsMoreData(t *testing.T) {
	t.Parallel()

	if !NeedsMoreData(4) || NeedsMoreData(5) {
		t.Error("expected the hint below five trips only")
	}
}

func TestSystemPrompt(t *testing.T) {
	t.Parallel()

	if got := SystemPrompt("X"); !strings.HasSuffix(got, "Contexto: X") {
		t.Errorf("expected summary appended, got %s", got)
	}
}

func TestParseExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
		want  Extraction
	}{
		{
			name:  "plain json",
			reply: `{"fare":85.5,"dest_km":7.2,"dest_min":18}`,
			want:  Extraction{Fare: 85.5, DestKm: 7.2, DestMin: 18},
		},
		{
			name:  "fenced",
			reply: "```json\n{\"fare\": 120, \"dest_km\": 9, \"dest_min\": 25}\n```",
			want:  Extraction{Fare: 120, DestKm: 9, DestMin: 25},
		},
		{
			name:  "camel case keys and strings",
			reply: `{"fare":"$1,250.00","destKm":"12,5","destMin":"30"}`,
			want:  Extraction{Fare: 1250, DestKm: 12.5, DestMin: 30},
		},
		{
			name:  "surrounding prose",
			reply: `Aquí está: {"fare": 64} espero que ayude`,
			want:  Extraction{Fare: 64},
		},
		{
			name:  "missing and bad values",
			reply: `{"fare":null,"dest_km":"abc","dest_min":-4}`,
			want:  Extraction{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseExtraction(tc.reply)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestParseExtraction_Unreadable(t *testing.T) {
	t.Parallel()

	for _, reply := range []string{"", "no veo nada", "{broken", "```\n```"} {
		if _, err := ParseExtraction(reply); !errors.Is(err, ErrUnreadable) {
			t.Errorf("expected ErrUnreadable for %q, got %v", reply, err)
		}
	}
	if !(Extraction{}).Empty() {
		t.Error("expected zero extraction to be empty")
	}
}

type capturedRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type   string `json:"type"`
			Text   string `json:"text"`
			Source *struct {
				Type      string `json:"type"`
				MediaType string `json:"media_type"`
				Data      string `json:"data"`
			} `json:"source"`
		} `json:"content"`
	} `json:"messages"`
}

const messageReply = `{"id":"msg_1","type":"message","role":"assistant","model":"m",` +
	`"content":[{"type":"tool_use","id":"t1","name":"x","input":{}},{"type":"text","text":"Maneja de noche."}],` +
	`"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`

func TestMessagesClient_Complete(t *testing.T) {
	t.Parallel()

	var captured capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" || r.Header.Get("x-api-key") != "secret" || r.Header.Get("anthropic-version") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageReply))
	}))
	defer server.Close()

	client := NewMessagesClient(Options{BaseURL: server.URL, APIKey: "secret", Model: "m"})
	reply, err := client.Complete(context.Background(), Request{
		System:    "sys",
		MaxTokens: 700,
		Messages: []Message{
			{Role: RoleUser, Content: "hola"},
			{Role: RoleAssistant, Content: "¿En qué te ayudo?"},
			{Role: RoleUser, Content: "¿Cuándo manejo?", Image: &Image{Data: []byte("img")}},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "Maneja de noche." {
		t.Errorf("unexpected reply %q", reply)
	}

	if captured.Model != "m" || captured.MaxTokens != 700 {
		t.Errorf("unexpected request envelope %+v", captured)
	}
	if len(captured.System) != 1 || captured.System[0].Text != "sys" {
		t.Errorf("expected system prompt, got %+v", captured.System)
	}
	if len(captured.Messages) != 3 || captured.Messages[1].Role != "assistant" {
		t.Fatalf("expected 3 messages with an assistant turn, got %+v", captured.Messages)
	}
	blocks := captured.Messages[2].Content
	if len(blocks) != 2 || blocks[0].Type != "image" || blocks[0].Source == nil {
		t.Fatalf("unexpected image block %+v", blocks)
	}
	if blocks[0].Source.MediaType != "image/jpeg" || blocks[0].Source.Data != "aW1n" {
		t.Errorf("unexpected image source %+v", blocks[0].Source)
	}
	if blocks[1].Text != "¿Cuándo manejo?" {
		t.Errorf("unexpected text block %+v", blocks[1])
	}
}

func TestMessagesClient_Errors(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"rate"}}`))
	}))
	defer server.Close()

	client := NewMessagesClient(Options{BaseURL: server.URL, APIKey: "k", Model: "m"})
	_, err := client.Complete(context.Background(), Request{MaxTokens: 10, Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429 API error, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected a single attempt, got %d", n)
	}

	unconfigured := NewMessagesClient(Options{BaseURL: server.URL})
	if _, err := unconfigured.Complete(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
