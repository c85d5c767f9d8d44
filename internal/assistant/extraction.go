package assistant

import (
	"encoding/json"
	"errors"
	"strings"

	"rutaflow/internal/numeric"
)

// ErrUnreadable means the model reply held no JSON object at all.
var ErrUnreadable = errors.New("assistant: reply holds no readable data")

// Extraction is what could be read off a ride-offer screenshot. Every field
// is a suggestion the driver confirms before saving.
type Extraction struct {
	Fare    float64 `json:"fare"`
	DestKm  float64 `json:"dest_km"`
	DestMin float64 `json:"dest_min"`
}

// Empty reports whether nothing useful was extracted.
func (e Extraction) Empty() bool {
	return e.Fare == 0 && e.DestKm == 0 && e.DestMin == 0
}

// ParseExtraction reads a model reply. Code fences and surrounding prose are
// ignored, keys may be snake or camel case, and missing, non-numeric or
// negative values become zero.
func ParseExtraction(reply string) (Extraction, error) {
	text := strings.ReplaceAll(reply, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return Extraction{}, ErrUnreadable
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return Extraction{}, ErrUnreadable
	}

	return Extraction{
		Fare:    field(raw, "fare", "tarifa"),
		DestKm:  field(raw, "dest_km", "destKm"),
		DestMin: field(raw, "dest_min", "destMin"),
	}, nil
}

func field(raw map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return numeric.NonNegative(numeric.Coerce(v))
		}
	}
	return 0
}
