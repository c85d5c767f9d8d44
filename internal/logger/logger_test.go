package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := NewWriter(&buf, logrus.InfoLevel)
	child := base.WithDriverID("d-1").WithError(errors.New("boom"))

	base.Info("parent")
	var parent map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parent); err != nil {
		t.Fatalf("expected JSON output, got %v", err)
	}
	if _, ok := parent["driver_id"]; ok {
		t.Error("expected parent logger to have no driver_id")
	}

	buf.Reset()
	child.Info("child")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %v", err)
	}
	if entry["driver_id"] != "d-1" || entry["error"] != "boom" || entry["msg"] != "child" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestLogShiftEvent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWriter(&buf, logrus.InfoLevel).LogShiftEvent("d-1", "s-1", "ended", map[string]any{"trip_count": 3})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %v", err)
	}
	if entry["event"] != "ended" || entry["shift_id"] != "s-1" || entry["trip_count"] != float64(3) {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWriter(&buf, logrus.WarnLevel)
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %s", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Error("expected warn to be written")
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	t.Parallel()

	l, err := New(Config{Level: "loud", Output: "stderr"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if l.logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level, got %v", l.logger.GetLevel())
	}
}
