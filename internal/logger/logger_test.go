package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestComponentLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, "debug", "json"), "scoring")
	log.Info().Str("assessment_id", "a1").Msg("scored")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if line["component"] != "scoring" || line["assessment_id"] != "a1" || line["message"] != "scored" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "loud", "json")
	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %s", buf.String())
	}
}
