package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestComponentStampsFields(t *testing.T) {
	Reset()
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(prev)
	})

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf, Service: "practice-api"})
	log := Component("scheduling")
	log.Info().Str("therapy_id", "t1").Msg("session scheduled")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	if line["service"] != "practice-api" || line["component"] != "scheduling" || line["therapy_id"] != "t1" {
		t.Fatalf("unexpected fields: %+v", line)
	}
}

func TestInitIsIdempotentUntilReset(t *testing.T) {
	Reset()
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(prev)
	})

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	log := Get()
	log.Info().Msg("hello")

	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("expected the first writer to win, got first=%d second=%d", first.Len(), second.Len())
	}
}

func TestGetPanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}
