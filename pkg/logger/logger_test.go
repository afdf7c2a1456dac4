package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func captureLogger(t *testing.T, level zerolog.Level) (*Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("LOG_FORMAT", "json")

	buf := &bytes.Buffer{}
	logg := New(Options{
		ServiceName: "test",
		Level:       level,
		Output:      buf,
	})
	return logg, buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		t.Fatalf("log line not json: %v: %s", err, buf.String())
	}
	return entry
}

func TestInfoCarriesServiceField(t *testing.T) {
	logg, buf := captureLogger(t, zerolog.InfoLevel)

	logg.Info(context.Background(), "hello")

	entry := lastLine(t, buf)
	if entry["service"] != "test" {
		t.Fatalf("missing service field: %+v", entry)
	}
	if entry["message"] != "hello" {
		t.Fatalf("unexpected message: %+v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	logg, buf := captureLogger(t, zerolog.WarnLevel)

	logg.Debug(context.Background(), "hidden")
	logg.Info(context.Background(), "also hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %s", buf.String())
	}

	logg.Warn(context.Background(), "visible")
	if buf.Len() == 0 {
		t.Fatal("expected warn output")
	}
}

func TestContextFieldsPropagate(t *testing.T) {
	logg, buf := captureLogger(t, zerolog.InfoLevel)

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithOperatorEmail(ctx, "op@pharmacy.test")
	ctx = logg.WithCustomerID(ctx, "cust-7")
	ctx = logg.WithField(ctx, "medicine_id", "m1")
	logg.Info(ctx, "cart updated")

	entry := lastLine(t, buf)
	if entry["request_id"] != "req-1" {
		t.Fatalf("missing request id: %+v", entry)
	}
	if entry["operator_email"] != "op@pharmacy.test" {
		t.Fatalf("missing operator email: %+v", entry)
	}
	if entry["customer_id"] != "cust-7" {
		t.Fatalf("missing customer id: %+v", entry)
	}
	if entry["medicine_id"] != "m1" {
		t.Fatalf("missing custom field: %+v", entry)
	}
}

func TestContextFieldsDoNotLeakAcrossContexts(t *testing.T) {
	logg, buf := captureLogger(t, zerolog.InfoLevel)

	_ = logg.WithField(context.Background(), "scoped", "value")
	logg.Info(context.Background(), "plain")

	entry := lastLine(t, buf)
	if _, ok := entry["scoped"]; ok {
		t.Fatalf("field leaked into unrelated context: %+v", entry)
	}
}

func TestErrorIncludesStack(t *testing.T) {
	logg, buf := captureLogger(t, zerolog.InfoLevel)

	logg.Error(context.Background(), "boom", errors.New("cause"))

	entry := lastLine(t, buf)
	if entry["error"] != "cause" {
		t.Fatalf("missing error field: %+v", entry)
	}
	if stack, ok := entry["stack"].(string); !ok || stack == "" {
		t.Fatalf("missing stack: %+v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.raw); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
