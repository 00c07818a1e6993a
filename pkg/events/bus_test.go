package events

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/uconn-hacklab/inventory-tracking/pkg/config"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
)

func setupTracer(t *testing.T) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
}

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name      string
		failUntil int
		wantCalls int
		wantErr   bool
	}{
		{"success on first attempt", 0, 1, false},
		{"success after retries", 2, 3, false},
		{"exhausts retries", 99, maxRetries, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			handler := func(_ context.Context, _ *message.Message) error {
				calls++
				if calls <= tt.failUntil {
					return errors.New("transient error")
				}
				return nil
			}

			err := retryWithBackoff(context.Background(), message.NewMessage("id", nil), handler, maxRetries, time.Millisecond, logger.Discard())
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, calls)
			}
		})
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return errors.New("error")
	}
	err := retryWithBackoff(ctx, message.NewMessage("id", nil), handler, maxRetries, time.Second, logger.Discard())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancel, got %d", calls)
	}
}

func TestStartForwarder_WithoutOutbox(t *testing.T) {
	bus := &EventBus{outbox: false}
	if err := bus.StartForwarder(context.Background()); err == nil {
		t.Fatal("expected error when Outbox is disabled")
	}
}

type payload struct {
	ItemUUID string `json:"item_uuid"`
	Quantity int64  `json:"quantity"`
}

func TestNewMessage_MetadataAndDecode(t *testing.T) {
	setupTracer(t)
	ctx, span := otel.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg, err := NewMessage(ctx, "evt-1", 1, payload{ItemUUID: "abc", Quantity: 7})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	if got := msg.Metadata.Get(MetadataEventID); got != "evt-1" {
		t.Errorf("event_id: got %q", got)
	}
	if got := msg.Metadata.Get(MetadataEventVersion); got != "1" {
		t.Errorf("event_version: got %q", got)
	}
	if msg.Metadata.Get("traceparent") == "" {
		t.Error("expected traceparent metadata")
	}

	decoded, err := Decode[payload](msg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.ItemUUID != "abc" || decoded.Quantity != 7 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestDecode_InvalidPayload(t *testing.T) {
	_, err := Decode[payload](message.NewMessage("id", []byte("{not json")))
	if err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

func TestTracePropagation_RoundTrip(t *testing.T) {
	setupTracer(t)
	ctx, span := otel.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg, err := NewMessage(ctx, "evt", 1, payload{})
	if err != nil {
		t.Fatal(err)
	}

	msgCtx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.MapCarrier(msg.Metadata))
	got := trace.SpanFromContext(msgCtx).SpanContext()
	if !got.IsValid() {
		t.Fatal("extracted span context is not valid")
	}
	if got.TraceID() != span.SpanContext().TraceID() {
		t.Errorf("trace ID mismatch: want %s, got %s", span.SpanContext().TraceID(), got.TraceID())
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	a := &slogAdapter{log: logger.NewWithWriter(&buf, "debug")}

	a.With(watermill.LogFields{"topic": "item.registered"}).Info("subscribed", nil)
	a.Error("publish failed", errors.New("boom"), watermill.LogFields{"attempt": 2})

	out := buf.String()
	for _, want := range []string{`"topic":"item.registered"`, `"error":"boom"`, `"attempt":2`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in log output: %s", want, out)
		}
	}
}

func TestEventBus_Integration(t *testing.T) {
	url := os.Getenv("INVENTORY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("INVENTORY_TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{DatabaseURL: url, ServiceName: "events-test"}
	bus, err := NewEventBus(cfg, Options{ConsumerGroup: "events-test-" + watermill.NewShortUUID(), Outbox: true}, logger.Discard())
	if err != nil {
		t.Fatalf("NewEventBus: %v", err)
	}
	defer bus.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := bus.StartForwarder(ctx); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	topic := "events_test_" + watermill.NewShortUUID()
	received := make(chan payload, 1)
	errCh, err := bus.Subscribe(ctx, topic, func(_ context.Context, msg *message.Message) error {
		p, err := Decode[payload](msg)
		if err != nil {
			return err
		}
		received <- p
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	go func() {
		for err := range errCh {
			t.Errorf("subscriber error: %v", err)
		}
	}()

	tx, err := bus.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	msg, _ := NewMessage(ctx, "evt", 1, payload{ItemUUID: "xyz", Quantity: 3})
	if err := bus.PublishTx(tx, topic, msg); err != nil {
		_ = tx.Rollback()
		t.Fatalf("PublishTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-received:
		if p.ItemUUID != "xyz" || p.Quantity != 3 {
			t.Errorf("received %+v", p)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for forwarded message")
	}
}
