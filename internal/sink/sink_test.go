package sink_test

import (
	"context"
	"os"
	"testing"
	"time"

	"pricewatch/internal/logger"
	"pricewatch/internal/models"
	"pricewatch/internal/sink"
)

func TestMain(m *testing.M) {
	logger.Init("disabled")
	os.Exit(m.Run())
}

func TestLogSinkSend(t *testing.T) {
	s := sink.NewLogSink()

	alert := models.Alert{
		Product:       "Widget",
		URL:           "https://example.com/widget",
		OldPrice:      50,
		NewPrice:      45,
		ChangePercent: -10,
		Kind:          models.KindDrop,
		Timestamp:     time.Now().UTC(),
	}

	if err := s.Send(context.Background(), alert); err != nil {
		t.Errorf("Send: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestKafkaSinkConfigValidation(t *testing.T) {
	if _, err := sink.NewKafkaSink(sink.KafkaConfig{Topic: "alerts"}); err == nil {
		t.Error("expected an error without brokers")
	}
	if _, err := sink.NewKafkaSink(sink.KafkaConfig{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Error("expected an error without a topic")
	}
}

func TestKafkaSinkClosedRejectsSend(t *testing.T) {
	s, err := sink.NewKafkaSink(sink.KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "alerts",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	// Double close is safe
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if err := s.Send(context.Background(), models.Alert{}); err != sink.ErrSinkClosed {
		t.Errorf("Send after close = %v, want ErrSinkClosed", err)
	}
}
