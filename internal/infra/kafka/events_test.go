package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/config"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/infra/logger"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "expense",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "expense-tracker",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, asyncProducer
}

func TestPublishAccountLocked(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	lockedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	event := domain.AccountLockedEvent{
		EventID:        "event-123",
		UserID:         "user-456",
		Email:          "long@example.com",
		FailedAttempts: 5,
		LockedAt:       lockedAt,
		LockedUntil:    lockedAt.Add(2 * time.Minute),
	}

	ctx := context.WithValue(context.Background(), logger.RequestIDKey{}, "req-789")
	if err := publisher.PublishAccountLocked(ctx, event); err != nil {
		t.Fatalf("PublishAccountLocked returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "expense.auth.account.locked" {
			t.Fatalf("unexpected topic %s", msg.Topic)
		}

		raw, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("encode message: %v", err)
		}

		var envelope struct {
			EventID   string            `json:"event_id"`
			EventType string            `json:"event_type"`
			UserID    string            `json:"user_id"`
			Version   string            `json:"version"`
			Metadata  map[string]string `json:"metadata"`
			Payload   struct {
				FailedAttempts int       `json:"failed_attempts"`
				LockedUntil    time.Time `json:"locked_until"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}

		if envelope.EventID != "event-123" {
			t.Fatalf("unexpected event id %s", envelope.EventID)
		}
		if envelope.EventType != "auth.account.locked" {
			t.Fatalf("unexpected event type %s", envelope.EventType)
		}
		if envelope.UserID != "user-456" {
			t.Fatalf("unexpected user id %s", envelope.UserID)
		}
		if envelope.Payload.FailedAttempts != 5 {
			t.Fatalf("unexpected failed attempts %d", envelope.Payload.FailedAttempts)
		}
		if !envelope.Payload.LockedUntil.Equal(lockedAt.Add(2 * time.Minute)) {
			t.Fatalf("unexpected locked_until %v", envelope.Payload.LockedUntil)
		}
		if envelope.Metadata["request_id"] != "req-789" {
			t.Fatalf("expected request id metadata, got %v", envelope.Metadata)
		}
	default:
		t.Fatal("expected a produced message")
	}
}

func TestPublishUserRegisteredGeneratesEventID(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	event := domain.UserRegisteredEvent{
		UserID:       "user-456",
		Email:        "long@example.com",
		Status:       string(domain.UserStatusPending),
		RegisteredAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		OTPIssued:    true,
	}

	if err := publisher.PublishUserRegistered(context.Background(), event); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		raw, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("encode message: %v", err)
		}

		var envelope struct {
			EventID string `json:"event_id"`
			Version string `json:"version"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}

		if envelope.EventID == "" {
			t.Fatal("expected generated event id")
		}
		if envelope.Version != schemaVersion {
			t.Fatalf("unexpected version %s", envelope.Version)
		}
	default:
		t.Fatal("expected a produced message")
	}
}
