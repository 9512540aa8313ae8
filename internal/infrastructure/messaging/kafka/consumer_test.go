package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
)

type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error { return nil }

func (m *mockKafkaReader) commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*ProducerMessage
}

func (r *recordingPublisher) Publish(_ context.Context, msg *ProducerMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func testConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "workers",
		Topics:  []string{TopicDocumentAnalyzed},
		Retry:   RetryConfig{MaxRetries: 2, RetryBackoff: time.Millisecond, DeadLetterTopic: TopicDeadLetterDefault},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(testConsumerConfig()))

	cfg := testConsumerConfig()
	cfg.Brokers = nil
	assert.Error(t, ValidateConsumerConfig(cfg))

	cfg = testConsumerConfig()
	cfg.GroupID = ""
	assert.Error(t, ValidateConsumerConfig(cfg))

	cfg = testConsumerConfig()
	cfg.Topics = nil
	assert.Error(t, ValidateConsumerConfig(cfg))
}

func TestConsumerConfigFrom(t *testing.T) {
	cfg := ConsumerConfigFrom(config.KafkaConfig{Brokers: []string{"b:9092"}, GroupID: "g"}, TopicDocumentAnalyzed)
	assert.Equal(t, []string{TopicDocumentAnalyzed}, cfg.Topics)
	assert.Equal(t, TopicDeadLetterDefault, cfg.Retry.DeadLetterTopic)
	assert.NoError(t, ValidateConsumerConfig(cfg))
}

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{
		{Topic: TopicDocumentAnalyzed, Value: []byte("v"), Headers: []kafka.Header{{Key: "event_type", Value: []byte("x")}}},
	}}
	c := newConsumer(reader, nil, testConsumerConfig(), logging.NewNopLogger())

	got := make(chan *Message, 1)
	c.Subscribe(TopicDocumentAnalyzed, func(_ context.Context, msg *Message) error {
		got <- msg
		return nil
	})
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))

	select {
	case msg := <-got:
		assert.Equal(t, "v", string(msg.Value))
		assert.Equal(t, "x", msg.Headers["event_type"])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handler")
	}

	assert.Eventually(t, func() bool { return reader.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.Equal(t, int64(1), c.Processed())
}

func TestConsumer_UnhandledTopicIsCommitted(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{{Topic: "unknown", Value: []byte("v")}}}
	c := newConsumer(reader, nil, testConsumerConfig(), logging.NewNopLogger())
	require.NoError(t, c.Start(context.Background()))

	assert.Eventually(t, func() bool { return reader.commits() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
}

func TestProcessMessage_RetrySuccess(t *testing.T) {
	c := newConsumer(&mockKafkaReader{}, nil, testConsumerConfig(), logging.NewNopLogger())

	attempts := 0
	err := c.processMessage(context.Background(), &Message{}, func(context.Context, *Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("fail")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(1), c.metrics.MessagesRetried.Load())
}

func TestProcessMessage_DeadLettersAfterRetries(t *testing.T) {
	dl := &recordingPublisher{}
	c := newConsumer(&mockKafkaReader{}, dl, testConsumerConfig(), logging.NewNopLogger())

	msg := &Message{Topic: TopicDocumentAnalyzed, Key: []byte("k"), Value: []byte("v"), Headers: map[string]string{}}
	err := c.processMessage(context.Background(), msg, func(context.Context, *Message) error {
		return errors.New("index unavailable")
	})
	require.Error(t, err)

	require.Len(t, dl.msgs, 1)
	assert.Equal(t, TopicDeadLetterDefault, dl.msgs[0].Topic)
	assert.Equal(t, TopicDocumentAnalyzed, dl.msgs[0].Headers["original_topic"])
	assert.Equal(t, "index unavailable", dl.msgs[0].Headers["error_message"])
	assert.Empty(t, msg.Headers)
	assert.Equal(t, int64(1), c.metrics.MessagesDeadLettered.Load())
}
