package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
)

type mockKafkaConn struct {
	created  []kafka.TopicConfig
	existing map[string]bool
	err      error
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if len(topics) == 1 && m.existing[topics[0]] {
		return []kafka.Partition{{Topic: topics[0]}}, nil
	}
	return nil, kafka.UnknownTopicOrPartition
}

func (m *mockKafkaConn) Close() error { return nil }

func TestDefaultTopics(t *testing.T) {
	names := []string{}
	for _, tc := range DefaultTopics() {
		names = append(names, tc.Name)
	}
	assert.Equal(t, []string{TopicDocumentAnalyzed, TopicClaimScored, TopicDeadLetterDefault}, names)
}

func TestTopicManager_EnsureTopics(t *testing.T) {
	conn := &mockKafkaConn{existing: map[string]bool{TopicClaimScored: true}}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}

	require.NoError(t, m.EnsureTopics(DefaultTopics()))
	require.Len(t, conn.created, 2)
	assert.Equal(t, TopicDocumentAnalyzed, conn.created[0].Topic)
	assert.Equal(t, "retention.ms", conn.created[0].ConfigEntries[0].ConfigName)
}

func TestTopicManager_AlreadyExistsIsNotAnError(t *testing.T) {
	conn := &mockKafkaConn{err: kafka.TopicAlreadyExists}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}
	assert.NoError(t, m.CreateTopic(TopicConfig{Name: "x", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestTopicManager_Validation(t *testing.T) {
	m := &TopicManager{conn: &mockKafkaConn{}, logger: logging.NewNopLogger()}
	assert.Error(t, m.CreateTopic(TopicConfig{}))
	assert.Error(t, m.CreateTopic(TopicConfig{Name: "x"}))
}

func TestEventEnvelope_ToMessage(t *testing.T) {
	env, err := NewEventEnvelope(EventDocumentAnalyzed, "apiserver", DocumentAnalyzedPayload{DocumentID: "d1"})
	require.NoError(t, err)
	env.TraceID = "req-1"

	msg, err := env.ToMessage(TopicDocumentAnalyzed, "")
	require.NoError(t, err)
	assert.Nil(t, msg.Key)
	assert.Equal(t, "req-1", msg.Headers["trace_id"])
	assert.Equal(t, EventDocumentAnalyzed, msg.Headers["event_type"])
	assert.Equal(t, SchemaVersion, msg.Headers["schema_version"])
}

func TestEventEnvelope_DecodeEmptyPayload(t *testing.T) {
	env := &EventEnvelope{}
	var p DocumentAnalyzedPayload
	assert.Error(t, env.DecodePayload(&p))

	_, err := MessageToEventEnvelope(&Message{})
	assert.Error(t, err)
}
