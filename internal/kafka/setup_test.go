package kafka

import (
	"testing"

	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBroker(t *testing.T) {
	assert.NoError(t, ValidateBroker("localhost:9092"))
	assert.Error(t, ValidateBroker(""))
	assert.Error(t, ValidateBroker("localhost"))
	assert.Error(t, ValidateBroker("localhost:port"))
}

func TestMissingTopics(t *testing.T) {
	topics := []TopicSpec{
		{Name: "mail", NumPartitions: 1, ReplicationFactor: 1},
		{Name: "audit", NumPartitions: 3, ReplicationFactor: 1},
	}

	out := missingTopics(topics, map[string]bool{"mail": true})

	require.Len(t, out, 1)
	assert.Equal(t, "audit", out[0].Topic)
	assert.Equal(t, 3, out[0].NumPartitions)
}

func TestDefaultTopics(t *testing.T) {
	assert.Equal(t, TopicMail, DefaultTopics("")[0].Name)
	assert.Equal(t, "sales-mail", DefaultTopics("sales-mail")[0].Name)
}

func TestNewSaramaConfig(t *testing.T) {
	cfg := NewConfig([]string{"localhost:9092"})
	sc := NewSaramaConfig(cfg, logger.NewNop())

	assert.True(t, sc.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
	assert.Equal(t, "customer-service", sc.ClientID)
	assert.NoError(t, sc.Validate())
}
