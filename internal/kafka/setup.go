package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/cenkalti/backoff/v4"
	kafkaGo "github.com/segmentio/kafka-go"
)

// TopicSpec параметры создаваемого топика
type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
}

// DefaultTopics топики, которые нужны сервису
func DefaultTopics(mailTopic string) []TopicSpec {
	if mailTopic == "" {
		mailTopic = TopicMail
	}
	return []TopicSpec{{Name: mailTopic, NumPartitions: 1, ReplicationFactor: 1}}
}

// ValidateBroker проверяет формат адреса host:port
func ValidateBroker(broker string) error {
	if strings.TrimSpace(broker) == "" {
		return errors.New("kafka broker address is empty")
	}
	_, portStr, err := net.SplitHostPort(strings.TrimSpace(broker))
	if err != nil {
		return fmt.Errorf("invalid broker address %s: %w", broker, err)
	}
	if _, err := strconv.Atoi(portStr); err != nil {
		return fmt.Errorf("invalid broker port %s: %w", broker, err)
	}
	return nil
}

// EnsureTopics проверяет и создает необходимые топики Kafka.
// Подключение повторяется с экспоненциальной задержкой не дольше maxWait.
func EnsureTopics(ctx context.Context, brokers []string, topics []TopicSpec, maxWait time.Duration, log *logger.Logger) error {
	if len(brokers) == 0 {
		return errors.New("kafka broker address is empty")
	}
	if err := ValidateBroker(brokers[0]); err != nil {
		log.Errorw("Invalid Kafka broker address", "broker", brokers[0], "error", err)
		return err
	}

	log.Infow("Ensuring Kafka topics exist...", "topics", topicNames(topics))

	var conn *kafkaGo.Conn
	connect := func() error {
		connCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		c, err := kafkaGo.DialLeader(connCtx, "tcp", brokers[0], "", 0)
		if err != nil {
			log.Warnw("Kafka broker not reachable yet", "broker", brokers[0], "error", err)
			return err
		}
		conn = c
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxWait
	if err := backoff.Retry(connect, backoff.WithContext(b, ctx)); err != nil {
		log.Errorw("Failed to connect to Kafka broker for topic creation", "broker", brokers[0], "error", err)
		return fmt.Errorf("kafka connection failed: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		log.Errorw("Failed to read partitions from Kafka", "error", err)
		return fmt.Errorf("kafka read partitions failed: %w", err)
	}

	existing := make(map[string]bool)
	for _, p := range partitions {
		existing[p.Topic] = true
	}

	toCreate := missingTopics(topics, existing)
	if len(toCreate) == 0 {
		log.Infow("All required topics already exist")
		return nil
	}

	if err := conn.CreateTopics(toCreate...); err != nil {
		if !errors.Is(err, kafkaGo.TopicAlreadyExists) {
			log.Errorw("Failed to create topics", "error", err)
			return fmt.Errorf("kafka create topics failed: %w", err)
		}
		log.Warnw("One or more topics already existed during creation attempt")
	}

	log.Infow("Successfully created topics", "count", len(toCreate))
	return nil
}

func missingTopics(topics []TopicSpec, existing map[string]bool) []kafkaGo.TopicConfig {
	var out []kafkaGo.TopicConfig
	for _, t := range topics {
		if existing[t.Name] {
			continue
		}
		out = append(out, kafkaGo.TopicConfig{
			Topic:             t.Name,
			NumPartitions:     t.NumPartitions,
			ReplicationFactor: t.ReplicationFactor,
		})
	}
	return out
}

func topicNames(topics []TopicSpec) []string {
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Name)
	}
	return names
}
