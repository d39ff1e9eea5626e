package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/IBM/sarama"
)

const headerRecordType = "record_type"

// MailRecord письмо, которое почтовый сервис отправит получателю
type MailRecord struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MailProducer интерфейс для отправки писем через Kafka
type MailProducer interface {
	PublishMail(ctx context.Context, record MailRecord) error
	Close() error
}

type kafkaMailProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewMailProducer создает продюсера писем поверх sarama.SyncProducer
func NewMailProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) MailProducer {
	return &kafkaMailProducer{
		producer: producer,
		topic:    topic,
		log:      log,
	}
}

// PublishMail отправляет письмо в топик без ключа
func (p *kafkaMailProducer) PublishMail(ctx context.Context, record MailRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(record)
	if err != nil {
		p.log.Errorw("Failed to marshal mail record", "error", err)
		return fmt.Errorf("failed to marshal mail record: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerRecordType), Value: []byte("mail")},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Errorw("Failed to send mail record to Kafka", "error", err, "topic", p.topic, "to", record.To)
		return fmt.Errorf("failed to send mail record: %w", err)
	}

	p.log.Infow("Mail record published",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"subject", record.Subject,
	)
	return nil
}

func (p *kafkaMailProducer) Close() error {
	return p.producer.Close()
}
