package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) *mocks.SyncProducer {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return mocks.NewSyncProducer(t, cfg)
}

func TestPublishMail_Success(t *testing.T) {
	mock := newMock(t)
	record := MailRecord{To: "sales@acme.com", From: "noreply@acme.com", Subject: "New customer", Body: "<b>New customer:</b> <i>Miller</i>"}

	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got MailRecord
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got != record {
			return errors.New("unexpected record")
		}
		return nil
	})

	p := NewMailProducer(mock, "mail", logger.NewNop())
	require.NoError(t, p.PublishMail(context.Background(), record))
	require.NoError(t, p.Close())
}

func TestPublishMail_BrokerError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewMailProducer(mock, "mail", logger.NewNop())
	err := p.PublishMail(context.Background(), MailRecord{To: "sales@acme.com"})

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPublishMail_CancelledContext(t *testing.T) {
	mock := newMock(t)
	p := NewMailProducer(mock, "mail", logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.PublishMail(ctx, MailRecord{}), context.Canceled)
	require.NoError(t, p.Close())
}
