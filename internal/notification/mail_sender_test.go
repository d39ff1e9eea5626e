package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/kafka/producer"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProducer struct {
	records []producer.MailRecord
	err     error
}

func (f *fakeProducer) PublishMail(_ context.Context, r producer.MailRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

type countingMetrics struct {
	notifications map[string]int
}

func (m *countingMetrics) IncWrite(string, string) {}
func (m *countingMetrics) IncNotification(status string) {
	m.notifications[status]++
}
func (m *countingMetrics) ObservePatchViolations(int) {}

func newSender(p producer.MailProducer) (*MailSender, *countingMetrics, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	m := &countingMetrics{notifications: map[string]int{}}
	cfg := MailConfig{From: "noreply@acme.com", Sales: "sales@acme.com"}
	return NewMailSender(p, cfg, m, logger.NewWithCore(core)), m, logs
}

func TestNotifyNewCustomer_PublishesRecord(t *testing.T) {
	p := &fakeProducer{}
	s, m, _ := newSender(p)

	err := s.NotifyNewCustomer(context.Background(), domain.Customer{ID: uuid.New(), LastName: "Miller"})

	require.NoError(t, err)
	require.Len(t, p.records, 1)
	assert.Equal(t, producer.MailRecord{
		To:      "sales@acme.com",
		From:    "noreply@acme.com",
		Subject: "New customer",
		Body:    "<b>New customer:</b> <i>Miller</i>",
	}, p.records[0])
	assert.Equal(t, 1, m.notifications["sent"])
}

func TestNotifyNewCustomer_EscapesLastName(t *testing.T) {
	s, _, _ := newSender(&fakeProducer{})

	r := s.NewCustomerRecord(domain.Customer{LastName: "<script>"})

	assert.Equal(t, "<b>New customer:</b> <i>&lt;script&gt;</i>", r.Body)
}

func TestNotifyNewCustomer_FallbackLogsAndCounts(t *testing.T) {
	s, m, logs := newSender(&fakeProducer{err: errors.New("broker down")})
	id := uuid.New()

	err := s.NotifyNewCustomer(context.Background(), domain.Customer{ID: id, LastName: "Miller"})

	require.Error(t, err)
	assert.Equal(t, 1, m.notifications["failed"])
	entries := logs.FilterMessage("Error sending email for new customer").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Miller", entries[0].ContextMap()["lastName"])
}
