package notification

import (
	"context"
	"fmt"
	"html"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/kafka/producer"
	"github.com/Dhoini/customer-service/internal/metrics"
	"github.com/Dhoini/customer-service/pkg/logger"
)

const subjectNewCustomer = "New customer"

// MailConfig адреса для уведомлений
type MailConfig struct {
	From  string
	Sales string
}

// MailSender уведомляет отдел продаж о новых клиентах
type MailSender struct {
	producer producer.MailProducer
	cfg      MailConfig
	metrics  metrics.CustomerMetrics
	log      *logger.Logger
}

// NewMailSender создает отправителя уведомлений
func NewMailSender(p producer.MailProducer, cfg MailConfig, m metrics.CustomerMetrics, log *logger.Logger) *MailSender {
	return &MailSender{producer: p, cfg: cfg, metrics: m, log: log}
}

// NewCustomerRecord формирует письмо о новом клиенте
func (s *MailSender) NewCustomerRecord(customer domain.Customer) producer.MailRecord {
	return producer.MailRecord{
		To:      s.cfg.Sales,
		From:    s.cfg.From,
		Subject: subjectNewCustomer,
		Body:    fmt.Sprintf("<b>%s:</b> <i>%s</i>", subjectNewCustomer, html.EscapeString(customer.LastName)),
	}
}

// NotifyNewCustomer отправляет письмо. Ошибка доставки логируется и учитывается в метриках.
func (s *MailSender) NotifyNewCustomer(ctx context.Context, customer domain.Customer) error {
	if err := s.producer.PublishMail(ctx, s.NewCustomerRecord(customer)); err != nil {
		s.fallback(customer, err)
		return fmt.Errorf("notify new customer: %w", err)
	}
	s.metrics.IncNotification(metrics.NotificationSent)
	return nil
}

func (s *MailSender) fallback(customer domain.Customer, err error) {
	s.log.Errorw("Error sending email for new customer",
		"error", err,
		"customerID", customer.ID,
		"lastName", customer.LastName,
	)
	s.metrics.IncNotification(metrics.NotificationFailed)
}
