package mail

import (
	"context"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/config"
)

// Message is a structured delivery request.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
}

// Callback receives the asynchronous delivery outcome; nil means accepted.
type Callback func(error)

// Mailer delivers messages asynchronously. Send returns immediately; the
// outcome is reported through the callback, never to the HTTP response.
type Mailer interface {
	Send(ctx context.Context, msg Message, cb Callback)
}

type sendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
	logger   *zap.Logger
}

// NewSendGridMailer builds the SendGrid-backed mailer. With no API key
// configured it degrades to a logging stub so development flows still
// complete.
func NewSendGridMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("SENDGRID_API_KEY not set; outbound mail will only be logged")
		return &logMailer{logger: logger, from: cfg.From}
	}
	return &sendGridMailer{
		client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message, cb Callback) {
	go func() {
		from := sgmail.NewEmail(m.fromName, m.from)
		to := sgmail.NewEmail(msg.ToName, msg.To)
		email := sgmail.NewSingleEmail(from, msg.Subject, to, "", msg.HTMLBody)

		resp, err := m.client.SendWithContext(ctx, email)
		if err == nil && resp.StatusCode >= 400 {
			err = &DeliveryError{StatusCode: resp.StatusCode, Body: resp.Body}
		}
		if err != nil {
			m.logger.Error("mail delivery failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
		if cb != nil {
			cb(err)
		}
	}()
}

// DeliveryError reports a non-2xx response from the delivery provider.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return "mail provider rejected message: " + e.Body
}

// logMailer records the would-be delivery and reports success.
type logMailer struct {
	logger *zap.Logger
	from   string
}

func (m *logMailer) Send(_ context.Context, msg Message, cb Callback) {
	m.logger.Info("mail (stub)",
		zap.String("from", m.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	if cb != nil {
		cb(nil)
	}
}
