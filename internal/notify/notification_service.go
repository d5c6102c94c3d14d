package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/mail"
)

// NotificationService turns lifecycle events into outbound email. Delivery is
// fire-and-forget from the request's perspective: the controller publishes
// and responds, failures surface only through the mailer callback into logs.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to the mail-bearing events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventVerificationRequested, n.handleVerificationRequested)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventClosureStarted, n.handleClosureStarted)
}

func (n *NotificationService) handleVerificationRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VerificationRequestedPayload)
	if !ok {
		n.logger.Warn("unexpected payload", zap.String("event", string(event.Type)))
		return nil
	}
	n.send(ctx, event, mail.Message{
		To:       event.Email,
		Subject:  mail.SubjectActivation,
		HTMLBody: mail.ActivationBody(payload.ActivationLink),
	})
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		n.logger.Warn("unexpected payload", zap.String("event", string(event.Type)))
		return nil
	}
	n.send(ctx, event, mail.Message{
		To:       event.Email,
		Subject:  mail.SubjectReset,
		HTMLBody: mail.ResetPasswordBody(payload.ResetLink),
	})
	return nil
}

func (n *NotificationService) handleClosureStarted(ctx context.Context, event events.Event) error {
	n.send(ctx, event, mail.Message{
		To:       event.Email,
		Subject:  mail.SubjectClosure,
		HTMLBody: mail.ClosureBody(),
	})
	return nil
}

func (n *NotificationService) send(ctx context.Context, event events.Event, msg mail.Message) {
	eventType := string(event.Type)
	n.mailer.Send(context.WithoutCancel(ctx), msg, func(err error) {
		if err != nil {
			n.logger.Error("notification delivery failed",
				zap.String("event", eventType),
				zap.String("to", msg.To),
				zap.Error(err))
			return
		}
		n.logger.Debug("notification delivered",
			zap.String("event", eventType),
			zap.String("to", msg.To))
	})
}
