package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/harborcrm/harbor/internal/config"
	"github.com/wneessen/go-mail"
)

// EmailService delivers transactional mail. Failures are surfaced to the
// orchestrator so it can roll back state that depends on delivery.
type EmailService interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// NewEmailService builds the delivery backend selected by configuration.
func NewEmailService(cfg *config.EmailConfig, logger *slog.Logger) (EmailService, error) {
	switch cfg.Provider {
	case "ses":
		return NewSESEmailService(cfg.AWSRegion, cfg.FromAddress, logger)
	case "smtp":
		return NewSMTPEmailService(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}

// SESEmailService sends mail through AWS SES.
type SESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

func NewSESEmailService(region, fromAddress string, logger *slog.Logger) (*SESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

func (s *SESEmailService) Send(ctx context.Context, recipient, subject, body string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("recipient", recipient),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("recipient", recipient),
		slog.String("message_id", *result.MessageId))

	return nil
}

// SMTPEmailService sends mail through a plain SMTP relay, the default for
// development and self-hosted deployments.
type SMTPEmailService struct {
	client      *mail.Client
	fromAddress string
	logger      *slog.Logger
}

func NewSMTPEmailService(cfg *config.EmailConfig, logger *slog.Logger) (*SMTPEmailService, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(30 * time.Second),
	}

	if cfg.SMTPUsername != "" && cfg.SMTPPassword != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	if cfg.SMTPTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPEmailService{
		client:      client,
		fromAddress: cfg.FromAddress,
		logger:      logger,
	}, nil
}

func (s *SMTPEmailService) Send(ctx context.Context, recipient, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.fromAddress); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error("failed to send email via SMTP",
			slog.String("recipient", recipient),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent", slog.String("recipient", recipient))
	return nil
}
