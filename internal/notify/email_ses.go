package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	FromEmail       string
	FromName        string
}

type SESSender struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	log       *zap.Logger
}

// NewSESClient builds a client from static credentials; empty keys leave
// credential resolution to the SDK defaults.
func NewSESClient(cfg SESConfig) *sesv2.Client {
	opts := sesv2.Options{Region: cfg.Region}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		)
	}
	return sesv2.New(opts)
}

func NewSESSender(client *sesv2.Client, cfg SESConfig, log *zap.Logger) (*SESSender, error) {
	if client == nil {
		return nil, fmt.Errorf("notify: ses client is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SESSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		log:       log,
	}, nil
}

func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(msg.Body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("notify: ses send failed: %w", err)
	}

	s.log.Debug("email sent via ses",
		zap.String("subject", msg.Subject),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)
	return nil
}

var _ EmailSender = (*SESSender)(nil)
