package notify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dental-clinic/internal/config"
)

// NewEmailSender picks the provider named by EMAIL_PROVIDER.
func NewEmailSender(cfg *config.Config, log *zap.Logger) (EmailSender, error) {
	switch cfg.EmailProvider {
	case "", config.EmailStub:
		return NewStubSender(log), nil

	case config.EmailSendGrid:
		return NewSendGridSender(SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, log)

	case config.EmailSES:
		sesCfg := SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			FromEmail:       cfg.EmailFrom,
			FromName:        cfg.EmailFromName,
		}
		return NewSESSender(NewSESClient(sesCfg), sesCfg, log)

	default:
		return nil, fmt.Errorf("notify: unknown email provider %q", cfg.EmailProvider)
	}
}
