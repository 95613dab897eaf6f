package notify

import (
	"context"
	"fmt"

	"inmobiliaria-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier talebi e-posta olarak yollar.
type SESNotifier struct {
	client    SESAPI
	sender    string
	recipient string
}

func NewSESNotifier(ctx context.Context, region, sender, recipient string) (*SESNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSESNotifierWithClient(ses.NewFromConfig(cfg), sender, recipient), nil
}

func NewSESNotifierWithClient(client SESAPI, sender, recipient string) *SESNotifier {
	return &SESNotifier{client: client, sender: sender, recipient: recipient}
}

func (s *SESNotifier) NotifyInquiry(ctx context.Context, in models.ContactInquiry) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{s.recipient},
		},
		ReplyToAddresses: []string{in.Email},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject(in)), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body(in)), Charset: aws.String("UTF-8")},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}
