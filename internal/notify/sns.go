package notify

import (
	"context"
	"fmt"

	"inmobiliaria-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier ajansın telefonuna SMS gönderir.
type SNSNotifier struct {
	client SNSAPI
	phone  string
}

func NewSNSNotifier(ctx context.Context, region, phone string) (*SNSNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSNSNotifierWithClient(sns.NewFromConfig(cfg), phone), nil
}

func NewSNSNotifierWithClient(client SNSAPI, phone string) *SNSNotifier {
	return &SNSNotifier{client: client, phone: phone}
}

func (s *SNSNotifier) NotifyInquiry(ctx context.Context, in models.ContactInquiry) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(s.phone),
		Message:     aws.String(shortText(in)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
