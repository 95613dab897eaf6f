package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, f.err
}

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, f.err
}

func inquiry() models.ContactInquiry {
	return models.ContactInquiry{
		ID:               7,
		Name:             "Ana Pérez",
		Email:            "ana@example.com",
		Phone:            "+1 809 555 0100",
		Message:          "Me interesa visitar la propiedad este fin de semana.",
		PropertyInterest: "Villa Serena",
		Location:         "Punta Cana",
	}
}

func TestSESNotifier(t *testing.T) {
	client := &fakeSES{}
	n := NewSESNotifierWithClient(client, "web@lauraalba.com", "laura@lauraalba.com")

	require.NoError(t, n.NotifyInquiry(context.Background(), inquiry()))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "web@lauraalba.com", aws.ToString(in.Source))
	assert.Equal(t, []string{"laura@lauraalba.com"}, in.Destination.ToAddresses)
	assert.Equal(t, []string{"ana@example.com"}, in.ReplyToAddresses)
	assert.Equal(t, "Nueva consulta: Villa Serena", aws.ToString(in.Message.Subject.Data))
	text := aws.ToString(in.Message.Body.Text.Data)
	assert.Contains(t, text, "Teléfono: +1 809 555 0100")
	assert.Contains(t, text, "Ubicación: Punta Cana")
	assert.NotContains(t, text, "Presupuesto")

	client.err = errors.New("throttled")
	assert.ErrorContains(t, n.NotifyInquiry(context.Background(), inquiry()), "ses send email")
}

func TestSNSNotifier(t *testing.T) {
	client := &fakeSNS{}
	n := NewSNSNotifierWithClient(client, "+18095550199")

	in := inquiry()
	in.Message = strings.Repeat("a", 300)
	require.NoError(t, n.NotifyInquiry(context.Background(), in))
	require.Len(t, client.inputs, 1)

	msg := aws.ToString(client.inputs[0].Message)
	assert.Equal(t, "+18095550199", aws.ToString(client.inputs[0].PhoneNumber))
	assert.Len(t, []rune(msg), 160)
	assert.True(t, strings.HasSuffix(msg, "..."))
}

func TestMultiContinuesOnFailure(t *testing.T) {
	failing := &fakeSES{err: errors.New("down")}
	ok := &fakeSNS{}
	m := NewMulti(logger.NewNoOpLogger(),
		NewSESNotifierWithClient(failing, "a@b.co", "c@d.co"),
		NewSNSNotifierWithClient(ok, "+1"),
		Noop{},
	)

	err := m.NotifyInquiry(context.Background(), inquiry())
	assert.Error(t, err)
	assert.Len(t, failing.inputs, 1)
	assert.Len(t, ok.inputs, 1)

	assert.NoError(t, NewMulti(logger.NewNoOpLogger()).NotifyInquiry(context.Background(), inquiry()))
}

func TestSubjectWithoutProperty(t *testing.T) {
	in := inquiry()
	in.PropertyInterest = ""
	assert.Equal(t, "Nueva consulta de Ana Pérez", subject(in))
}
