// Package notify iletişim formu taleplerini ajansa iletir.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/models"
)

type Notifier interface {
	NotifyInquiry(ctx context.Context, in models.ContactInquiry) error
}

type Noop struct{}

func (Noop) NotifyInquiry(context.Context, models.ContactInquiry) error { return nil }

// Multi tüm kanallara gönderir, bir kanalın hatası diğerlerini durdurmaz.
type Multi struct {
	targets []Notifier
	log     logger.Logger
}

func NewMulti(log logger.Logger, targets ...Notifier) *Multi {
	return &Multi{targets: targets, log: log}
}

func (m *Multi) NotifyInquiry(ctx context.Context, in models.ContactInquiry) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.NotifyInquiry(ctx, in); err != nil {
			m.log.WithError(err).Warn("Bildirim gönderilemedi", map[string]interface{}{
				"channel": fmt.Sprintf("%T", t),
				"inquiry": in.ID,
			})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func subject(in models.ContactInquiry) string {
	if in.PropertyInterest != "" {
		return fmt.Sprintf("Nueva consulta: %s", in.PropertyInterest)
	}
	return fmt.Sprintf("Nueva consulta de %s", in.Name)
}

func body(in models.ContactInquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nombre: %s\n", in.Name)
	fmt.Fprintf(&b, "Email: %s\n", in.Email)
	fmt.Fprintf(&b, "Teléfono: %s\n", in.Phone)
	if in.PropertyInterest != "" {
		fmt.Fprintf(&b, "Propiedad: %s\n", in.PropertyInterest)
	}
	if in.PropertyType != "" {
		fmt.Fprintf(&b, "Tipo: %s\n", in.PropertyType)
	}
	if in.Location != "" {
		fmt.Fprintf(&b, "Ubicación: %s\n", in.Location)
	}
	if in.PriceRange != "" {
		fmt.Fprintf(&b, "Presupuesto: %s\n", in.PriceRange)
	}
	fmt.Fprintf(&b, "\n%s\n", in.Message)
	return b.String()
}

// SMS için kısa özet
func shortText(in models.ContactInquiry) string {
	text := fmt.Sprintf("%s (%s, %s): %s", subject(in), in.Phone, in.Email, in.Message)
	runes := []rune(text)
	if len(runes) > 160 {
		return string(runes[:157]) + "..."
	}
	return text
}
