// Package format gösterim metinlerini üretir: fiyat, etiket, tarih, SEO.
// Tüm fonksiyonlar saf, yan etkisiz.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"inmobiliaria-backend/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// Price USD, ondalıksız, binlik ayraçlı: 1250000 -> "$1,250,000"
func Price(amount int64) string {
	if amount < 0 {
		return "-$" + pricePrinter.Sprintf("%d", -amount)
	}
	return "$" + pricePrinter.Sprintf("%d", amount)
}

// Number binlik ayraçlı tam sayı (alan, adet)
func Number(n int64) string {
	return pricePrinter.Sprintf("%d", n)
}

// TitleCase sadece ilk harfi büyütür.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func PluralizeCount(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

var typeLabels = map[models.PropertyType]string{
	models.PropertyTypeVilla:     "Villa",
	models.PropertyTypeApartment: "Apartamento",
	models.PropertyTypePenthouse: "Penthouse",
	models.PropertyTypeHouse:     "Casa",
}

func PropertyTypeLabel(t models.PropertyType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return TitleCase(string(t))
}

var shortMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// ShortDate es-DO kısa tarih: "18 oct 2026"
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), shortMonths[t.Month()-1], t.Year())
}

func StatusLabel(sold bool) string {
	if sold {
		return "Vendida"
	}
	return "Disponible"
}

// Truncate rune bazlı keser, kesildiyse "..." ekler.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "..."
}
