package format

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"inmobiliaria-backend/internal/models"
)

const brandName = "Laura Alba"

func PropertyTitle(p models.Property) string {
	return fmt.Sprintf("%s - %s | %s | %s", p.Title, p.Location, Price(p.Price), brandName)
}

func PropertyDescription(p models.Property) string {
	return fmt.Sprintf("%s Propiedad de %d habitaciones y %d baños en %s. %s.",
		p.Description, p.Bedrooms, p.Bathrooms, p.Location, Price(p.Price))
}

func PropertyKeywords(p models.Property) string {
	return fmt.Sprintf("%s, %s %s, propiedad lujo %s, %d habitaciones %s, bienes raíces %s",
		p.Title, p.PropertyType, p.Location, p.Location, p.Bedrooms, p.Location, p.Region)
}

var locationKeywords = map[string]string{
	"Punta Cana":    "Punta Cana propiedades lujo, villas Bávaro, resorts exclusivos, playa Caribe",
	"Santo Domingo": "Santo Domingo bienes raíces, Zona Colonial, Malecón, penthouses capital",
	"Cap Cana":      "Cap Cana exclusivo, marina privada, golf lujo, propiedades premium",
	"Puerto Plata":  "Puerto Plata villas, costa norte, montañas mar, Playa Dorada",
	"Jarabacoa":     "Jarabacoa montañas, clima primaveral, cascadas, naturaleza",
	"La Romana":     "La Romana golf, Casa de Campo, Altos de Chavón, marina",
}

func LocationKeywords(location string) string {
	if k, ok := locationKeywords[location]; ok {
		return k
	}
	return location + " propiedades lujo"
}

// OptimizedImageURL pexels görselleri için boyut parametrelerini yeniden yazar.
func OptimizedImageURL(raw string, width, height int) string {
	if !strings.Contains(raw, "pexels.com") {
		return raw
	}
	base := strings.SplitN(raw, "?", 2)[0]
	params := url.Values{}
	if width > 0 {
		params.Set("w", strconv.Itoa(width))
	}
	if height > 0 {
		params.Set("h", strconv.Itoa(height))
	}
	params.Set("auto", "compress")
	params.Set("cs", "tinysrgb")
	params.Set("fit", "crop")
	return base + "?" + params.Encode()
}

// WhatsAppLink numaradaki rakam dışı karakterleri atar.
func WhatsAppLink(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)

	link := "https://wa.me/" + digits
	if text != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link
}

func PropertyInquiryMessage(p models.Property) string {
	return fmt.Sprintf("Hola Laura, me interesa la propiedad \"%s\" en %s (%s). ¿Podría darme más información?",
		p.Title, p.Location, Price(p.Price))
}
