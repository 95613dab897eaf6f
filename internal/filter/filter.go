// Package filter katalog kayıtlarını facet kriterlerine göre süzer.
package filter

import "inmobiliaria-backend/internal/models"

// Apply girdiyi değiştirmez; sırayı koruyan yeni bir dilim döner.
// Eşleşme yoksa boş (nil olmayan) dilim.
func Apply(records []models.Property, c Criteria) []models.Property {
	out := make([]models.Property, 0, len(records))
	if c.IsEmpty() {
		return append(out, records...)
	}
	for _, p := range records {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// IDs görünür kayıtların id listesi (seçim koordinatörü için)
func IDs(records []models.Property) []string {
	ids := make([]string, len(records))
	for i, p := range records {
		ids[i] = p.ID
	}
	return ids
}
