package store

import (
	"context"
	"fmt"

	"inmobiliaria-backend/internal/models"
)

// SeedIfEmpty depo boşsa statik ilanları yazar. Yazılan kayıt sayısını döner.
func SeedIfEmpty(ctx context.Context, repo Repository, props []models.Property) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, p := range props {
		if _, err := repo.Insert(ctx, p); err != nil {
			return i, fmt.Errorf("seed %s: %w", p.ID, err)
		}
	}
	return len(props), nil
}
