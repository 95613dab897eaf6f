package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inmobiliaria-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context) ([]models.Property, error) {
	var props []models.Property
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrOperationFailed, err)
	}
	return props, nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get: %v", ErrOperationFailed, err)
	}
	return &p, nil
}

// Insert id atar ve is_sold=false ile başlatır.
func (r *GormRepository) Insert(ctx context.Context, p models.Property) (*models.Property, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Sold = false
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("%w: insert: %v", ErrOperationFailed, err)
	}
	return &p, nil
}

func (r *GormRepository) Update(ctx context.Context, id string, patch Patch) (*models.Property, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := patch.Apply(*current)
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now()
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Save(&next).Error; err != nil {
		return nil, fmt.Errorf("%w: update: %v", ErrOperationFailed, err)
	}
	return &next, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Property{})
	if res.Error != nil {
		return fmt.Errorf("%w: delete: %v", ErrOperationFailed, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore silinmiş bir kaydı aynı id ile geri yazar (audit undo).
func (r *GormRepository) Restore(ctx context.Context, p models.Property) error {
	if err := r.db.WithContext(ctx).Save(&p).Error; err != nil {
		return fmt.Errorf("%w: restore: %v", ErrOperationFailed, err)
	}
	return nil
}
