package store

import (
	"context"
	"errors"
	"fmt"

	"inmobiliaria-backend/internal/models"

	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get satır yoksa varsayılanlarla oluşturur.
func (r *SettingsRepository) Get(ctx context.Context) (models.SiteSettings, error) {
	s := models.DefaultSiteSettings()
	if err := r.db.WithContext(ctx).Where(models.SiteSettings{ID: 1}).FirstOrCreate(&s).Error; err != nil {
		return models.SiteSettings{}, fmt.Errorf("%w: settings: %v", ErrOperationFailed, err)
	}
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s models.SiteSettings) (models.SiteSettings, error) {
	s.ID = 1
	if err := r.db.WithContext(ctx).Save(&s).Error; err != nil {
		return models.SiteSettings{}, fmt.Errorf("%w: settings: %v", ErrOperationFailed, err)
	}
	return s, nil
}

type InquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

func (r *InquiryRepository) Create(ctx context.Context, in *models.ContactInquiry) error {
	if err := r.db.WithContext(ctx).Create(in).Error; err != nil {
		return fmt.Errorf("%w: inquiry: %v", ErrOperationFailed, err)
	}
	return nil
}

func (r *InquiryRepository) List(ctx context.Context, limit int) ([]models.ContactInquiry, error) {
	var out []models.ContactInquiry
	q := r.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("%w: inquiries: %v", ErrOperationFailed, err)
	}
	return out, nil
}

type AdminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var u models.AdminUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: admin user: %v", ErrOperationFailed, err)
	}
	return &u, nil
}

func (r *AdminUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: admin user: %v", ErrOperationFailed, err)
	}
	return n, nil
}

func (r *AdminUserRepository) Create(ctx context.Context, u *models.AdminUser) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("%w: admin user: %v", ErrOperationFailed, err)
	}
	return nil
}
