// Package audit admin işlemlerinin kaydını tutar ve geri alınmasını sağlar.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inmobiliaria-backend/internal/models"

	"gorm.io/gorm"
)

const EntityProperty = "property"

var (
	ErrLogNotFound   = errors.New("audit log not found")
	ErrAlreadyUndone = errors.New("audit log already undone")
	ErrNotUndoable   = errors.New("audit action cannot be undone")
)

// PropertyStore geri alma için gereken depo işlemleri.
type PropertyStore interface {
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, p models.Property) error
}

type Service struct {
	db    *gorm.DB
	props PropertyStore
}

func NewService(db *gorm.DB, props PropertyStore) *Service {
	return &Service{db: db, props: props}
}

type LogOptions struct {
	UserID      string
	UserName    string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

type Filter struct {
	EntityType string
	EntityID   string
	UserID     string
	Limit      int
}

func (s *Service) Write(ctx context.Context, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  jsonOrNull(opts.Before),
		AfterData:   jsonOrNull(opts.After),
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("loglar listelenemedi: %w", err)
	}
	return logs, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.AuditLog, error) {
	var entry models.AuditLog
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, fmt.Errorf("log okunamadı: %w", err)
	}
	return &entry, nil
}

// Undo kaydedilen işlemi tersine çevirir, log'u işaretler ve bir undo kaydı yazar.
func (s *Service) Undo(ctx context.Context, entry *models.AuditLog, userID, userName string) error {
	if entry.IsUndone {
		return ErrAlreadyUndone
	}
	if entry.EntityType != EntityProperty {
		return fmt.Errorf("%w: bilinmeyen entity tipi %s", ErrNotUndoable, entry.EntityType)
	}

	switch entry.Action {
	case models.AuditActionCreate:
		if err := s.props.Delete(ctx, entry.EntityID); err != nil {
			return fmt.Errorf("entity silinemedi: %w", err)
		}

	case models.AuditActionUpdate, models.AuditActionDelete:
		// Güncelleme ve silmede önceki hal BeforeData'dadır
		var p models.Property
		if err := json.Unmarshal([]byte(entry.BeforeData), &p); err != nil || p.ID == "" {
			return fmt.Errorf("%w: önceki hal okunamadı", ErrNotUndoable)
		}
		if err := s.props.Restore(ctx, p); err != nil {
			return fmt.Errorf("entity geri yüklenemedi: %w", err)
		}

	default:
		return ErrNotUndoable
	}

	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AuditLog{}).
			Where("id = ? AND is_undone = ?", entry.ID, false).
			Updates(map[string]interface{}{
				"is_undone": true,
				"undone_by": userID,
				"undone_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("log güncellenemedi: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyUndone
		}

		undo := models.AuditLog{
			UserID:      userID,
			UserName:    userName,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			Action:      models.AuditActionUndo,
			Description: fmt.Sprintf("Geri alındı: %s", entry.Description),
			BeforeData:  entry.AfterData,
			AfterData:   entry.BeforeData,
			Undone:      true,
		}
		if err := tx.Create(&undo).Error; err != nil {
			return fmt.Errorf("undo log kaydedilemedi: %w", err)
		}

		entry.IsUndone = true
		entry.UndoneBy = &userID
		entry.UndoneAt = &now
		return nil
	})
}

// jsonb kolonu boş string kabul etmez
func jsonOrNull(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
