package audit

import (
	"errors"
	"strconv"

	"inmobiliaria-backend/internal/auth"
	"inmobiliaria-backend/internal/catalog"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/metrics"
	"inmobiliaria-backend/internal/models"
	"inmobiliaria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      string             `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	IsUndone    bool               `json:"is_undone"`
	UndoneBy    *string            `json:"undone_by"`
	UndoneAt    *string            `json:"undone_at"`
}

func toResponse(l models.AuditLog) AuditLogResponse {
	var undoneAt *string
	if l.UndoneAt != nil {
		formatted := l.UndoneAt.Format("2006-01-02 15:04:05")
		undoneAt = &formatted
	}
	return AuditLogResponse{
		ID:          l.ID,
		CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
		UserID:      l.UserID,
		UserName:    l.UserName,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Action:      l.Action,
		Description: l.Description,
		IsUndone:    l.IsUndone,
		UndoneBy:    l.UndoneBy,
		UndoneAt:    undoneAt,
	}
}

// GET /api/admin/audit-logs?entity_type=property&entity_id=...&user_id=...&limit=50
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		logs, err := svc.List(c.UserContext(), Filter{
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			UserID:     c.Query("user_id"),
			Limit:      limit,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "No se pudo listar el historial")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, toResponse(l))
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/audit-logs/:id/undo
func UndoAuditLogHandler(svc *Service, source catalog.Source, guard *catalog.Guard, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || logID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID de registro inválido")
		}

		user := auth.CurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Debe iniciar sesión")
		}

		entry, err := svc.Get(c.UserContext(), uint(logID))
		if err != nil {
			if errors.Is(err, ErrLogNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Registro no encontrado")
			}
			return fiber.NewError(fiber.StatusBadGateway, "No se pudo leer el registro")
		}

		release, err := guard.Acquire(entry.EntityID)
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, "Hay otra operación en curso sobre esta propiedad")
		}
		defer release()

		err = svc.Undo(c.UserContext(), entry, user.ID, user.Name)
		metrics.RecordMutation("undo", err)
		if err != nil {
			switch {
			case errors.Is(err, ErrAlreadyUndone):
				return fiber.NewError(fiber.StatusConflict, "Esta operación ya fue deshecha")
			case errors.Is(err, ErrNotUndoable):
				return fiber.NewError(fiber.StatusUnprocessableEntity, "Este tipo de operación no se puede deshacer")
			case errors.Is(err, store.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Propiedad no encontrada")
			}
			log.WithError(err).Error("Geri alma başarısız", map[string]interface{}{"log_id": logID})
			return fiber.NewError(fiber.StatusBadGateway, "No se pudo deshacer la operación")
		}

		source.Invalidate()
		return c.JSON(toResponse(*entry))
	}
}
