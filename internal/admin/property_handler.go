// Package admin yönetim panelinin JSON API'sidir.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inmobiliaria-backend/internal/audit"
	"inmobiliaria-backend/internal/auth"
	"inmobiliaria-backend/internal/catalog"
	"inmobiliaria-backend/internal/filter"
	"inmobiliaria-backend/internal/format"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/metrics"
	"inmobiliaria-backend/internal/models"
	"inmobiliaria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AuditWriter *audit.Service tarafından karşılanır.
type AuditWriter interface {
	Write(ctx context.Context, opts audit.LogOptions) error
}

// Deps ilan handler'larının ortak bağımlılıkları.
type Deps struct {
	Repo    store.Repository
	Catalog catalog.Source
	Guard   *catalog.Guard
	Audit   AuditWriter
	Log     logger.Logger
}

// -------------------------
// Request/Response Types
// -------------------------

type CreatePropertyRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Location     string              `json:"location"`
	PropertyType models.PropertyType `json:"property_type"`
	Price        int64               `json:"price"`
	Bedrooms     int                 `json:"bedrooms"`
	Bathrooms    int                 `json:"bathrooms"`
	Area         int                 `json:"area"`
	Images       []string            `json:"images"`
	Amenities    []string            `json:"amenities"`
	Featured     bool                `json:"featured"`
	Latitude     *float64            `json:"latitude"`
	Longitude    *float64            `json:"longitude"`
}

type PropertyResponse struct {
	models.Property
	TypeLabel    string `json:"type_label"`
	PriceLabel   string `json:"price_label"`
	StatusLabel  string `json:"status_label"`
	CreatedLabel string `json:"created_label"`
}

func toResponse(p models.Property) PropertyResponse {
	return PropertyResponse{
		Property:     p,
		TypeLabel:    format.PropertyTypeLabel(p.PropertyType),
		PriceLabel:   format.Price(p.Price),
		StatusLabel:  format.StatusLabel(p.Sold),
		CreatedLabel: format.ShortDate(p.CreatedAt),
	}
}

// -------------------------
// Helpers
// -------------------------

func queryGetter(c *fiber.Ctx) filter.Getter {
	return func(key string) string { return c.Query(key) }
}

// storeError depo hatasını HTTP koduna çevirir. Önbelleğe dokunulmaz.
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Propiedad no encontrada")
	case errors.Is(err, models.ErrInvalidProperty):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return fiber.NewError(fiber.StatusBadGateway, "Falló la operación en el almacén remoto")
}

const msgMutationBusy = "Hay otra operación en curso sobre esta propiedad"

func (d Deps) acquire(id string) (func(), error) {
	release, err := d.Guard.Acquire(id)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusConflict, msgMutationBusy)
	}
	return release, nil
}

// location bilinen lokasyonu döner; region buradan türetilir.
func (d Deps) location(ctx context.Context, name string) (models.Location, error) {
	snap, err := d.Catalog.Snapshot(ctx)
	if err != nil {
		return models.Location{}, fiber.NewError(fiber.StatusServiceUnavailable, "No se pudo leer el catálogo")
	}
	loc, ok := snap.LocationByName(name)
	if !ok {
		return models.Location{}, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("Ubicación desconocida: %q", name))
	}
	return loc, nil
}

// committed başarılı değişiklik sonrası: metrik, önbellek, audit.
// Audit yazılamazsa işlem geri alınmaz, sadece loglanır.
func (d Deps) committed(c *fiber.Ctx, metric string, opts audit.LogOptions) {
	d.Catalog.Invalidate()
	d.recorded(c, metric, opts)
}

// recorded önbelleğe dokunmaz; toplu işlemler invalidation'ı sonda bir kez yapar.
func (d Deps) recorded(c *fiber.Ctx, metric string, opts audit.LogOptions) {
	metrics.RecordMutation(metric, nil)

	if user := auth.CurrentUser(c); user != nil {
		opts.UserID, opts.UserName = user.ID, user.Name
	}
	opts.EntityType = audit.EntityProperty
	if err := d.Audit.Write(c.UserContext(), opts); err != nil {
		d.Log.WithError(err).Warn("Audit log yazılamadı", map[string]interface{}{"entity_id": opts.EntityID})
	}
}

func (d Deps) failed(metric, id string, err error) error {
	metrics.RecordMutation(metric, err)
	d.Log.WithError(err).Error("İlan işlemi başarısız", map[string]interface{}{
		"action": metric,
		"id":     id,
	})
	return storeError(err)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// coordinates eksik veya geçersiz koordinatı ülke merkezine çeker.
func coordinates(lat, lng *float64) models.Coordinates {
	if lat == nil || lng == nil {
		return models.DefaultCoordinates
	}
	c := models.Coordinates{Lat: *lat, Lng: *lng}
	if !c.Valid() || (c.Lat == 0 && c.Lng == 0) {
		return models.DefaultCoordinates
	}
	return c
}

// -------------------------
// Property CRUD
// -------------------------

// GET /api/admin/properties?search=...&type=villa&status=sold
func ListPropertiesHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		props, err := d.Repo.List(c.UserContext())
		if err != nil {
			d.Log.WithError(err).Error("İlanlar listelenemedi", nil)
			return storeError(err)
		}

		results := filter.Apply(props, filter.FromQuery(queryGetter(c)))
		resp := make([]PropertyResponse, 0, len(results))
		for _, p := range results {
			resp = append(resp, toResponse(p))
		}
		return c.JSON(fiber.Map{
			"properties":  resp,
			"count":       len(resp),
			"total":       len(props),
			"count_label": format.PluralizeCount(len(resp), "propiedad", "propiedades"),
		})
	}
}

// GET /api/admin/properties/:id
func GetPropertyHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := d.Repo.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return storeError(err)
		}
		return c.JSON(toResponse(*p))
	}
}

// POST /api/admin/properties
func CreatePropertyHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePropertyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		loc, err := d.location(c.UserContext(), strings.TrimSpace(body.Location))
		if err != nil {
			return err
		}

		coords := coordinates(body.Latitude, body.Longitude)
		prop := models.Property{
			ID:           uuid.NewString(),
			Title:        strings.TrimSpace(body.Title),
			Description:  strings.TrimSpace(body.Description),
			Location:     loc.Name,
			Region:       loc.Region,
			PropertyType: models.PropertyType(strings.ToLower(string(body.PropertyType))),
			Price:        body.Price,
			Bedrooms:     body.Bedrooms,
			Bathrooms:    body.Bathrooms,
			Area:         body.Area,
			Images:       cleanList(body.Images),
			Amenities:    cleanList(body.Amenities),
			Featured:     body.Featured,
			Latitude:     coords.Lat,
			Longitude:    coords.Lng,
		}
		if err := prop.Validate(); err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		release, err := d.acquire(prop.ID)
		if err != nil {
			return err
		}
		defer release()

		created, err := d.Repo.Insert(c.UserContext(), prop)
		if err != nil {
			return d.failed("create", prop.ID, err)
		}

		d.committed(c, "create", audit.LogOptions{
			EntityID:    created.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Propiedad creada: %s - %s", created.Title, format.Price(created.Price)),
			After:       created,
		})
		return c.Status(fiber.StatusCreated).JSON(toResponse(*created))
	}
}

// PUT /api/admin/properties/:id
// Sadece gönderilen alanlar değişir.
func UpdatePropertyHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var patch store.Patch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}
		if patch.Empty() {
			return fiber.NewError(fiber.StatusBadRequest, "No hay campos para actualizar")
		}

		if patch.Location != nil {
			loc, err := d.location(c.UserContext(), strings.TrimSpace(*patch.Location))
			if err != nil {
				return err
			}
			patch.Location, patch.Region = &loc.Name, &loc.Region
		}
		if patch.PropertyType != nil {
			t := models.PropertyType(strings.ToLower(string(*patch.PropertyType)))
			patch.PropertyType = &t
		}
		if patch.Images != nil {
			images := cleanList(*patch.Images)
			patch.Images = &images
		}
		if patch.Amenities != nil {
			amenities := cleanList(*patch.Amenities)
			patch.Amenities = &amenities
		}

		release, err := d.acquire(id)
		if err != nil {
			return err
		}
		defer release()

		before, err := d.Repo.Get(c.UserContext(), id)
		if err != nil {
			return d.failed("update", id, err)
		}
		after, err := d.Repo.Update(c.UserContext(), id, patch)
		if err != nil {
			return d.failed("update", id, err)
		}

		d.committed(c, "update", audit.LogOptions{
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Propiedad actualizada: %s", after.Title),
			Before:      before,
			After:       after,
		})
		return c.JSON(toResponse(*after))
	}
}

// PATCH /api/admin/properties/:id/sold
func ToggleSoldHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		release, err := d.acquire(id)
		if err != nil {
			return err
		}
		defer release()

		before, err := d.Repo.Get(c.UserContext(), id)
		if err != nil {
			return d.failed("toggle_sold", id, err)
		}
		sold := !before.Sold
		after, err := d.Repo.Update(c.UserContext(), id, store.Patch{Sold: &sold})
		if err != nil {
			return d.failed("toggle_sold", id, err)
		}

		d.committed(c, "toggle_sold", audit.LogOptions{
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s: %s", format.StatusLabel(sold), after.Title),
			Before:      before,
			After:       after,
		})
		return c.JSON(toResponse(*after))
	}
}

// DELETE /api/admin/properties/:id
func DeletePropertyHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		release, err := d.acquire(id)
		if err != nil {
			return err
		}
		defer release()

		before, err := d.Repo.Get(c.UserContext(), id)
		if err != nil {
			return d.failed("delete", id, err)
		}
		if err := d.Repo.Delete(c.UserContext(), id); err != nil {
			return d.failed("delete", id, err)
		}

		d.committed(c, "delete", audit.LogOptions{
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Propiedad eliminada: %s", before.Title),
			Before:      before,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
