package site

import (
	"errors"

	"inmobiliaria-backend/internal/catalog"
	"inmobiliaria-backend/internal/filter"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/mapview"
	"inmobiliaria-backend/internal/metrics"
	"inmobiliaria-backend/internal/selection"

	"github.com/gofiber/fiber/v2"
)

const MapSessionCookie = "map_session"

type SelectRequest struct {
	ID string `json:"id"`
}

type mapResponse struct {
	mapview.View
	Options FilterOptions `json:"options"`
}

// mapSession cookie'deki oturumu açar ve kataloğun güncel haline göre görünür kümeyi yeniler.
func mapSession(c *fiber.Ctx, store *mapview.Store, snap catalog.Snapshot, criteria *filter.Criteria) *mapview.Session {
	sess := store.Get(c.Cookies(MapSessionCookie))
	c.Cookie(&fiber.Cookie{
		Name:     MapSessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if criteria == nil {
		cur := sess.Criteria()
		criteria = &cur
	}
	sess.Apply(snap, *criteria)
	return sess
}

func respondMap(c *fiber.Ctx, sess *mapview.Session, snap catalog.Snapshot) error {
	view := sess.View(c.QueryInt("zoom", 0))
	metrics.CatalogFilterResults.Observe(float64(view.Count))
	return c.JSON(mapResponse{View: view, Options: filterOptions(snap.LocationNames())})
}

// GET /api/map?location=&type=&priceRange=&property=<id>&zoom=
func MapHandler(src catalog.Source, store *mapview.Store, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := snapshot(c, src, log)
		if err != nil {
			return err
		}

		criteria := filter.FromQuery(queryGetter(c))
		sess := mapSession(c, store, snap, &criteria)

		// Görünür olmayan id ile ön seçim yok sayılır
		if id := c.Query("property"); id != "" {
			_ = sess.Select(id)
		}
		return respondMap(c, sess, snap)
	}
}

// POST /api/map/select {"id": "..."}
func SelectHandler(src catalog.Source, store *mapview.Store, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SelectRequest
		if err := c.BodyParser(&body); err != nil || body.ID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		snap, err := snapshot(c, src, log)
		if err != nil {
			return err
		}

		sess := mapSession(c, store, snap, nil)
		if err := sess.Select(body.ID); err != nil {
			if errors.Is(err, selection.ErrNotVisible) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, "La propiedad no está en los resultados actuales")
			}
			return err
		}
		return respondMap(c, sess, snap)
	}
}

// DELETE /api/map/select
func ClearSelectionHandler(src catalog.Source, store *mapview.Store, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := snapshot(c, src, log)
		if err != nil {
			return err
		}

		sess := mapSession(c, store, snap, nil)
		sess.Clear()
		return respondMap(c, sess, snap)
	}
}
