package admin

import (
	"sort"

	"inmobiliaria-backend/internal/format"
	"inmobiliaria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const recentLimit = 5

type CountItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type DashboardResponse struct {
	Total           int                `json:"total"`
	Available       int                `json:"available"`
	Sold            int                `json:"sold"`
	Featured        int                `json:"featured"`
	TotalValue      int64              `json:"total_value"`
	TotalValueLabel string             `json:"total_value_label"`
	ByType          []CountItem        `json:"by_type"`
	ByLocation      []CountItem        `json:"by_location"`
	Recent          []PropertyResponse `json:"recent"`
}

// Summarize depo sırasını (en yeni önce) korur; son eklenenler ilk 5 kayıttır.
func Summarize(props []models.Property) DashboardResponse {
	resp := DashboardResponse{
		ByType:     make([]CountItem, 0, len(models.PropertyTypes)),
		ByLocation: make([]CountItem, 0),
		Recent:     make([]PropertyResponse, 0, recentLimit),
	}

	types := map[models.PropertyType]int{}
	locations := map[string]int{}
	for _, p := range props {
		resp.Total++
		if p.Sold {
			resp.Sold++
		} else {
			resp.Available++
		}
		if p.Featured {
			resp.Featured++
		}
		resp.TotalValue += p.Price
		types[p.PropertyType]++
		locations[p.Location]++

		if len(resp.Recent) < recentLimit {
			resp.Recent = append(resp.Recent, toResponse(p))
		}
	}
	resp.TotalValueLabel = format.Price(resp.TotalValue)

	for _, t := range models.PropertyTypes {
		resp.ByType = append(resp.ByType, CountItem{
			Key:   string(t),
			Label: format.PropertyTypeLabel(t),
			Count: types[t],
		})
	}
	for name, n := range locations {
		resp.ByLocation = append(resp.ByLocation, CountItem{Key: name, Label: name, Count: n})
	}
	sort.Slice(resp.ByLocation, func(i, j int) bool {
		if resp.ByLocation[i].Count != resp.ByLocation[j].Count {
			return resp.ByLocation[i].Count > resp.ByLocation[j].Count
		}
		return resp.ByLocation[i].Key < resp.ByLocation[j].Key
	})
	return resp
}

// GET /api/admin/dashboard
func DashboardHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		props, err := d.Repo.List(c.UserContext())
		if err != nil {
			d.Log.WithError(err).Error("Dashboard verisi alınamadı", nil)
			return storeError(err)
		}
		return c.JSON(Summarize(props))
	}
}
