package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"inmobiliaria-backend/internal/audit"
	"inmobiliaria-backend/internal/auth"
	"inmobiliaria-backend/internal/catalog"
	"inmobiliaria-backend/internal/identity"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/models"
	"inmobiliaria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// -------------------------
// Fakes
// -------------------------

type fakeRepo struct {
	mu        sync.Mutex
	props     []models.Property
	err       error
	updateErr error
}

func (r *fakeRepo) fail() error {
	return fmt.Errorf("%w: connection reset", store.ErrOperationFailed)
}

func (r *fakeRepo) List(context.Context) ([]models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.fail()
	}
	return append([]models.Property(nil), r.props...), nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.fail()
	}
	for _, p := range r.props {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeRepo) Insert(_ context.Context, p models.Property) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.fail()
	}
	p.Sold = false
	p.CreatedAt = time.Now()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	r.props = append([]models.Property{p}, r.props...)
	return &p, nil
}

func (r *fakeRepo) Update(_ context.Context, id string, patch store.Patch) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.fail()
	}
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	for i, p := range r.props {
		if p.ID == id {
			next := patch.Apply(p)
			if err := next.Validate(); err != nil {
				return nil, err
			}
			r.props[i] = next
			return &next, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.fail()
	}
	for i, p := range r.props {
		if p.ID == id {
			r.props = append(r.props[:i], r.props[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeAudit struct {
	entries []audit.LogOptions
	err     error
}

func (a *fakeAudit) Write(_ context.Context, opts audit.LogOptions) error {
	a.entries = append(a.entries, opts)
	return a.err
}

type countingSource struct {
	catalog.Source
	invalidated int
}

func (s *countingSource) Invalidate() { s.invalidated++ }

type fakeSettings struct {
	current models.SiteSettings
	err     error
}

func (s *fakeSettings) Get(context.Context) (models.SiteSettings, error) {
	return s.current, s.err
}

func (s *fakeSettings) Save(_ context.Context, in models.SiteSettings) (models.SiteSettings, error) {
	if s.err != nil {
		return models.SiteSettings{}, s.err
	}
	in.ID = 1
	s.current = in
	return in, nil
}

type fakeInquiries struct {
	list  []models.ContactInquiry
	limit int
	err   error
}

func (f *fakeInquiries) List(_ context.Context, limit int) ([]models.ContactInquiry, error) {
	f.limit = limit
	return f.list, f.err
}

// -------------------------
// Setup
// -------------------------

func property(id, location string, t models.PropertyType, price int64, sold bool) models.Property {
	return models.Property{
		ID:           id,
		Title:        "Propiedad " + id,
		Description:  "Descripción " + id,
		Location:     location,
		Region:       "Este",
		PropertyType: t,
		Price:        price,
		Bedrooms:     3,
		Bathrooms:    2,
		Area:         180,
		Images:       []string{"https://images.example.com/" + id + ".jpg"},
		Amenities:    []string{"Piscina", "Jardín"},
		Latitude:     18.58,
		Longitude:    -68.40,
		Sold:         sold,
		CreatedAt:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

type env struct {
	app      *fiber.App
	repo     *fakeRepo
	audit    *fakeAudit
	source   *countingSource
	guard    *catalog.Guard
	settings *fakeSettings
	inquiry  *fakeInquiries
}

func newEnv(t *testing.T) *env {
	t.Helper()
	snap, err := catalog.LoadSeed()
	require.NoError(t, err)

	e := &env{
		repo: &fakeRepo{props: []models.Property{
			property("p-3", "Punta Cana", models.PropertyTypeVilla, 1250000, false),
			property("p-2", "Santo Domingo", models.PropertyTypeApartment, 350000, true),
			property("p-1", "Punta Cana", models.PropertyTypePenthouse, 800000, false),
		}},
		audit:    &fakeAudit{},
		source:   &countingSource{Source: catalog.NewStaticSource(snap)},
		guard:    catalog.NewGuard(),
		settings: &fakeSettings{current: models.DefaultSiteSettings()},
		inquiry:  &fakeInquiries{},
	}
	d := Deps{Repo: e.repo, Catalog: e.source, Guard: e.guard, Audit: e.audit, Log: logger.NewNoOpLogger()}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserKey, &identity.User{ID: "1", Name: "Laura", Email: "laura@lauraalba.com"})
		return c.Next()
	})

	api := app.Group("/api/admin")
	api.Get("/dashboard", DashboardHandler(d))
	api.Get("/properties/export", ExportPropertiesHandler(d))
	api.Post("/properties/import", ImportPropertiesHandler(d))
	api.Get("/properties", ListPropertiesHandler(d))
	api.Get("/properties/:id", GetPropertyHandler(d))
	api.Post("/properties", CreatePropertyHandler(d))
	api.Put("/properties/:id", UpdatePropertyHandler(d))
	api.Patch("/properties/:id/sold", ToggleSoldHandler(d))
	api.Delete("/properties/:id", DeletePropertyHandler(d))
	api.Get("/locations", LocationOptionsHandler(e.source, d.Log))
	api.Get("/settings", GetSettingsHandler(e.settings, d.Log))
	api.Put("/settings", UpdateSettingsHandler(e.settings, e.audit, d.Log))
	api.Get("/inquiries", ListInquiriesHandler(e.inquiry, d.Log))
	e.app = app
	return e
}

func (e *env) do(t *testing.T, method, path string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp
}

// -------------------------
// Dashboard
// -------------------------

func TestSummarize(t *testing.T) {
	props := []models.Property{
		property("a", "Punta Cana", models.PropertyTypeVilla, 1000000, false),
		property("b", "Punta Cana", models.PropertyTypeVilla, 500000, true),
		property("c", "Cap Cana", models.PropertyTypeHouse, 250000, false),
	}
	props[0].Featured = true

	got := Summarize(props)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Available)
	assert.Equal(t, 1, got.Sold)
	assert.Equal(t, 1, got.Featured)
	assert.Equal(t, int64(1750000), got.TotalValue)
	assert.Equal(t, "$1,750,000", got.TotalValueLabel)
	require.Len(t, got.ByType, 4)
	assert.Equal(t, CountItem{Key: "villa", Label: "Villa", Count: 2}, got.ByType[0])
	assert.Equal(t, CountItem{Key: "house", Label: "Casa", Count: 1}, got.ByType[3])
	assert.Equal(t, "Punta Cana", got.ByLocation[0].Key)
	assert.Len(t, got.Recent, 3)
}

func TestSummarize_RecentCappedAtFive(t *testing.T) {
	props := make([]models.Property, 0, 8)
	for i := 0; i < 8; i++ {
		props = append(props, property(fmt.Sprintf("p-%d", i), "Punta Cana", models.PropertyTypeVilla, 1, false))
	}
	got := Summarize(props)
	require.Len(t, got.Recent, 5)
	assert.Equal(t, "p-0", got.Recent[0].ID)
	assert.Equal(t, "p-4", got.Recent[4].ID)
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.Zero(t, got.Total)
	assert.Equal(t, "$0", got.TotalValueLabel)
	assert.NotNil(t, got.Recent)
	assert.NotNil(t, got.ByLocation)
}

func TestDashboardHandler(t *testing.T) {
	e := newEnv(t)

	var body DashboardResponse
	resp := e.do(t, http.MethodGet, "/api/admin/dashboard", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 1, body.Sold)
	assert.Equal(t, "$2,400,000", body.TotalValueLabel)

	e.repo.err = errors.New("down")
	resp = e.do(t, http.MethodGet, "/api/admin/dashboard", nil, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

// -------------------------
// Properties
// -------------------------

func TestListPropertiesHandler(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"p-3", "p-2", "p-1"}},
		{"sold", "?status=sold", []string{"p-2"}},
		{"available", "?status=available", []string{"p-3", "p-1"}},
		{"type", "?type=penthouse", []string{"p-1"}},
		{"search", "?search=santo", []string{"p-2"}},
		{"unknown type ignored", "?type=castle", []string{"p-3", "p-2", "p-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Properties []PropertyResponse `json:"properties"`
				Count      int                `json:"count"`
				Total      int                `json:"total"`
			}
			resp := e.do(t, http.MethodGet, "/api/admin/properties"+tt.query, nil, &body)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			ids := make([]string, 0, len(body.Properties))
			for _, p := range body.Properties {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), body.Count)
			assert.Equal(t, 3, body.Total)
		})
	}
}

func TestGetPropertyHandler(t *testing.T) {
	e := newEnv(t)

	var body PropertyResponse
	resp := e.do(t, http.MethodGet, "/api/admin/properties/p-2", nil, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Apartamento", body.TypeLabel)
	assert.Equal(t, "$350,000", body.PriceLabel)
	assert.Equal(t, "Vendida", body.StatusLabel)
	assert.Equal(t, "1 oct 2026", body.CreatedLabel)

	var errBody map[string]string
	resp = e.do(t, http.MethodGet, "/api/admin/properties/missing", nil, &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Propiedad no encontrada", errBody["error"])
}

func TestCreatePropertyHandler(t *testing.T) {
	e := newEnv(t)

	var body PropertyResponse
	resp := e.do(t, http.MethodPost, "/api/admin/properties", fiber.Map{
		"title":         "  Villa Nueva ",
		"location":      "Cap Cana",
		"property_type": "Villa",
		"price":         900000,
		"bedrooms":      4,
		"bathrooms":     3,
		"area":          300,
		"images":        []string{"https://images.example.com/nueva.jpg", "  "},
		"amenities":     []string{"Piscina"},
	}, &body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "Villa Nueva", body.Title)
	assert.Equal(t, "Este", body.Region)
	assert.Equal(t, models.PropertyTypeVilla, body.PropertyType)
	assert.False(t, body.Sold)
	assert.Equal(t, models.DefaultCoordinates, body.Coordinates())
	assert.Equal(t, []string{"https://images.example.com/nueva.jpg"}, []string(body.Images))

	assert.Equal(t, 1, e.source.invalidated)
	require.Len(t, e.audit.entries, 1)
	entry := e.audit.entries[0]
	assert.Equal(t, models.AuditActionCreate, entry.Action)
	assert.Equal(t, audit.EntityProperty, entry.EntityType)
	assert.Equal(t, body.ID, entry.EntityID)
	assert.Equal(t, "Laura", entry.UserName)

	list, _ := e.repo.List(context.Background())
	assert.Len(t, list, 4)
}

func TestCreatePropertyHandler_Coordinates(t *testing.T) {
	tests := []struct {
		name string
		lat  interface{}
		lng  interface{}
		want models.Coordinates
	}{
		{"given", 18.45, -69.95, models.Coordinates{Lat: 18.45, Lng: -69.95}},
		{"out of range", 120.0, -69.95, models.DefaultCoordinates},
		{"zero", 0.0, 0.0, models.DefaultCoordinates},
		{"only lat", 18.45, nil, models.DefaultCoordinates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			var body PropertyResponse
			resp := e.do(t, http.MethodPost, "/api/admin/properties", fiber.Map{
				"title":         "Casa",
				"location":      "Santo Domingo",
				"property_type": "house",
				"price":         200000,
				"area":          120,
				"images":        []string{"https://images.example.com/casa.jpg"},
				"latitude":      tt.lat,
				"longitude":     tt.lng,
			}, &body)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			assert.Equal(t, tt.want, body.Coordinates())
		})
	}
}

func TestCreatePropertyHandler_Rejects(t *testing.T) {
	valid := func() fiber.Map {
		return fiber.Map{
			"title":         "Villa",
			"location":      "Punta Cana",
			"property_type": "villa",
			"price":         100,
			"area":          100,
			"images":        []string{"https://images.example.com/v.jpg"},
		}
	}

	tests := []struct {
		name   string
		mutate func(fiber.Map)
		status int
	}{
		{"unknown location", func(m fiber.Map) { m["location"] = "Atlantis" }, http.StatusUnprocessableEntity},
		{"missing title", func(m fiber.Map) { m["title"] = " " }, http.StatusUnprocessableEntity},
		{"bad type", func(m fiber.Map) { m["property_type"] = "castle" }, http.StatusUnprocessableEntity},
		{"zero area", func(m fiber.Map) { m["area"] = 0 }, http.StatusUnprocessableEntity},
		{"no images", func(m fiber.Map) { m["images"] = []string{} }, http.StatusUnprocessableEntity},
		{"negative price", func(m fiber.Map) { m["price"] = -1 }, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			body := valid()
			tt.mutate(body)
			resp := e.do(t, http.MethodPost, "/api/admin/properties", body, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Zero(t, e.source.invalidated)
			assert.Empty(t, e.audit.entries)
		})
	}
}

func TestCreatePropertyHandler_StoreFailure(t *testing.T) {
	e := newEnv(t)
	e.repo.err = errors.New("down")

	resp := e.do(t, http.MethodPost, "/api/admin/properties", fiber.Map{
		"title":         "Villa",
		"location":      "Punta Cana",
		"property_type": "villa",
		"price":         100,
		"area":          100,
		"images":        []string{"https://images.example.com/v.jpg"},
	}, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Zero(t, e.source.invalidated)
	assert.Empty(t, e.audit.entries)
}

func TestUpdatePropertyHandler(t *testing.T) {
	e := newEnv(t)

	var body PropertyResponse
	resp := e.do(t, http.MethodPut, "/api/admin/properties/p-1", fiber.Map{
		"price":    950000,
		"location": "Santo Domingo",
	}, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(950000), body.Price)
	assert.Equal(t, "Santo Domingo", body.Location)
	assert.Equal(t, "Distrito Nacional", body.Region)
	assert.Equal(t, "Propiedad p-1", body.Title)

	require.Len(t, e.audit.entries, 1)
	before, ok := e.audit.entries[0].Before.(*models.Property)
	require.True(t, ok)
	assert.Equal(t, int64(800000), before.Price)
	assert.Equal(t, 1, e.source.invalidated)
}

func TestUpdatePropertyHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   fiber.Map
		status int
	}{
		{"empty patch", "/api/admin/properties/p-1", fiber.Map{}, http.StatusBadRequest},
		{"not found", "/api/admin/properties/missing", fiber.Map{"price": 1}, http.StatusNotFound},
		{"unknown location", "/api/admin/properties/p-1", fiber.Map{"location": "Atlantis"}, http.StatusUnprocessableEntity},
		{"invalid result", "/api/admin/properties/p-1", fiber.Map{"area": 0}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			resp := e.do(t, http.MethodPut, tt.path, tt.body, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Zero(t, e.source.invalidated)
		})
	}
}

func TestToggleSoldHandler(t *testing.T) {
	e := newEnv(t)

	var body PropertyResponse
	e.do(t, http.MethodPatch, "/api/admin/properties/p-1/sold", nil, &body)
	assert.True(t, body.Sold)
	assert.Equal(t, "Vendida", body.StatusLabel)

	e.do(t, http.MethodPatch, "/api/admin/properties/p-1/sold", nil, &body)
	assert.False(t, body.Sold)

	assert.Equal(t, 2, e.source.invalidated)
	assert.Len(t, e.audit.entries, 2)
}

func TestDeletePropertyHandler(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodDelete, "/api/admin/properties/p-2", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/admin/properties/p-2", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.Len(t, e.audit.entries, 1)
	assert.Equal(t, models.AuditActionDelete, e.audit.entries[0].Action)
	assert.NotNil(t, e.audit.entries[0].Before)
	assert.Equal(t, 1, e.source.invalidated)

	resp = e.do(t, http.MethodDelete, "/api/admin/properties/p-2", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMutationGuardConflict(t *testing.T) {
	e := newEnv(t)
	release, err := e.guard.Acquire("p-1")
	require.NoError(t, err)

	for _, req := range []struct{ method, path string }{
		{http.MethodPut, "/api/admin/properties/p-1"},
		{http.MethodPatch, "/api/admin/properties/p-1/sold"},
		{http.MethodDelete, "/api/admin/properties/p-1"},
	} {
		resp := e.do(t, req.method, req.path, fiber.Map{"price": 1}, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode, req.method)
	}

	release()
	resp := e.do(t, http.MethodPatch, "/api/admin/properties/p-1/sold", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	e := newEnv(t)
	e.audit.err = errors.New("audit down")

	resp := e.do(t, http.MethodPatch, "/api/admin/properties/p-3/sold", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, e.source.invalidated)
}

// -------------------------
// Settings, inquiries, locations
// -------------------------

func TestSettingsHandlers(t *testing.T) {
	e := newEnv(t)

	var got models.SiteSettings
	resp := e.do(t, http.MethodGet, "/api/admin/settings", nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Laura Alba Real Estate", got.SiteName)

	update := models.DefaultSiteSettings()
	update.SiteName = "Laura Alba"
	update.ContactEmail = " Info@LauraAlba.com "
	resp = e.do(t, http.MethodPut, "/api/admin/settings", update, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Laura Alba", got.SiteName)
	assert.Equal(t, "info@lauraalba.com", got.ContactEmail)
	assert.Equal(t, "Laura Alba", e.settings.current.SiteName)

	require.Len(t, e.audit.entries, 1)
	assert.Equal(t, "settings", e.audit.entries[0].EntityType)
}

func TestUpdateSettingsHandler_Invalid(t *testing.T) {
	e := newEnv(t)

	update := models.DefaultSiteSettings()
	update.SiteName = ""
	update.ContactEmail = "no-es-email"
	update.WhatsAppNumber = "123"

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	resp := e.do(t, http.MethodPut, "/api/admin/settings", update, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body.Fields, "site_name")
	assert.Contains(t, body.Fields, "contact_email")
	assert.Contains(t, body.Fields, "whatsapp_number")
	assert.Empty(t, e.audit.entries)
}

func TestSettingsHandlers_StoreFailure(t *testing.T) {
	e := newEnv(t)
	e.settings.err = errors.New("down")

	resp := e.do(t, http.MethodGet, "/api/admin/settings", nil, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp = e.do(t, http.MethodPut, "/api/admin/settings", models.DefaultSiteSettings(), nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestListInquiriesHandler(t *testing.T) {
	e := newEnv(t)
	e.inquiry.list = []models.ContactInquiry{{ID: 2, Name: "Ana"}, {ID: 1, Name: "Carlos"}}

	var body struct {
		Inquiries []models.ContactInquiry `json:"inquiries"`
		Count     int                     `json:"count"`
	}
	resp := e.do(t, http.MethodGet, "/api/admin/inquiries?limit=9999", nil, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, 100, e.inquiry.limit)

	e.inquiry.list = nil
	resp = e.do(t, http.MethodGet, "/api/admin/inquiries?limit=20", nil, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Inquiries)
	assert.Equal(t, 20, e.inquiry.limit)
}

func TestLocationOptionsHandler(t *testing.T) {
	e := newEnv(t)

	var body struct {
		Locations []LocationOption `json:"locations"`
		Regions   []string         `json:"regions"`
		Types     []TypeOption     `json:"types"`
	}
	resp := e.do(t, http.MethodGet, "/api/admin/locations", nil, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body.Locations, 8)
	assert.Equal(t, "Punta Cana", body.Locations[0].Value)
	assert.Equal(t, []string{"Este", "Distrito Nacional", "Norte", "Cibao", "Sur"}, body.Regions)
	assert.Len(t, body.Types, 4)
}

// -------------------------
// Spreadsheet
// -------------------------

func workbookBytes(t *testing.T, f *excelize.File) []byte {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func upload(t *testing.T, app *fiber.App, path, filename string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestExportPropertiesHandler(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/api/admin/properties/export", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "propiedades-")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Título", rows[0][colTitle])
	assert.Equal(t, "p-3", rows[1][colID])
	assert.Equal(t, "1250000", rows[1][colPrice])
	assert.Equal(t, "Piscina|Jardín", rows[1][colAmenities])
	assert.Equal(t, "Sí", rows[2][colSold])
}

func TestImportPropertiesHandler(t *testing.T) {
	e := newEnv(t)

	f, err := buildWorkbook([]models.Property{
		property("p-1", "Punta Cana", models.PropertyTypePenthouse, 990000, true),
		property("p-9", "Jarabacoa", models.PropertyTypeHouse, 150000, true),
	})
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(sheetName, "A4", &[]interface{}{
		"p-10", "Sin lugar", "", "Atlantis", "villa", 100, 1, 1, 50,
	}))
	require.NoError(t, f.SetSheetRow(sheetName, "A6", &[]interface{}{
		"p-11", "Sin área", "", "Punta Cana", "villa", 100, 1, 1, 0, "", "", "https://images.example.com/x.jpg",
	}))
	content := workbookBytes(t, f)
	f.Close()

	resp := upload(t, e.app, "/api/admin/properties/import", "propiedades.xlsx", content)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ImportResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	assert.False(t, body.DryRun)
	assert.Equal(t, 1, body.Created)
	assert.Equal(t, 1, body.Updated)
	assert.Equal(t, 1, body.Skipped)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, 4, body.Errors[0].Row)
	assert.Contains(t, body.Errors[0].Error, "Atlantis")
	assert.Equal(t, 6, body.Errors[1].Row)

	updated, err := e.repo.Get(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(990000), updated.Price)
	assert.True(t, updated.Sold)

	created, err := e.repo.Get(context.Background(), "p-9")
	require.NoError(t, err)
	assert.Equal(t, "Cibao", created.Region)
	assert.True(t, created.Sold)

	assert.Equal(t, 1, e.source.invalidated)
	assert.Len(t, e.audit.entries, 2)
}

func TestImportPropertiesHandler_SoldFlagFailureKeepsCreatedRecord(t *testing.T) {
	e := newEnv(t)
	e.repo.updateErr = fmt.Errorf("%w: connection reset", store.ErrOperationFailed)

	f, err := buildWorkbook([]models.Property{
		property("p-9", "Jarabacoa", models.PropertyTypeHouse, 150000, true),
	})
	require.NoError(t, err)
	content := workbookBytes(t, f)
	f.Close()

	resp := upload(t, e.app, "/api/admin/properties/import", "propiedades.xlsx", content)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ImportResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	assert.Equal(t, 1, body.Created)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, 2, body.Errors[0].Row)
	assert.Contains(t, body.Errors[0].Error, "vendida")

	created, err := e.repo.Get(context.Background(), "p-9")
	require.NoError(t, err)
	assert.False(t, created.Sold)

	assert.Equal(t, 1, e.source.invalidated)
	require.Len(t, e.audit.entries, 1)
	assert.Equal(t, models.AuditActionCreate, e.audit.entries[0].Action)
	assert.Equal(t, "p-9", e.audit.entries[0].EntityID)
}

func TestImportPropertiesHandler_DryRun(t *testing.T) {
	e := newEnv(t)

	f, err := buildWorkbook([]models.Property{
		property("p-1", "Punta Cana", models.PropertyTypeVilla, 1, false),
		property("new", "Punta Cana", models.PropertyTypeVilla, 1, false),
	})
	require.NoError(t, err)
	content := workbookBytes(t, f)
	f.Close()

	resp := upload(t, e.app, "/api/admin/properties/import?dry_run=true", "p.xlsx", content)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ImportResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.DryRun)
	assert.Equal(t, 1, body.Created)
	assert.Equal(t, 1, body.Updated)

	list, _ := e.repo.List(context.Background())
	assert.Len(t, list, 3)
	assert.Zero(t, e.source.invalidated)
	assert.Empty(t, e.audit.entries)
}

func TestImportPropertiesHandler_RejectsFile(t *testing.T) {
	e := newEnv(t)

	resp := upload(t, e.app, "/api/admin/properties/import", "propiedades.csv", []byte("id,title"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = upload(t, e.app, "/api/admin/properties/import", "propiedades.xlsx", []byte("not a zip"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseSheet_HeaderDetection(t *testing.T) {
	snap, err := catalog.LoadSeed()
	require.NoError(t, err)

	t.Run("reordered english headers", func(t *testing.T) {
		rows := [][]string{
			{"Title", "Price", "Location", "Type", "Area", "Images", "Sold"},
			{"Villa Mar", "$1,250,000", "Punta Cana", "Villa", "320", "https://i/1.jpg|https://i/2.jpg", "sí"},
		}
		parsed, resp := parseSheet(rows, snap)
		require.Empty(t, resp.Errors)
		require.Len(t, parsed, 1)
		p := parsed[0].prop
		assert.Equal(t, 2, parsed[0].line)
		assert.Equal(t, int64(1250000), p.Price)
		assert.Equal(t, models.PropertyTypeVilla, p.PropertyType)
		assert.Len(t, p.Images, 2)
		assert.True(t, p.Sold)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, models.DefaultCoordinates, p.Coordinates())
	})

	t.Run("no header uses default order", func(t *testing.T) {
		rows := [][]string{
			{"x-1", "Casa", "", "Santo Domingo", "Casa", "100000", "2", "1", "90", "18.47", "-69.9", "https://i/c.jpg"},
		}
		parsed, resp := parseSheet(rows, snap)
		require.Empty(t, resp.Errors)
		require.Len(t, parsed, 1)
		assert.Equal(t, 1, parsed[0].line)
		assert.Equal(t, models.PropertyTypeHouse, parsed[0].prop.PropertyType)
		assert.Equal(t, 18.47, parsed[0].prop.Latitude)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		row := []string{"dup", "Casa", "", "Santo Domingo", "house", "1", "1", "1", "90", "", "", "https://i/c.jpg"}
		parsed, resp := parseSheet([][]string{row, row}, snap)
		assert.Len(t, parsed, 1)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, 2, resp.Errors[0].Row)
	})
}

func TestParseHelpers(t *testing.T) {
	ints := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1250000", 1250000, false},
		{"$1,250,000", 1250000, false},
		{"US$ 500", 500, false},
		{"", 0, false},
		{"-5", 0, true},
		{"abc", 0, true},
		{"1e9", 0, true},
	}
	for _, tt := range ints {
		got, err := parseInt(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for in, want := range map[string]models.PropertyType{
		"villa":       models.PropertyTypeVilla,
		"Apartamento": models.PropertyTypeApartment,
		"PENTHOUSE":   models.PropertyTypePenthouse,
		"casa":        models.PropertyTypeHouse,
	} {
		got, ok := parseType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := parseType("castillo")
	assert.False(t, ok)

	assert.Equal(t, "titulo", normalizeHeader(" Título "))
	assert.Equal(t, "banos", normalizeHeader("Baños"))
	assert.True(t, parseBool("Sí"))
	assert.True(t, parseBool("x"))
	assert.False(t, parseBool("No"))
	assert.Equal(t, []string{"a", "b"}, splitList(" a |\n| b"))
	assert.True(t, strings.HasPrefix(yesNo(true), "S"))
}
