package admin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"inmobiliaria-backend/internal/audit"
	"inmobiliaria-backend/internal/catalog"
	"inmobiliaria-backend/internal/format"
	"inmobiliaria-backend/internal/models"
	"inmobiliaria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	sheetName     = "Propiedades"
	maxImportRows = 1000
	listSeparator = "|"
)

// Kolon sırası hem dışa aktarımda hem içe aktarımda varsayılan düzen.
const (
	colID = iota
	colTitle
	colDescription
	colLocation
	colType
	colPrice
	colBedrooms
	colBathrooms
	colArea
	colLatitude
	colLongitude
	colImages
	colAmenities
	colFeatured
	colSold
	columnCount
)

var sheetHeaders = [columnCount]string{
	"ID", "Título", "Descripción", "Ubicación", "Tipo", "Precio", "Habitaciones", "Baños",
	"Área (m²)", "Latitud", "Longitud", "Imágenes", "Amenidades", "Destacada", "Vendida",
}

// headerAliases normalize edilmiş başlık -> kolon
var headerAliases = map[string]int{
	"id":           colID,
	"titulo":       colTitle,
	"title":        colTitle,
	"descripcion":  colDescription,
	"description":  colDescription,
	"ubicacion":    colLocation,
	"location":     colLocation,
	"tipo":         colType,
	"type":         colType,
	"precio":       colPrice,
	"price":        colPrice,
	"habitaciones": colBedrooms,
	"bedrooms":     colBedrooms,
	"banos":        colBathrooms,
	"bathrooms":    colBathrooms,
	"area (m2)":    colArea,
	"area (m²)":    colArea,
	"area":         colArea,
	"latitud":      colLatitude,
	"latitude":     colLatitude,
	"longitud":     colLongitude,
	"longitude":    colLongitude,
	"imagenes":     colImages,
	"images":       colImages,
	"amenidades":   colAmenities,
	"amenities":    colAmenities,
	"destacada":    colFeatured,
	"featured":     colFeatured,
	"vendida":      colSold,
	"sold":         colSold,
}

// Aksanlar kaldırılır: "Título" -> "titulo"
func normalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// -------------------------
// Export
// -------------------------

// GET /api/admin/properties/export
func ExportPropertiesHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		props, err := d.Repo.List(c.UserContext())
		if err != nil {
			d.Log.WithError(err).Error("Dışa aktarma için ilanlar okunamadı", nil)
			return storeError(err)
		}

		f, err := buildWorkbook(props)
		if err != nil {
			d.Log.WithError(err).Error("No se pudo generar el archivo Excel", nil)
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el archivo Excel")
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo escribir el archivo Excel")
		}

		filename := fmt.Sprintf("propiedades-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		return c.Send(buf.Bytes())
	}
}

func buildWorkbook(props []models.Property) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]interface{}, columnCount)
	for i, h := range sheetHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E8DCCB"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(int(columnCount))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, p := range props {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			p.ID,
			p.Title,
			p.Description,
			p.Location,
			string(p.PropertyType),
			p.Price,
			p.Bedrooms,
			p.Bathrooms,
			p.Area,
			p.Latitude,
			p.Longitude,
			strings.Join(p.Images, listSeparator),
			strings.Join(p.Amenities, listSeparator),
			yesNo(p.Featured),
			yesNo(p.Sold),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "C", 40)
	_ = f.SetColWidth(sheetName, "D", "K", 14)
	_ = f.SetColWidth(sheetName, "L", "M", 60)
	return f, nil
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// -------------------------
// Import
// -------------------------

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResponse struct {
	DryRun  bool       `json:"dry_run"`
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors"`
}

type importRow struct {
	line int
	prop models.Property
}

// POST /api/admin/properties/import?dry_run=true
// Her satır ayrı doğrulanır; hatalı satırlar raporlanır, geçerliler yazılır.
func ImportPropertiesHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No se pudo subir el archivo: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Solo se admiten archivos .xlsx")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo abrir el archivo: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No se pudo leer el archivo Excel: "+err.Error())
		}
		defer excelFile.Close()

		sheets := excelFile.GetSheetList()
		if len(sheets) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El archivo Excel no tiene hojas")
		}
		rows, err := excelFile.GetRows(sheets[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No se pudo leer la hoja: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El archivo Excel está vacío")
		}
		if len(rows) > maxImportRows+1 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Se admiten como máximo %d filas", maxImportRows))
		}

		snap, err := d.Catalog.Snapshot(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "No se pudo leer el catálogo")
		}
		existing, err := d.Repo.List(c.UserContext())
		if err != nil {
			d.Log.WithError(err).Error("İçe aktarma için ilanlar okunamadı", nil)
			return storeError(err)
		}
		known := make(map[string]bool, len(existing))
		for _, p := range existing {
			known[p.ID] = true
		}

		parsed, resp := parseSheet(rows, snap)
		resp.DryRun = c.QueryBool("dry_run", false)
		if resp.DryRun {
			for _, r := range parsed {
				if known[r.prop.ID] {
					resp.Updated++
				} else {
					resp.Created++
				}
			}
			return c.JSON(resp)
		}

		changed := false
		for _, r := range parsed {
			var err error
			if known[r.prop.ID] {
				err = d.importUpdate(c, r.prop)
				if err == nil {
					resp.Updated++
				}
			} else {
				var stored bool
				stored, err = d.importCreate(c, r.prop)
				if stored {
					resp.Created++
					known[r.prop.ID] = true
					changed = true
				}
			}
			if err != nil {
				resp.Errors = append(resp.Errors, RowError{Row: r.line, Error: err.Error()})
				continue
			}
			changed = true
		}
		if changed {
			d.Catalog.Invalidate()
		}

		d.Log.Info("İlanlar içe aktarıldı", map[string]interface{}{
			"created": resp.Created,
			"updated": resp.Updated,
			"skipped": resp.Skipped,
			"errors":  len(resp.Errors),
		})
		return c.JSON(resp)
	}
}

// importCreate kayıt depoya yazıldıysa stored=true döner. Satış işareti
// sonradan yazılamasa da oluşturulan kayıt audit'e girer.
func (d Deps) importCreate(c *fiber.Ctx, p models.Property) (stored bool, err error) {
	release, err := d.Guard.Acquire(p.ID)
	if err != nil {
		return false, errors.New(msgMutationBusy)
	}
	defer release()

	sold := p.Sold
	created, err := d.Repo.Insert(c.UserContext(), p)
	if err != nil {
		d.failed("import", p.ID, err)
		return false, err
	}

	// Insert her zaman is_sold=false başlatır
	var soldErr error
	if sold {
		if after, err := d.Repo.Update(c.UserContext(), created.ID, store.Patch{Sold: &sold}); err != nil {
			d.failed("import", p.ID, err)
			soldErr = fmt.Errorf("propiedad creada pero no se pudo marcar como vendida: %w", err)
		} else {
			created = after
		}
	}
	d.recorded(c, "import", audit.LogOptions{
		EntityID:    created.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Propiedad importada: %s", created.Title),
		After:       created,
	})
	return true, soldErr
}

func (d Deps) importUpdate(c *fiber.Ctx, p models.Property) error {
	release, err := d.Guard.Acquire(p.ID)
	if err != nil {
		return errors.New(msgMutationBusy)
	}
	defer release()

	before, err := d.Repo.Get(c.UserContext(), p.ID)
	if err != nil {
		d.failed("import", p.ID, err)
		return err
	}
	after, err := d.Repo.Update(c.UserContext(), p.ID, fullPatch(p))
	if err != nil {
		d.failed("import", p.ID, err)
		return err
	}
	d.recorded(c, "import", audit.LogOptions{
		EntityID:    p.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Propiedad actualizada por importación: %s", after.Title),
		Before:      before,
		After:       after,
	})
	return nil
}

func fullPatch(p models.Property) store.Patch {
	images := []string(p.Images)
	amenities := []string(p.Amenities)
	return store.Patch{
		Title:        &p.Title,
		Description:  &p.Description,
		Location:     &p.Location,
		Region:       &p.Region,
		PropertyType: &p.PropertyType,
		Price:        &p.Price,
		Bedrooms:     &p.Bedrooms,
		Bathrooms:    &p.Bathrooms,
		Area:         &p.Area,
		Images:       &images,
		Amenities:    &amenities,
		Featured:     &p.Featured,
		Latitude:     &p.Latitude,
		Longitude:    &p.Longitude,
		Sold:         &p.Sold,
	}
}

// parseSheet satırları ilana çevirir. Satır numaraları Excel'deki gibi 1 tabanlı.
func parseSheet(rows [][]string, snap catalog.Snapshot) ([]importRow, ImportResponse) {
	resp := ImportResponse{Errors: make([]RowError, 0)}

	columns, start := defaultColumns(), 0
	if cols, ok := detectHeader(rows[0]); ok {
		columns, start = cols, 1
	}

	seen := map[string]int{}
	out := make([]importRow, 0, len(rows))
	for i := start; i < len(rows); i++ {
		line := i + 1
		row := rows[i]
		if blankRow(row) {
			resp.Skipped++
			continue
		}

		p, err := parseRow(row, columns, snap)
		if err != nil {
			resp.Errors = append(resp.Errors, RowError{Row: line, Error: err.Error()})
			continue
		}
		if prev, dup := seen[p.ID]; dup {
			resp.Errors = append(resp.Errors, RowError{Row: line, Error: fmt.Sprintf("ID repetido, ya aparece en la fila %d", prev)})
			continue
		}
		seen[p.ID] = line
		out = append(out, importRow{line: line, prop: p})
	}
	return out, resp
}

func defaultColumns() map[int]int {
	cols := make(map[int]int, columnCount)
	for i := 0; i < columnCount; i++ {
		cols[i] = i
	}
	return cols
}

// detectHeader ilk satır başlık ise kolon -> hücre indeksi döner.
// Başlıklar herhangi bir sırada olabilir.
func detectHeader(row []string) (map[int]int, bool) {
	cols := map[int]int{}
	for idx, cell := range row {
		if col, ok := headerAliases[normalizeHeader(cell)]; ok {
			if _, dup := cols[col]; !dup {
				cols[col] = idx
			}
		}
	}
	_, hasTitle := cols[colTitle]
	return cols, hasTitle
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, columns map[int]int, col int) string {
	idx, ok := columns[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseRow(row []string, columns map[int]int, snap catalog.Snapshot) (models.Property, error) {
	get := func(col int) string { return cell(row, columns, col) }

	loc, ok := snap.LocationByName(get(colLocation))
	if !ok {
		return models.Property{}, fmt.Errorf("ubicación desconocida %q", get(colLocation))
	}
	propertyType, ok := parseType(get(colType))
	if !ok {
		return models.Property{}, fmt.Errorf("tipo desconocido %q", get(colType))
	}

	price, err := parseInt(get(colPrice))
	if err != nil {
		return models.Property{}, fmt.Errorf("fiyat: %w", err)
	}
	bedrooms, err := parseInt(get(colBedrooms))
	if err != nil {
		return models.Property{}, fmt.Errorf("habitaciones: %w", err)
	}
	bathrooms, err := parseInt(get(colBathrooms))
	if err != nil {
		return models.Property{}, fmt.Errorf("baños: %w", err)
	}
	area, err := parseInt(get(colArea))
	if err != nil {
		return models.Property{}, fmt.Errorf("área: %w", err)
	}

	var lat, lng *float64
	if v, err := strconv.ParseFloat(strings.ReplaceAll(get(colLatitude), ",", "."), 64); err == nil {
		lat = &v
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(get(colLongitude), ",", "."), 64); err == nil {
		lng = &v
	}
	coords := coordinates(lat, lng)

	id := get(colID)
	if id == "" {
		id = uuid.NewString()
	}

	p := models.Property{
		ID:           id,
		Title:        get(colTitle),
		Description:  get(colDescription),
		Location:     loc.Name,
		Region:       loc.Region,
		PropertyType: propertyType,
		Price:        price,
		Bedrooms:     int(bedrooms),
		Bathrooms:    int(bathrooms),
		Area:         int(area),
		Images:       splitList(get(colImages)),
		Amenities:    splitList(get(colAmenities)),
		Featured:     parseBool(get(colFeatured)),
		Latitude:     coords.Lat,
		Longitude:    coords.Lng,
		Sold:         parseBool(get(colSold)),
	}
	if err := p.Validate(); err != nil {
		return models.Property{}, err
	}
	return p, nil
}

// parseType "apartment" ya da etiketi ("Apartamento") kabul eder.
func parseType(raw string) (models.PropertyType, bool) {
	v := normalizeHeader(raw)
	for _, t := range models.PropertyTypes {
		if v == string(t) || v == normalizeHeader(format.PropertyTypeLabel(t)) {
			return t, true
		}
	}
	return "", false
}

// parseInt "$1,250,000" ve "1250000" aynı; boş hücre 0.
func parseInt(raw string) (int64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "", "US", "").Replace(raw)
	if cleaned == "" {
		return 0, nil
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil && !strings.ContainsAny(cleaned, "eE") {
		if f < 0 {
			return 0, fmt.Errorf("valor negativo %q", raw)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("no es un número %q", raw)
}

func parseBool(raw string) bool {
	switch normalizeHeader(raw) {
	case "si", "yes", "true", "1", "x", "evet":
		return true
	}
	return false
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '|' || r == '\n' })
	return cleanList(parts)
}
