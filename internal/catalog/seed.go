package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"inmobiliaria-backend/internal/models"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed seed/catalog.yaml
var seedYAML []byte

//go:embed seed/catalog.schema.json
var seedSchema []byte

var ErrInvalidDocument = errors.New("invalid catalog document")

type document struct {
	Locations    []models.Location    `yaml:"locations"`
	Properties   []models.Property    `yaml:"properties"`
	Testimonials []models.Testimonial `yaml:"testimonials"`
}

// LoadSeed gömülü statik kataloğu yükler.
func LoadSeed() (Snapshot, error) {
	return ParseDocument(seedYAML)
}

// ParseDocument şema doğrulaması + ilan doğrulaması + lokasyon bağlantı kontrolü.
// Herhangi bir ihlal yüklemeyi durdurur.
func ParseDocument(raw []byte) (Snapshot, error) {
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := validateSchema(generic); err != nil {
		return Snapshot{}, err
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	seen := map[string]struct{}{}
	for _, p := range doc.Properties {
		if err := p.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("%s: %w", p.ID, err)
		}
		if _, dup := seen[p.ID]; dup {
			return Snapshot{}, fmt.Errorf("%w: tekrarlanan id %s", ErrInvalidDocument, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	if err := CheckLocations(doc.Properties, doc.Locations); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Properties:   doc.Properties,
		Locations:    doc.Locations,
		Testimonials: doc.Testimonials,
		LoadedAt:     time.Now(),
	}, nil
}

func validateSchema(doc interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(seedSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}
	return nil
}
